package main

import (
	"fmt"
	"os"

	"github.com/nanotrie/subword/internal/blob"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var vocabPath, patternsPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print summary metadata about a persisted vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(vocabPath, patternsPath)
		},
	}

	cmd.Flags().StringVar(&vocabPath, "vocab", "vocab.bin", "path to the tensor-blob written by train")
	cmd.Flags().StringVar(&patternsPath, "patterns", "patterns.tsv", "path to the patterns sidecar written by train")
	return cmd
}

func runInspect(vocabPath, patternsPath string) error {
	mapped, err := blob.Open(vocabPath)
	if err != nil {
		return err
	}
	defer mapped.Close()

	records, err := blob.ReadPatternsSidecar(patternsPath)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"METRIC", "VALUE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	rows := [][]string{
		{"char_to_id entries", fmt.Sprint(len(mapped.CharToID))},
		{"feature records", fmt.Sprint(len(mapped.Features))},
		{"feature string bytes", fmt.Sprint(len(mapped.FeatureStrings))},
		{"patterns sidecar rows", fmt.Sprint(len(records))},
	}
	for k, v := range mapped.Metadata {
		rows = append(rows, []string{"metadata: " + k, v})
	}
	table.AppendBulk(rows)
	table.Render()
	return nil
}
