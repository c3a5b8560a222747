package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nanotrie/subword/bpetok"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var vocabPath, patternsPath string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode stdin to a whitespace-separated token id stream on stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(vocabPath, patternsPath)
		},
	}

	cmd.Flags().StringVar(&vocabPath, "vocab", "vocab.bin", "path to the tensor-blob written by train")
	cmd.Flags().StringVar(&patternsPath, "patterns", "patterns.tsv", "path to the patterns sidecar written by train")
	return cmd
}

func runEncode(vocabPath, patternsPath string) error {
	tok, err := bpetok.LoadTokenizer(vocabPath, patternsPath)
	if err != nil {
		return err
	}

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	enc := tok.NewEncoder()
	ids, err := enc.Feed(text)
	if err != nil {
		return err
	}
	tail, err := enc.Flush()
	if err != nil {
		return err
	}
	ids = append(ids, tail...)

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.FormatInt(int64(id), 10)
	}
	fmt.Println(strings.Join(strs, " "))
	return nil
}
