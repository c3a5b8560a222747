package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nanotrie/subword/internal/blob"
	"github.com/nanotrie/subword/internal/trainer"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	var seedPath, corpusPath, vocabOut, patternsOut string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Mine a pattern dictionary from a seed lexicon and a POS-tagged corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(seedPath, corpusPath, vocabOut, patternsOut)
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed", "", "path to the seed vocabulary CSV (required)")
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "path to the POS-tagged corpus (required)")
	cmd.Flags().StringVar(&vocabOut, "vocab-out", "vocab.bin", "output path for the persisted tensor-blob")
	cmd.Flags().StringVar(&patternsOut, "patterns-out", "patterns.tsv", "output path for the patterns sidecar")
	cmd.MarkFlagRequired("seed")
	cmd.MarkFlagRequired("corpus")

	return cmd
}

// runTrain wires the outer CLI glue spec.md §1 calls "deliberately out of
// scope" (CSV/corpus file ingestion) around the core training pipeline:
// seed records -> AddSeedRecord, corpus sentences -> MineSentence, then
// Prune and persist.
func runTrain(seedPath, corpusPath, vocabOut, patternsOut string) error {
	tr := trainer.New(trainer.Options{
		NumPosFields:     cfg.NumPosFields,
		StrictEOSNewline: cfg.StrictEOSNewline,
	})

	seedCount, err := loadSeedRecords(tr, seedPath)
	if err != nil {
		return fmt.Errorf("loading seed vocabulary: %w", err)
	}
	log.Info().Int("rows", seedCount).Str("path", seedPath).Msg("seed vocabulary loaded")

	tr.SealSeed()

	sentCount, err := mineCorpus(tr, corpusPath)
	if err != nil {
		return fmt.Errorf("mining corpus: %w", err)
	}
	log.Info().Int("sentences", sentCount).Str("path", corpusPath).Msg("corpus mined")

	patterns, err := tr.Prune()
	if err != nil {
		return fmt.Errorf("pruning patterns: %w", err)
	}

	artifact := blob.BuildFromTrainer(tr)
	if err := blob.Write(vocabOut, artifact, blob.WriteOptions{}); err != nil {
		return fmt.Errorf("writing tensor-blob: %w", err)
	}
	if err := blob.WritePatternsSidecar(patternsOut, patterns, tr); err != nil {
		return fmt.Errorf("writing patterns sidecar: %w", err)
	}

	printTrainSummary(len(patterns), len(tr.PosStrings()), len(tr.FeatureStrings()), tr.MaxWordLength(), vocabOut, patternsOut)
	return nil
}

func loadSeedRecords(tr *trainer.Trainer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return 0, err
	}
	// Normalize CRLF and bare CR line endings to LF before CSV parsing.
	text := strings.ReplaceAll(strings.ReplaceAll(string(data), "\r\n", "\n"), "\r", "\n")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	count := 0
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		if err := tr.AddSeedRecord(fields); err != nil {
			return count, fmt.Errorf("row %d: %w", count+1, err)
		}
		count++
	}
	return count, nil
}

func mineCorpus(tr *trainer.Trainer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := trainer.NewCorpusReader(f, cfg.StrictEOSNewline)
	sentences, err := reader.ReadSentences()
	if err != nil {
		return 0, err
	}

	for _, sent := range sentences {
		if err := tr.MineSentence(sent); err != nil {
			return 0, err
		}
	}
	return len(sentences), nil
}

func printTrainSummary(numPatterns, numPOS, numFeatures, maxWordLen int, vocabOut, patternsOut string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"METRIC", "VALUE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk([][]string{
		{"patterns", fmt.Sprint(numPatterns)},
		{"pos tags", fmt.Sprint(numPOS)},
		{"features", fmt.Sprint(numFeatures)},
		{"max word length (bytes)", fmt.Sprint(maxWordLen)},
		{"vocab blob", vocabOut},
		{"patterns sidecar", patternsOut},
	})
	table.Render()
}
