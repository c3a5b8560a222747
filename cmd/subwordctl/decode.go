package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nanotrie/subword/bpetok"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var vocabPath, patternsPath string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a whitespace-separated token id stream on stdin to text on stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(vocabPath, patternsPath)
		},
	}

	cmd.Flags().StringVar(&vocabPath, "vocab", "vocab.bin", "path to the tensor-blob written by train")
	cmd.Flags().StringVar(&patternsPath, "patterns", "patterns.tsv", "path to the patterns sidecar written by train")
	return cmd
}

func runDecode(vocabPath, patternsPath string) error {
	tok, err := bpetok.LoadTokenizer(vocabPath, patternsPath)
	if err != nil {
		return err
	}

	var ids []int32
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		for _, field := range strings.Fields(sc.Text()) {
			v, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return fmt.Errorf("parsing token id %q: %w", field, err)
			}
			ids = append(ids, int32(v))
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	dec := tok.NewDecoder()
	out, err := dec.Feed(ids)
	if err != nil {
		return err
	}
	os.Stdout.Write(out)
	return nil
}
