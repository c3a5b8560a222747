package bpetok

import (
	"path/filepath"
	"testing"

	"github.com/nanotrie/subword/internal/blob"
	"github.com/nanotrie/subword/internal/trainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFixture trains, prunes, and persists a tiny vocabulary, mirroring
// spec.md §8 scenario 3 (Japanese longest match), and returns the paths to
// the blob and its patterns sidecar.
func buildFixture(t *testing.T) (vocabPath, patternsPath string) {
	t.Helper()

	tr := trainer.New(trainer.Options{NumPosFields: 1})
	for _, surface := range []string{"吾輩", "は", "猫", "である"} {
		require.NoError(t, tr.AddSeedRecord([]string{surface, "NOUN", "*", "*"}))
	}
	tr.SealSeed()

	patterns, err := tr.Prune()
	require.NoError(t, err)

	dir := t.TempDir()
	vocabPath = filepath.Join(dir, "vocab.bin")
	patternsPath = filepath.Join(dir, "patterns.tsv")

	require.NoError(t, blob.Write(vocabPath, blob.BuildFromTrainer(tr), blob.WriteOptions{}))
	require.NoError(t, blob.WritePatternsSidecar(patternsPath, patterns, tr))
	return vocabPath, patternsPath
}

func TestLoadTokenizerEncodesJapaneseLongestMatch(t *testing.T) {
	vocabPath, patternsPath := buildFixture(t)

	tok, err := LoadTokenizer(vocabPath, patternsPath)
	require.NoError(t, err)

	enc := tok.NewEncoder()
	ids, err := enc.Feed([]byte("吾輩は猫である"))
	require.NoError(t, err)
	tail, err := enc.Flush()
	require.NoError(t, err)
	ids = append(ids, tail...)

	assert.Len(t, ids, 4)

	dec := tok.NewDecoder()
	out, err := dec.Feed(ids)
	require.NoError(t, err)
	assert.Equal(t, "吾輩は猫である", string(out))
}

func TestLoadTokenizerByteFallbackRoundTrip(t *testing.T) {
	vocabPath, patternsPath := buildFixture(t)

	tok, err := LoadTokenizer(vocabPath, patternsPath)
	require.NoError(t, err)

	enc := tok.NewEncoder()
	_, err = enc.Feed([]byte("猫😀"))
	require.NoError(t, err)
	ids, err := enc.Flush()
	require.NoError(t, err)

	dec := tok.NewDecoder()
	out, err := dec.Feed(ids)
	require.NoError(t, err)
	assert.Equal(t, "猫😀", string(out))
}
