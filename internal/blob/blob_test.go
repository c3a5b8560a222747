package blob

import (
	"path/filepath"
	"testing"

	"github.com/nanotrie/subword/internal/trainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTrainer returns a trainer that has already seeded two records and
// been pruned, matching BuildFromTrainer's precondition that Prune has run
// (the counter table it reads is only populated by the pruning pass).
func newTestTrainer(t *testing.T) *trainer.Trainer {
	t.Helper()
	tr := trainer.New(trainer.Options{NumPosFields: 1})
	require.NoError(t, tr.AddSeedRecord([]string{"猫", "NOUN", "*", "*"}))
	require.NoError(t, tr.AddSeedRecord([]string{"は", "PARTICLE", "*", "*"}))
	tr.SealSeed()
	_, err := tr.Prune()
	require.NoError(t, err)
	return tr
}

func TestBuildWriteOpenRoundTrip(t *testing.T) {
	tr := newTestTrainer(t)
	a := BuildFromTrainer(tr)

	path := filepath.Join(t.TempDir(), "vocab.bin")
	require.NoError(t, Write(path, a, WriteOptions{Creator: "test-suite"}))

	restored, err := Open(path)
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, a.CharToID, restored.CharToID)
	assert.Equal(t, a.FeatureStrings, restored.FeatureStrings)
	assert.Equal(t, a.Features, restored.Features)
	assert.Equal(t, "test-suite", restored.Metadata["creator"])
	assert.Equal(t, a.Metadata["num_pos_fields"], restored.Metadata["num_pos_fields"])
}

func TestWriteDefaultsCreatorToUUID(t *testing.T) {
	tr := newTestTrainer(t)
	a := BuildFromTrainer(tr)

	path := filepath.Join(t.TempDir(), "vocab.bin")
	require.NoError(t, Write(path, a, WriteOptions{}))

	restored, err := Open(path)
	require.NoError(t, err)
	defer restored.Close()

	assert.Contains(t, restored.Metadata["creator"], "subword-trainer/")
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, writeRawFile(path, make([]byte, headerSize)))

	_, err := Open(path)
	require.Error(t, err)
}

func TestOpenRejectsTruncatedFile(t *testing.T) {
	tr := newTestTrainer(t)
	a := BuildFromTrainer(tr)

	path := filepath.Join(t.TempDir(), "vocab.bin")
	require.NoError(t, Write(path, a, WriteOptions{}))

	full, err := readFile(path)
	require.NoError(t, err)
	truncated := full[:len(full)/2]

	path2 := filepath.Join(t.TempDir(), "truncated.bin")
	require.NoError(t, writeRawFile(path2, truncated))

	_, err = Open(path2)
	require.Error(t, err)
}

func TestWritePatternsSidecarOrdersByDescendingCountThenSurface(t *testing.T) {
	tr := trainer.New(trainer.Options{NumPosFields: 1})
	require.NoError(t, tr.AddSeedRecord([]string{"猫", "NOUN", "*", "*"}))
	require.NoError(t, tr.AddSeedRecord([]string{"は", "PARTICLE", "*", "*"}))
	tr.SealSeed()

	patterns, err := tr.Prune()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "patterns.tsv")
	require.NoError(t, WritePatternsSidecar(path, patterns, tr))

	lines, err := readLines(path)
	require.NoError(t, err)
	require.NotEmpty(t, lines)

	prevCount := int64(-1)
	var prevSurface string
	for _, line := range lines {
		fields := splitTSV(line)
		require.GreaterOrEqual(t, len(fields), 6)
		count := parseInt64(t, fields[0])
		surface := fields[1]
		if prevCount != -1 {
			if count == prevCount {
				assert.LessOrEqual(t, prevSurface, surface)
			} else {
				assert.Less(t, count, prevCount)
			}
		}
		prevCount, prevSurface = count, surface
	}
}
