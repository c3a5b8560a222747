// Package blob implements the typed tensor-blob persistence format of
// spec.md §4.8/§6: a header, a region directory, concatenated region
// payloads, and a metadata trailer, plus the separate patterns text
// sidecar.
package blob

// magic identifies a subword persisted blob ("SWBB" - subword blob).
const magic uint32 = 0x53574242

// formatVersion is bumped whenever the region layout changes incompatibly.
const formatVersion uint32 = 1

// Region names, fixed by spec.md §4.8.
const (
	RegionCharToID       = "char_to_id"
	RegionFeatureStrings = "feature_strings"
	RegionFeatures       = "features"
)

// Region describes one named payload in the region directory: spec.md §6
// "{name, dtype, offset, byte_length, shape[]}".
type Region struct {
	Name       string
	DType      string
	Offset     uint32
	ByteLength uint32
	Shape      []uint32
}

// FeatureRecord is one fixed-size entry of the "features" region, indexed
// by dense feature id: the POS id it resolves to (recovered from the
// feature string's own POS-tuple prefix) plus the byte span of its string
// within the "feature_strings" region.
type FeatureRecord struct {
	PosID  int32
	Offset uint32
	Length uint32
}

const featureRecordSize = 4 + 4 + 4

// Artifact is the in-memory form of a built blob, ready to Write or already
// restored by Open.
type Artifact struct {
	// CharToID is direct-indexed by counter-table key (codepoint, or
	// MaxCodepoint+1+posID); each slot holds the dense id assigned to that
	// key, or -1 if the key was never counted.
	CharToID []int32

	// FeatureStrings holds every POS string followed by every feature
	// string, in id order, each individually newline-terminated exactly
	// once (spec.md's Open Question decision on trailing-newline
	// normalization).
	FeatureStrings []byte
	// PosStringSpans and FeatureStringSpans locate each string within
	// FeatureStrings as [offset, length) pairs, in id order.
	PosStringSpans     [][2]uint32
	FeatureStringSpans [][2]uint32

	Features []FeatureRecord

	Metadata map[string]string
}
