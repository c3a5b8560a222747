package blob

import (
	"github.com/nanotrie/subword/internal/trainer"
)

// BuildFromTrainer assembles an Artifact from a trainer that has already
// had Prune called (patterns themselves are written to the separate
// sidecar by WritePatternsSidecar, not embedded in the blob).
func BuildFromTrainer(tr *trainer.Trainer) *Artifact {
	a := &Artifact{Metadata: map[string]string{}}

	posStrings := tr.PosStrings()
	featureStrings := tr.FeatureStrings()

	numKeys := trainer.MaxCodepoint + 1 + len(posStrings)
	a.CharToID = make([]int32, numKeys)
	for i := range a.CharToID {
		a.CharToID[i] = -1
	}
	for _, key := range tr.Counter().Keys() {
		id, _ := tr.Counter().DenseID(key)
		if key >= 0 && int(key) < numKeys {
			a.CharToID[key] = id
		}
	}

	var buf []byte
	a.PosStringSpans = make([][2]uint32, len(posStrings))
	for i, s := range posStrings {
		off := uint32(len(buf))
		buf = appendNewlineTerminated(buf, s)
		a.PosStringSpans[i] = [2]uint32{off, uint32(len(buf)) - off}
	}
	a.FeatureStringSpans = make([][2]uint32, len(featureStrings))
	for i, s := range featureStrings {
		off := uint32(len(buf))
		buf = appendNewlineTerminated(buf, s)
		a.FeatureStringSpans[i] = [2]uint32{off, uint32(len(buf)) - off}
	}
	a.FeatureStrings = buf

	a.Features = make([]FeatureRecord, len(featureStrings))
	for i := range featureStrings {
		posID, _ := tr.FeaturePOSID(int32(i))
		span := a.FeatureStringSpans[i]
		a.Features[i] = FeatureRecord{PosID: posID, Offset: span[0], Length: span[1]}
	}

	a.Metadata["num_pos_fields"] = itoa(tr.NumPosFields())

	return a
}

// appendNewlineTerminated appends s to dst stripped of any trailing
// newline(s), then exactly one "\n" — spec.md's Open Question decision on
// trailing-newline normalization.
func appendNewlineTerminated(dst []byte, s string) []byte {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	dst = append(dst, s...)
	dst = append(dst, '\n')
	return dst
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
