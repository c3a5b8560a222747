package trainer

import "github.com/nanotrie/subword/internal/charclass"

// Pattern is one final, pruned pattern record (spec.md §3 "Pattern
// record"): a surface fragment, the POS it follows (or NoPrevPOS), the
// byte shift it was observed (or reconstructed) at, the character-class
// mask of its surface, and the feature string id describing it.
type Pattern struct {
	Surface   string
	PrevPOS   int32
	Shift     int32
	CharKind  charclass.Kind
	FeatureID int32
	Count     int64
}

// shiftFeature is one (shift, feature id) observation key for a pattern.
type shiftFeature struct {
	Shift     int32
	FeatureID int32
}

// patternStats accumulates every (shift, feature) combination observed for
// one pattern id during mining, preserving first-seen order so pruning's
// tie-break (count desc, shift desc, insertion-order asc) is deterministic.
type patternStats struct {
	counts map[shiftFeature]int64
	order  []shiftFeature
}

func newPatternStats() *patternStats {
	return &patternStats{counts: make(map[shiftFeature]int64)}
}

func (s *patternStats) record(sf shiftFeature) {
	if _, ok := s.counts[sf]; !ok {
		s.order = append(s.order, sf)
	}
	s.counts[sf]++
}
