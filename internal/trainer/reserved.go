// Package trainer implements the pattern-mining trainer of spec.md §4.7:
// seed lexicon ingestion, per-sentence fragment enumeration over a
// POS-tagged corpus, counting, back-fill heuristics for unseen patterns,
// and pruning via a secondary trie.
//
// _examples/original_source/experiment/japanese-pos-tagger/train.cc (the
// direct ancestor of this package) is a 31-line stub that parses its CSV
// vocabulary and returns 0 without mining anything; this package is the
// full implementation that stub only gestures at.
package trainer

// Reserved POS ids, fixed before any seed or corpus record is processed
// (spec.md §4.7 "Bootstrapping").
const (
	POSBOS     int32 = 0
	POSUnknown int32 = 1
	POSDigit   int32 = 2
	POSSymbol  int32 = 3
)

// reservedPOSStrings gives the literal string registered for each reserved
// POS id, in id order, so bootstrapping can Put them in one pass.
var reservedPOSStrings = []string{
	POSBOS:     "\tBOS",
	POSUnknown: "UNKNOWN",
	POSDigit:   "DIGIT",
	POSSymbol:  "SYMBOL",
}

// NoPrevPOS is the prev-POS sentinel for seed-only and sentence-initial
// patterns (spec.md §3 "prev_pos_id: int (−1 = none)").
const NoPrevPOS int32 = -1

// VocabOnlyShift marks a pattern record that carries no observed shift —
// either a seed entry never exercised by the corpus, or a pattern
// back-filled by a pruning heuristic (spec.md §3 "Pattern record",
// "shift... −1 denotes a vocabulary-only seed").
const VocabOnlyShift int32 = -1
