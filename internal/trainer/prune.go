package trainer

import (
	"sort"

	"github.com/derekparker/trie"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/nanotrie/subword/internal/charclass"
)

// Prune runs spec.md §4.7's pruning pass: every registered pattern is
// resolved to one (shift, feature) pair — the best-observed one if the
// corpus ever exercised it, otherwise a back-filled one — then checked
// against a secondary trie of already-kept patterns so a pattern that adds
// no disambiguating value over an already-kept prefix is dropped. Surviving
// patterns feed the shared counter table so rare-but-present patterns still
// contribute to future dense-id ranking.
//
// The secondary trie (github.com/derekparker/trie, as used for
// prefix-indexed pattern storage in
// _examples/npillmayer-hyphenate/pattern_store.go) is keyed on pattern
// surface text, independent of the production longest-match trie (C5)
// which is keyed on raw vocabulary bytes.
func (t *Trainer) Prune() ([]Pattern, error) {
	if !t.sealed {
		t.SealSeed()
	}

	secondary := trie.New()
	var out []Pattern

	keys := t.patternTable.Keys()
	for patID := int32(0); int(patID) < len(keys); patID++ {
		key := keys[patID]

		var shift, featureID int32
		var count int64

		if st := t.observed[patID]; st != nil && len(st.order) > 0 {
			shift, featureID, count = t.bestObserved(st)
		} else if patID < t.numSeedPatterns && key.PrevPOS == NoPrevPOS && len(t.seedPosFeature[patID]) > 0 {
			shift = VocabOnlyShift
			featureID = t.backfillSeedFeature(patID)
		} else {
			shift = VocabOnlyShift
			featureID = t.backfillByCharClass(key.Surface)
		}

		sf := shiftFeature{Shift: shift, FeatureID: featureID}
		if key.Surface != "" && redundantIn(secondary, key.Surface, sf) {
			continue
		}
		if key.Surface != "" {
			secondary.Add(key.Surface, sf)
		}

		out = append(out, Pattern{
			Surface:   key.Surface,
			PrevPOS:   key.PrevPOS,
			Shift:     shift,
			CharKind:  charclass.Classify([]byte(key.Surface), t.charTable),
			FeatureID: featureID,
			Count:     count,
		})

		for _, r := range key.Surface {
			t.counter.Increment(CharCounterKey(r), count+1)
		}
		if key.PrevPOS != NoPrevPOS {
			t.counter.Increment(PosCounterKey(key.PrevPOS), count+1)
		}
	}

	return out, nil
}

// bestObserved picks the dominant (shift, feature) observation for a
// pattern: highest count first, then longest shift, then earliest
// first-seen order — spec.md §4.7's tie-break, made deterministic with a
// gods arraylist sort (github.com/emirpasic/gods, as used for ranked
// candidate ordering in _examples/ollama-ollama).
func (t *Trainer) bestObserved(st *patternStats) (shift, featureID int32, count int64) {
	type candidate struct {
		sf  shiftFeature
		cnt int64
		idx int
	}

	list := arraylist.New()
	for idx, sf := range st.order {
		list.Add(candidate{sf: sf, cnt: st.counts[sf], idx: idx})
	}
	list.Sort(func(a, b interface{}) int {
		ca, cb := a.(candidate), b.(candidate)
		switch {
		case ca.cnt != cb.cnt:
			if ca.cnt > cb.cnt {
				return -1
			}
			return 1
		case ca.sf.Shift != cb.sf.Shift:
			if ca.sf.Shift > cb.sf.Shift {
				return -1
			}
			return 1
		default:
			if ca.idx < cb.idx {
				return -1
			}
			if ca.idx > cb.idx {
				return 1
			}
			return 0
		}
	})

	best, _ := list.Get(0)
	bc := best.(candidate)
	return bc.sf.Shift, bc.sf.FeatureID, bc.cnt
}

// backfillSeedFeature picks the POS candidate with the lowest global
// counter value among a never-observed seed pattern's registered
// (pos, feature) pairs, ties broken by smallest POS id — spec.md §4.7
// "Pruning": "pick the (pos, feature) with lowest global counter value".
func (t *Trainer) backfillSeedFeature(patID int32) int32 {
	candidates := t.seedPosFeature[patID]
	posIDs := make([]int32, 0, len(candidates))
	for p := range candidates {
		posIDs = append(posIDs, p)
	}
	sort.Slice(posIDs, func(i, j int) bool { return posIDs[i] < posIDs[j] })

	var bestPos int32 = -1
	var bestVal int64
	for i, p := range posIDs {
		v := t.counter.Value(PosCounterKey(p))
		if i == 0 || v < bestVal {
			bestVal, bestPos = v, p
		}
	}
	return candidates[bestPos]
}

// backfillByCharClass synthesizes a feature for a never-observed,
// non-seed pattern by its character class (spec.md §4.7 "Pruning"):
// DIGIT-classified surfaces get the reserved DIGIT feature, unclassified
// ("OTHER") surfaces get the reserved SYMBOL feature, and
// ALPHABET/KATAKANA surfaces synthesize a feature from the most recently
// registered POS string and the surface itself.
func (t *Trainer) backfillByCharClass(surface string) int32 {
	kind := charclass.Classify([]byte(surface), t.charTable)
	switch kind {
	case charclass.Digit:
		return t.digitFeatureID()
	case charclass.Other:
		return t.symbolFeatureID()
	default:
		maxPosID := int32(t.posTable.Size() - 1)
		posStr, _ := t.posTable.GetByID(maxPosID)
		synth := posStr + "," + surface + "," + surface + ",*"
		id, _, _ := t.featureTable.Put(synth)
		return id
	}
}

func (t *Trainer) digitFeatureID() int32 {
	if t.digitFeatureIDCache >= 0 {
		return t.digitFeatureIDCache
	}
	posStr, _ := t.posTable.GetByID(POSDigit)
	id, _, _ := t.featureTable.Put(posStr + ",*,*,*")
	t.digitFeatureIDCache = id
	return id
}

func (t *Trainer) symbolFeatureID() int32 {
	if t.symbolFeatureIDCache >= 0 {
		return t.symbolFeatureIDCache
	}
	posStr, _ := t.posTable.GetByID(POSSymbol)
	id, _, _ := t.featureTable.Put(posStr + ",*,*,*")
	t.symbolFeatureIDCache = id
	return id
}

// redundantIn reports whether secondary already holds a prefix of surface
// (surface itself included) carrying the exact same (shift, feature) pair,
// making surface's own entry redundant. derekparker/trie stores each added
// key's metadata on a terminating child keyed by rune 0 below the key's
// last rune node, so that child is what the walk inspects.
func redundantIn(secondary *trie.Trie, surface string, sf shiftFeature) bool {
	node := secondary.Root()
	if node == nil {
		return false
	}
	for _, r := range surface {
		children := node.Children()
		next, ok := children[r]
		if !ok {
			return false
		}
		node = next
		if term, ok := node.Children()[0]; ok && term.Terminating() {
			if meta, ok := term.Meta().(shiftFeature); ok && meta == sf {
				return true
			}
		}
	}
	return false
}
