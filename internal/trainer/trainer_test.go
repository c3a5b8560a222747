package trainer

import (
	"testing"

	"github.com/nanotrie/subword/internal/idmap"
)

func newTestTrainer() *Trainer {
	return New(Options{NumPosFields: 1})
}

func TestBootstrapReservesPOSIds(t *testing.T) {
	tr := newTestTrainer()
	for id, want := range reservedPOSStrings {
		got, ok := tr.POSString(int32(id))
		if !ok || got != want {
			t.Fatalf("pos id %d: got %q, want %q", id, got, want)
		}
	}
}

func TestBootstrapRegistersAlphabetCharsAsPatterns(t *testing.T) {
	tr := newTestTrainer()
	if _, ok := tr.patternTable.GetByKey(idmap.PosKey{Surface: "5", PrevPOS: NoPrevPOS}); !ok {
		t.Fatal("expected digit '5' registered as a seed pattern")
	}
	if _, ok := tr.patternTable.GetByKey(idmap.PosKey{Surface: "ア", PrevPOS: NoPrevPOS}); !ok {
		t.Fatal("expected katakana 'ア' registered as a seed pattern")
	}
}

func TestAddSeedRecordRejectsShortRow(t *testing.T) {
	tr := newTestTrainer()
	err := tr.AddSeedRecord([]string{"word"})
	if err == nil {
		t.Fatal("expected SchemaMismatch error")
	}
}

func TestAddSeedRecordTracksMaxWordLength(t *testing.T) {
	tr := newTestTrainer()
	if err := tr.AddSeedRecord([]string{"hello", "NOUN", "*", "*"}); err != nil {
		t.Fatalf("AddSeedRecord: %v", err)
	}
	if tr.MaxWordLength() != len("hello") {
		t.Fatalf("got max word length %d, want %d", tr.MaxWordLength(), len("hello"))
	}
}

// TestTrainerPatternEnumeration is spec.md §8 scenario 4: mining the
// sentence 吾輩は猫である, tokenized as [吾輩, は, 猫, である], enumerates
// every UTF-8-character-stepped fragment of token 吾輩's remaining
// sentence span under both (fragment, −1) and (fragment, 0=BOS), each
// incremented by 1 at (shift=len(吾輩), feature_id(吾輩)). The scenario's
// listed fragments all survive as pre-existing (non-novel) seed patterns,
// so the enumeration runs to the natural max_word_length bound rather than
// breaking at the first newly-created fragment.
func TestTrainerPatternEnumeration(t *testing.T) {
	tr := newTestTrainer()

	fragments := []string{
		"吾輩", "吾輩は", "吾輩は猫", "吾輩は猫で", "吾輩は猫であ", "吾輩は猫である",
	}
	for _, f := range fragments {
		if err := tr.AddSeedRecord([]string{f, "NOUN", "*", "*", "*"}); err != nil {
			t.Fatalf("seeding %q: %v", f, err)
		}
	}
	for _, f := range []string{"は", "猫", "である"} {
		if err := tr.AddSeedRecord([]string{f, "PART", "*", "*", "*"}); err != nil {
			t.Fatalf("seeding %q: %v", f, err)
		}
	}
	tr.SealSeed()

	sent := Sentence{Tokens: []TaggedToken{
		{Surface: "吾輩", Feature: "NOUN,*,*,*"},
		{Surface: "は", Feature: "PART,*,*,*"},
		{Surface: "猫", Feature: "NOUN,*,*,*"},
		{Surface: "である", Feature: "AUX,*,*,*"},
	}}
	if err := tr.MineSentence(sent); err != nil {
		t.Fatalf("MineSentence: %v", err)
	}

	wantShift := int32(len("吾輩"))
	wantFeature, ok := tr.featureTable.GetByKey("NOUN,*,*,*")
	if !ok {
		t.Fatal("expected feature NOUN,*,*,* to be registered")
	}
	sf := shiftFeature{Shift: wantShift, FeatureID: wantFeature}

	for _, f := range fragments {
		for _, prevPOS := range []int32{NoPrevPOS, POSBOS} {
			patID, ok := tr.patternTable.GetByKey(idmap.PosKey{Surface: f, PrevPOS: prevPOS})
			if !ok {
				t.Fatalf("pattern (%q, %d) not registered", f, prevPOS)
			}
			st := tr.observed[patID]
			if st == nil {
				t.Fatalf("pattern (%q, %d) has no observed counts", f, prevPOS)
			}
			if got := st.counts[sf]; got != 1 {
				t.Fatalf("pattern (%q, %d) count at (shift=%d,feature=%d): got %d, want 1", f, prevPOS, sf.Shift, sf.FeatureID, got)
			}
		}
	}
}

// TestEmptySurfaceFallback is spec.md §8 scenario 5: a token seen only in
// the tagged corpus (never seeded, so its id is past the seed boundary)
// with CharKind != DIGIT also contributes pattern ("", prev_pos_id) with
// synthetic feature "POS,*,*,*" and shift 0.
func TestEmptySurfaceFallback(t *testing.T) {
	tr := newTestTrainer()
	tr.SealSeed()

	sent := Sentence{Tokens: []TaggedToken{
		{Surface: "猫", Feature: "NOUN,*,*,*"},
	}}
	if err := tr.MineSentence(sent); err != nil {
		t.Fatalf("MineSentence: %v", err)
	}

	synthFeatureID, ok := tr.featureTable.GetByKey("NOUN,*,*,*")
	if !ok {
		t.Fatal("expected synthesized feature NOUN,*,*,* to be registered")
	}
	patID, ok := tr.patternTable.GetByKey(idmap.PosKey{Surface: "", PrevPOS: POSBOS})
	if !ok {
		t.Fatal("expected empty-surface pattern (\"\", BOS) to be registered")
	}
	st := tr.observed[patID]
	if st == nil {
		t.Fatal("empty-surface pattern has no observed counts")
	}
	if got := st.counts[shiftFeature{Shift: 0, FeatureID: synthFeatureID}]; got != 1 {
		t.Fatalf("empty-surface pattern count at shift=0: got %d, want 1", got)
	}
}

// TestEmptySurfaceFallbackSkippedForDigit checks the CharKind != DIGIT
// guard: a corpus-only digit token must not synthesize an empty-surface
// pattern.
func TestEmptySurfaceFallbackSkippedForDigit(t *testing.T) {
	tr := newTestTrainer()
	tr.SealSeed()

	sent := Sentence{Tokens: []TaggedToken{
		{Surface: "42", Feature: "NUM,*,*,*"},
	}}
	if err := tr.MineSentence(sent); err != nil {
		t.Fatalf("MineSentence: %v", err)
	}

	if _, ok := tr.patternTable.GetByKey(idmap.PosKey{Surface: "", PrevPOS: POSBOS}); ok {
		t.Fatal("did not expect an empty-surface pattern for a DIGIT-classified token")
	}
}

// TestDigitClassPrune is spec.md §8 scenario 6: an unseen pattern string
// consisting only of DIGIT characters receives the reserved DIGIT feature
// regardless of corpus counts. "42" resolves to (shift=−1, DIGIT feature),
// the same pair as the bootstrapped prefix pattern "4", so pruning keeps
// "4" with that pair and drops "42" as redundant.
func TestDigitClassPrune(t *testing.T) {
	tr := newTestTrainer()
	tr.SealSeed()

	if _, _, err := tr.patternTable.Put(idmap.PosKey{Surface: "42", PrevPOS: NoPrevPOS}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	patterns, err := tr.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}

	digitFeatureID := tr.digitFeatureID()
	if got := tr.backfillByCharClass("42"); got != digitFeatureID {
		t.Fatalf("\"42\": got feature id %d, want reserved digit feature id %d", got, digitFeatureID)
	}
	found := false
	for _, p := range patterns {
		if p.Surface == "42" && p.PrevPOS == NoPrevPOS {
			t.Fatal("expected \"42\" to be dropped as redundant with its prefix \"4\"")
		}
		if p.Surface == "4" && p.PrevPOS == NoPrevPOS {
			found = true
			if p.FeatureID != digitFeatureID {
				t.Fatalf("got feature id %d, want reserved digit feature id %d", p.FeatureID, digitFeatureID)
			}
			if p.Shift != VocabOnlyShift {
				t.Fatalf("got shift %d, want %d", p.Shift, VocabOnlyShift)
			}
		}
	}
	if !found {
		t.Fatal("expected pattern \"4\" to survive pruning")
	}
}

// TestPruneDropsRedundantPrefixPattern checks the secondary-trie redundancy
// rule: a longer pattern sharing its shorter prefix's exact (shift,
// feature) pair is dropped. Neither "ab" nor "abc" is ever mined, so both
// resolve via the seed back-fill heuristic to the same single POS
// candidate's (shift=−1, feature) pair, making the longer one redundant.
func TestPruneDropsRedundantPrefixPattern(t *testing.T) {
	tr := newTestTrainer()
	if err := tr.AddSeedRecord([]string{"ab", "NOUN", "*", "*"}); err != nil {
		t.Fatalf("AddSeedRecord: %v", err)
	}
	if err := tr.AddSeedRecord([]string{"abc", "NOUN", "*", "*"}); err != nil {
		t.Fatalf("AddSeedRecord: %v", err)
	}
	tr.SealSeed()

	patterns, err := tr.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}

	var sawABC bool
	for _, p := range patterns {
		if p.Surface == "abc" && p.PrevPOS == NoPrevPOS {
			sawABC = true
		}
	}
	if sawABC {
		t.Fatal("expected redundant \"abc\" pattern to be dropped")
	}
}
