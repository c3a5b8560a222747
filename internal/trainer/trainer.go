package trainer

import (
	"github.com/nanotrie/subword/internal/charclass"
	"github.com/nanotrie/subword/internal/errs"
	"github.com/nanotrie/subword/internal/idmap"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Trainer accumulates a pattern dictionary from a seed lexicon and a
// POS-tagged corpus, per spec.md §4.7. Zero value is not usable; construct
// with New.
type Trainer struct {
	opts Options

	posTable     *idmap.Map[idmap.StringKey]
	featureTable *idmap.Map[idmap.StringKey]
	patternTable *idmap.Map[idmap.PosKey]
	charTable    *charclass.Table
	counter      *CounterTable

	observed        map[int32]*patternStats
	seedPosFeature  map[int32]map[int32]int32
	numSeedPatterns int32
	maxWordLength   int

	digitFeatureIDCache  int32
	symbolFeatureIDCache int32

	sealed bool
	log    zerolog.Logger
}

// New returns a Trainer with the reserved POS ids and default alphabet
// seed patterns already registered (spec.md §4.7 "Bootstrapping").
func New(opts Options) *Trainer {
	t := &Trainer{
		opts:                 opts,
		posTable:             idmap.NewStringMap(),
		featureTable:         idmap.NewStringMap(),
		patternTable:         idmap.NewPosMap(),
		charTable:            charclass.NewDefaultTable(),
		counter:              NewCounterTable(),
		observed:             make(map[int32]*patternStats),
		seedPosFeature:       make(map[int32]map[int32]int32),
		digitFeatureIDCache:  -1,
		symbolFeatureIDCache: -1,
		log:                  log.With().Str("component", "trainer").Logger(),
	}
	t.bootstrap()
	return t
}

// bootstrap reserves POS ids 0-3 and registers every character of the
// default DIGIT/ALPHABET/KATAKANA alphabets as a seed pattern with no
// preceding POS (spec.md §4.7 "Bootstrapping").
func (t *Trainer) bootstrap() {
	for _, s := range reservedPOSStrings {
		if _, _, err := t.posTable.Put(s); err != nil {
			// Unreachable: the table is empty and MaxID is far larger than
			// len(reservedPOSStrings).
			panic(err)
		}
	}

	for _, alphabet := range []string{charclass.DefaultDigits, charclass.DefaultAlphabet, charclass.DefaultKatakana} {
		for _, r := range alphabet {
			if _, _, err := t.patternTable.Put(idmap.PosKey{Surface: string(r), PrevPOS: NoPrevPOS}); err != nil {
				panic(err)
			}
		}
	}
}

// AddSeedRecord ingests one already-field-split seed lexicon row:
// [surface, f1, f2, ..., fK, ...] where the first NumPosFields feature
// columns form the POS tuple and the full remainder is the feature tuple
// (spec.md §4.7 "Bootstrapping").
func (t *Trainer) AddSeedRecord(fields []string) error {
	if t.sealed {
		return errs.New(errs.SchemaMismatch, "seed records can no longer be added after SealSeed")
	}
	if len(fields) < t.opts.NumPosFields+1 {
		return errs.Newf(errs.SchemaMismatch, "seed row has %d fields, need at least %d", len(fields), t.opts.NumPosFields+1)
	}

	surface := fields[0]
	featureFields := fields[1:]
	featureStr := joinCSVFields(featureFields)
	posStr := joinCSVFields(featureFields[:t.opts.NumPosFields])

	featureID, _, err := t.featureTable.Put(featureStr)
	if err != nil {
		return err
	}
	posID, _, err := t.posTable.Put(posStr)
	if err != nil {
		return err
	}
	patID, _, err := t.patternTable.Put(idmap.PosKey{Surface: surface, PrevPOS: NoPrevPOS})
	if err != nil {
		return err
	}

	if t.seedPosFeature[patID] == nil {
		t.seedPosFeature[patID] = make(map[int32]int32)
	}
	t.seedPosFeature[patID][posID] = featureID

	if len(surface) > t.maxWordLength {
		t.maxWordLength = len(surface)
	}
	return nil
}

// SealSeed marks the seed/bootstrap boundary: pattern ids below this point
// are seed-originated and eligible for the seed back-fill heuristic during
// pruning (spec.md §4.7 "Pruning"). Call once, after every seed record has
// been added and before mining any corpus sentence.
func (t *Trainer) SealSeed() {
	t.sealed = true
	t.numSeedPatterns = int32(t.patternTable.Size())
	t.log.Info().Int32("seed_patterns", t.numSeedPatterns).Int("max_word_length", t.maxWordLength).Msg("seed sealed")
}

// MaxWordLength returns the longest seed surface byte length seen so far,
// the bound the mining loop uses for fragment enumeration.
func (t *Trainer) MaxWordLength() int { return t.maxWordLength }
