package trainer

import (
	"strings"

	"github.com/nanotrie/subword/internal/charclass"
	"github.com/nanotrie/subword/internal/idmap"
	"github.com/nanotrie/subword/internal/utf8scan"
)

// MineSentence runs spec.md §4.7's mining loop over one EOS-delimited
// sentence: for every token, enumerate every fragment of the remaining
// sentence text from the token's own byte span up to MaxWordLength,
// stepping one full UTF-8 character at a time, registering (fragment, −1)
// and (fragment, prev_pos_id) patterns and counting their (shift, feature)
// observations — stopping the first time (fragment, −1) is newly created,
// since a genuinely novel fragment need not be extended further.
func (t *Trainer) MineSentence(sent Sentence) error {
	if len(sent.Tokens) == 0 {
		return nil
	}
	if !t.sealed {
		t.SealSeed()
	}

	var sb strings.Builder
	for _, tok := range sent.Tokens {
		sb.WriteString(tok.Surface)
	}
	sentenceBytes := []byte(sb.String())

	sentLoc := 0
	prevPOS := POSBOS

	for _, tok := range sent.Tokens {
		featureID, _, err := t.featureTable.Put(tok.Feature)
		if err != nil {
			return err
		}
		posStr := posPrefix(tok.Feature, t.opts.NumPosFields)
		posID, _, err := t.posTable.Put(posStr)
		if err != nil {
			return err
		}

		shift := int32(len(tok.Surface))
		remaining := len(sentenceBytes) - sentLoc
		maxLen := t.maxWordLength
		if remaining < maxLen {
			maxLen = remaining
		}

		ends := charBoundaryEnds(sentenceBytes, sentLoc, int(shift), maxLen)

		var tokenPatternID int32 = -1
		for idx, end := range ends {
			fragment := string(sentenceBytes[sentLoc : sentLoc+end])

			id1, existed1, err := t.patternTable.Put(idmap.PosKey{Surface: fragment, PrevPOS: NoPrevPOS})
			if err != nil {
				return err
			}
			id2, _, err := t.patternTable.Put(idmap.PosKey{Surface: fragment, PrevPOS: prevPOS})
			if err != nil {
				return err
			}

			if idx == 0 {
				tokenPatternID = id1
			}

			t.recordObserved(id1, shift, featureID)
			t.recordObserved(id2, shift, featureID)

			if !existed1 {
				break
			}
		}

		// Empty-surface fallback: a token surface not present in the seed
		// lexicon and not classified DIGIT also contributes a (·, prev_pos)
		// pattern with no surface of its own, synthesized feature
		// "pos,*,*,*", and shift 0 — spec.md §4.7 "Mining loop".
		if tokenPatternID >= t.numSeedPatterns && charclass.Classify([]byte(tok.Surface), t.charTable) != charclass.Digit {
			synthFeature := posStr + ",*,*,*"
			sfID, _, err := t.featureTable.Put(synthFeature)
			if err != nil {
				return err
			}
			emptyID, _, err := t.patternTable.Put(idmap.PosKey{Surface: "", PrevPOS: prevPOS})
			if err != nil {
				return err
			}
			t.recordObserved(emptyID, 0, sfID)
		}

		sentLoc += len(tok.Surface)
		prevPOS = posID
	}

	return nil
}

// charBoundaryEnds returns the sequence of fragment end offsets (relative
// to loc) from shift up to maxLen, landing only on UTF-8 character
// boundaries.
func charBoundaryEnds(buf []byte, loc, shift, maxLen int) []int {
	ends := []int{shift}
	pos := loc + shift
	for pos < loc+maxLen {
		_, n, err := utf8scan.ToCodepoint(buf[pos:])
		if err != nil {
			break
		}
		if pos+n-loc > maxLen {
			break
		}
		pos += n
		ends = append(ends, pos-loc)
	}
	return ends
}

func (t *Trainer) recordObserved(id, shift, featureID int32) {
	st := t.observed[id]
	if st == nil {
		st = newPatternStats()
		t.observed[id] = st
	}
	st.record(shiftFeature{Shift: shift, FeatureID: featureID})
}
