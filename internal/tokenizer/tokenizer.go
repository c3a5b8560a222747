// Package tokenizer implements the longest-match, byte-fallback subword
// tokenizer of spec.md §4.6, composing the trie (C5) and UTF-8 scanner (C1).
//
// The Encoder/Decoder Feed/Flush shape is kept from the teacher
// (_examples/adiu19-bpetok-go/bpetok/core.go,
// internal/tokenizer/tokenizer.go), but retargeted from BPE pair-merge
// semantics to trie longest-match semantics.
package tokenizer

import (
	"github.com/nanotrie/subword/internal/errs"
	"github.com/nanotrie/subword/internal/trie"
	"github.com/nanotrie/subword/internal/utf8scan"
)

// Reserved id bands, spec.md §4.6 / §6.
const (
	// EndOfText is the reserved id 0.
	EndOfText int32 = 0
	// ByteFallbackBase is added to a raw byte value to form its fallback id.
	ByteFallbackBase int32 = 1
	// ByteFallbackMax is the last id in the byte-fallback band.
	ByteFallbackMax int32 = 256
	// VocabBase is the first id available to vocabulary entries.
	VocabBase int32 = 257
)

// Vocab is the read-only vocabulary backing a Tokenizer: a trie over UTF-8
// byte sequences mapping to ids ≥ VocabBase, plus the reverse string table
// needed for Decode.
type Vocab struct {
	Trie     *trie.Trie
	RevVocab map[int32][]byte
}

// Tokenizer encodes/decodes text against a Vocab using longest-match with
// byte fallback (spec.md §4.6). It holds no mutable state and is safe for
// concurrent read-only use once constructed, mirroring the teacher's
// immutability invariant for its BPE Tokenizer.
type Tokenizer struct {
	vocab *Vocab
}

// New returns a Tokenizer over vocab.
func New(vocab *Vocab) *Tokenizer {
	return &Tokenizer{vocab: vocab}
}

// Encoder is the streaming encoder interface, kept verbatim in shape from
// the teacher's BPE Encoder interface.
type Encoder interface {
	// Feed consumes the next chunk of raw bytes and returns zero or more
	// completed token ids. The returned slice may alias internal memory;
	// callers needing to retain it must copy.
	Feed(chunk []byte) ([]int32, error)
	// Flush signals end of stream and returns any remaining buffered ids.
	// After Flush, the encoder is reset and reusable for a new stream.
	Flush() ([]int32, error)
}

// Decoder is the decode-side counterpart of Encoder.
type Decoder interface {
	// Feed consumes token ids and returns the decoded bytes they represent.
	Feed(tokens []int32) ([]byte, error)
}

// Encode performs one-shot longest-match encoding of text, with UTF-8
// byte-fallback when no vocabulary entry matches (spec.md §4.6).
//
// Algorithm, mirroring spec.md step by step: maintain cursor and
// probe_len=0; extend probe_len while the trie reports a live traversal
// state; on dead end, emit the best recorded match (or byte-fallback the
// next character if there was no match at all); repeat until cursor reaches
// the end of text.
func (t *Tokenizer) Encode(text []byte) ([]int32, error) {
	var out []int32
	cursor := 0

	for cursor < len(text) {
		consumed, ids, err := t.encodeOneStep(text, cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
		cursor += consumed
	}

	return out, nil
}

// encodeOneStep advances from cursor by the single longest vocabulary match
// (or, failing that, one byte-fallback character) and returns how many
// bytes were consumed and which ids were emitted.
//
// The trie is keyed over raw bytes (spec.md §4.5 allows either byte or
// codepoint keys; this tokenizer picks byte keys so ASCII and multi-byte
// UTF-8 text share a single trie), so traversal advances one byte token at
// a time regardless of how many bytes the current UTF-8 character spans.
func (t *Tokenizer) encodeOneStep(text []byte, cursor int) (consumed int, ids []int32, err error) {
	cur := t.vocab.Trie.NewCursor()
	probeLen := 0

	bestLen := -1
	var bestValue int32

	firstCharLen := -1

	for cursor+probeLen < len(text) {
		_, charLen, err := utf8scan.ToCodepoint(text[cursor+probeLen:])
		if err != nil {
			return 0, nil, errs.Wrap(errs.InvalidUtf8, err, "encode: invalid UTF-8 at cursor")
		}
		if firstCharLen == -1 {
			firstCharLen = charLen
		}

		for k := 0; k < charLen; k++ {
			b := text[cursor+probeLen+k]
			next, res := t.vocab.Trie.Traverse(cur, trie.Token(b))
			if res == trie.TraverseFailAtIntermediate {
				return t.finishStep(cursor, bestLen, bestValue, firstCharLen, text)
			}
			cur = next
		}
		probeLen += charLen

		if v, has := t.vocab.Trie.HasValue(cur); has {
			bestLen, bestValue = probeLen, v
		}
		if !t.vocab.Trie.HasChildren(cur) {
			return t.finishStep(cursor, bestLen, bestValue, firstCharLen, text)
		}
	}

	return t.finishStep(cursor, bestLen, bestValue, firstCharLen, text)
}

// finishStep implements spec.md step 4/5: on a dead traversal, emit the
// best recorded match if any, else byte-fallback the first character.
func (t *Tokenizer) finishStep(cursor, bestLen int, bestValue int32, firstCharLen int, text []byte) (int, []int32, error) {
	if bestLen >= 0 {
		return bestLen, []int32{bestValue}, nil
	}

	// No vocabulary entry matched at all: byte-fallback the first character
	// at cursor.
	if firstCharLen == -1 {
		_, charLen, err := utf8scan.ToCodepoint(text[cursor:])
		if err != nil {
			return 0, nil, errs.Wrap(errs.InvalidUtf8, err, "encode: invalid UTF-8 at cursor")
		}
		firstCharLen = charLen
	}
	ids := make([]int32, firstCharLen)
	for i := 0; i < firstCharLen; i++ {
		ids[i] = ByteFallbackBase + int32(text[cursor+i])
	}
	return firstCharLen, ids, nil
}

// Decode reconstructs text from a sequence of ids, per spec.md §4.6.
func (t *Tokenizer) Decode(ids []int32) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(ids) {
		id := ids[i]
		switch {
		case id == EndOfText:
			i++
		case id >= ByteFallbackBase && id <= ByteFallbackMax:
			n, consumed, err := t.decodeFallbackRun(ids[i:])
			if err != nil {
				return nil, err
			}
			out = append(out, n...)
			i += consumed
		case id >= VocabBase:
			s, ok := t.vocab.RevVocab[id]
			if !ok {
				return nil, errs.Newf(errs.UnknownId, "decode: unknown vocabulary id %d", id)
			}
			out = append(out, s...)
			i++
		default:
			return nil, errs.Newf(errs.UnknownId, "decode: id %d outside known ranges", id)
		}
	}
	return out, nil
}

// decodeFallbackRun collects the minimum number of consecutive
// byte-fallback ids (1-4) needed to reconstruct one valid UTF-8 character,
// per spec.md §4.6.
func (t *Tokenizer) decodeFallbackRun(ids []int32) ([]byte, int, error) {
	var raw []byte
	maxLen := 4
	if len(ids) < maxLen {
		maxLen = len(ids)
	}

	for n := 1; n <= maxLen; n++ {
		if ids[n-1] < ByteFallbackBase || ids[n-1] > ByteFallbackMax {
			break
		}
		raw = append(raw, byte(ids[n-1]-ByteFallbackBase))

		if _, clen, err := utf8scan.ToCodepoint(raw); err == nil && clen == n {
			return raw, n, nil
		}
	}

	return nil, 0, errs.New(errs.InvalidFallbackSequence, "decode: byte-fallback ids do not form a valid UTF-8 character")
}
