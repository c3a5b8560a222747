// Package bpetok is the module's top-level facade: load a trained
// vocabulary (a tensor-blob plus its patterns sidecar, per spec.md §6) and
// encode/decode text against it. The Encoder/Decoder Feed/Flush shape is
// kept from the teacher's own bpetok/core.go, retargeted from BPE
// pair-merge ids to the trie longest-match ids internal/tokenizer produces.
package bpetok

import (
	"sort"

	"github.com/nanotrie/subword/internal/blob"
	"github.com/nanotrie/subword/internal/tokenizer"
)

// Encoder streams raw bytes in and token ids out.
type Encoder interface {
	// Feed consumes the next chunk of raw bytes and may emit zero or more
	// completed token ids. The returned slice may alias internal memory;
	// callers needing to retain it must copy.
	Feed(chunk []byte) ([]int32, error)

	// Flush signals end of stream and returns any ids still buffered
	// pending a longer match. The encoder is reset and reusable afterward.
	Flush() ([]int32, error)
}

// Decoder streams token ids in and raw bytes out. No Flush is needed: a
// completed id sequence has no partial state spanning calls.
type Decoder interface {
	// Feed consumes token ids and returns the bytes they decode to. The
	// returned slice may alias internal memory; callers needing to retain
	// it must copy.
	Feed(tokens []int32) ([]byte, error)
}

// Tokenizer is a loaded, immutable vocabulary ready to mint Encoders and
// Decoders. It holds no mutable state and is safe for concurrent use.
type Tokenizer struct {
	inner       *tokenizer.Tokenizer
	maxEntryLen int
}

// LoadTokenizer restores a Tokenizer from a tensor-blob (vocabPath, written
// by internal/blob.Write) and its companion patterns sidecar
// (patternsPath, written by internal/blob.WritePatternsSidecar). The blob
// is opened (and its region layout validated) purely to fail fast on a
// corrupt artifact; vocabulary ids themselves come from the sidecar's
// surface list, assigned densely from tokenizer.VocabBase in sorted order
// so two processes loading the same sidecar agree on ids without needing
// to ship the production trie itself.
func LoadTokenizer(vocabPath, patternsPath string) (*Tokenizer, error) {
	mapped, err := blob.Open(vocabPath)
	if err != nil {
		return nil, err
	}
	defer mapped.Close()

	records, err := blob.ReadPatternsSidecar(patternsPath)
	if err != nil {
		return nil, err
	}

	entries, maxLen := vocabEntries(records)
	vocab, err := tokenizer.BuildVocab(entries)
	if err != nil {
		return nil, err
	}

	return &Tokenizer{inner: tokenizer.New(vocab), maxEntryLen: maxLen}, nil
}

// vocabEntries collects the distinct non-empty surfaces from records
// (empty surfaces are the trainer's POS-only fallback records, spec.md
// §4.7 step 3, and carry no trie entry of their own), sorted so id
// assignment is deterministic across processes.
func vocabEntries(records []blob.SidecarRecord) (map[string]int32, int) {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Surface != "" {
			seen[r.Surface] = struct{}{}
		}
	}

	surfaces := make([]string, 0, len(seen))
	for s := range seen {
		surfaces = append(surfaces, s)
	}
	sort.Strings(surfaces)

	entries := make(map[string]int32, len(surfaces))
	maxLen := 0
	for i, s := range surfaces {
		entries[s] = tokenizer.VocabBase + int32(i)
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	return entries, maxLen
}

// NewEncoder returns a fresh streaming Encoder over t's vocabulary.
func (t *Tokenizer) NewEncoder() Encoder {
	return tokenizer.NewStreamEncoder(t.inner, t.maxEntryLen)
}

// NewDecoder returns a Decoder over t's vocabulary.
func (t *Tokenizer) NewDecoder() Decoder {
	return tokenizer.NewBasicDecoder(t.inner)
}
