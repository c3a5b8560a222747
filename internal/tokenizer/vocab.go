package tokenizer

import (
	"sort"

	"github.com/nanotrie/subword/internal/trie"
)

// BuildVocab constructs a Vocab from a surface->id map, where every id must
// already respect the reserved-id bands of spec.md §4.6 (ids ≥ VocabBase).
// bpetok.LoadTokenizer obtains entries from the surfaces listed in a
// patterns sidecar.
func BuildVocab(entries map[string]int32) (*Vocab, error) {
	surfaces := make([]string, 0, len(entries))
	for s := range entries {
		surfaces = append(surfaces, s)
	}
	sort.Strings(surfaces)

	keys := make([][]trie.Token, len(surfaces))
	values := make([]int32, len(surfaces))
	rev := make(map[int32][]byte, len(surfaces))
	for i, s := range surfaces {
		keys[i] = trie.ToByteKey([]byte(s))
		values[i] = entries[s]
		rev[entries[s]] = []byte(s)
	}

	t, err := trie.Build(keys, values, false)
	if err != nil {
		return nil, err
	}

	return &Vocab{Trie: t, RevVocab: rev}, nil
}

// MaxEntryLen returns the longest surface byte length in the vocabulary,
// used to size a StreamEncoder's tail reserve.
func (v *Vocab) MaxEntryLen() int {
	max := 0
	for _, s := range v.RevVocab {
		if len(s) > max {
			max = len(s)
		}
	}
	return max
}
