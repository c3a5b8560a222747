// Package trie implements the array-backed byte/codepoint trie of
// spec.md §4.5, generalized from the recursive sibling-boundary scan in
// _examples/original_source/experiment/nanotrie/nanotrie.hh
// (build_tree_rec_impl): the build still recurses per sibling group, but
// writes into a flat arena with no back-pointers (spec.md §9: "traversal
// carries a cursor value").
package trie

import (
	"github.com/nanotrie/subword/internal/errs"
	"github.com/nanotrie/subword/internal/tokenhash"
)

// Token is one key element: either a raw byte value (0-255) or a Unicode
// codepoint (0-0x10FFFF). Both fit comfortably in a uint32, so the trie's
// arena does not need to be generic over key width; ToByteKey/ToCodepointKey
// convert the two surface representations spec.md §3 allows into this
// common token form.
type Token = uint32

// tag selects the node's child-shape variant. Encoded in the top 3 bits of
// each node's 32-bit word per spec.md §4.5 and the "Tagged variants" design
// note.
type tag uint8

const (
	tagLeaf tag = iota
	tagSingle
	tagSmall
	tagHash
)

const tagShift = 29
const payloadMask = (1 << tagShift) - 1

func packWord(t tag, payload int32) int32 {
	return int32(uint32(t)<<tagShift) | (payload & payloadMask)
}

func unpackWord(w int32) (tag, int32) {
	return tag(uint32(w) >> tagShift), w & payloadMask
}

// smallArrayThreshold is the sibling-count cutoff between a small sorted
// array node and a hashmap node (spec.md §4.5, "≤ 8 siblings").
const smallArrayThreshold = 8

type singleChild struct {
	token Token
	child int32
}

type smallEntry struct {
	token Token
	child int32
}

type smallGroup struct {
	entries []smallEntry // sorted by token
}

// Trie is a compact, array-backed trie over Token sequences.
type Trie struct {
	words  []int32 // per-node packed (tag, payload) word
	values []int32 // per-node value, -1 if none (spec.md: values are non-negative)

	singles []singleChild
	smalls  []smallGroup
	hashes  []*tokenhash.Map

	// keyIsCodepoint records which flavor of Token this trie was built
	// over, purely for the serialization header (spec.md §4.5
	// "fixed header identifying key-type width").
	keyIsCodepoint bool
}

const noValue int32 = -1

// ToByteKey converts raw bytes into a byte-token key.
func ToByteKey(s []byte) []Token {
	out := make([]Token, len(s))
	for i, b := range s {
		out[i] = Token(b)
	}
	return out
}

// ToCodepointKey converts a rune slice into a codepoint-token key.
func ToCodepointKey(cps []rune) []Token {
	out := make([]Token, len(cps))
	for i, r := range cps {
		out[i] = Token(r)
	}
	return out
}

// buildEntry pairs a key with its value so the two stay aligned while
// buildRange slices the sorted input into sibling groups.
type buildEntry struct {
	key   []Token
	value int32
}

// Build constructs a Trie from keys and their parallel values. keys must be
// lexicographically sorted over Token sequences, non-empty, and duplicate
// free, per spec.md §4.5. codepointKeyed only affects the serialized
// header.
func Build(keys [][]Token, values []int32, codepointKeyed bool) (*Trie, error) {
	if len(keys) == 0 {
		return nil, errs.New(errs.EmptyKey, "trie build received no keys")
	}
	if len(keys) != len(values) {
		return nil, errs.New(errs.UnsortedOrDuplicate, "keys and values length mismatch")
	}

	entries := make([]buildEntry, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, errs.New(errs.EmptyKey, "trie build received an empty key")
		}
		entries[i] = buildEntry{key: k, value: values[i]}
	}

	for i := 1; i < len(entries); i++ {
		if compareKeys(entries[i-1].key, entries[i].key) >= 0 {
			return nil, errs.New(errs.UnsortedOrDuplicate, "keys are not strictly sorted ascending")
		}
	}

	t := &Trie{keyIsCodepoint: codepointKeyed}
	_, err := t.buildRange(entries, 0, 0, len(entries))
	if err != nil {
		return nil, err
	}
	return t, nil
}

func compareKeys(a, b []Token) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// buildRange builds the node for the sibling group entries[left:right], all
// of which share a common prefix of length depth, and returns the new
// node's arena index. Mirrors nanotrie.hh's build_tree_rec_impl: identify
// the boundary where keys of length==depth end (the current node's own
// value, if any) and where each child's token run begins/ends, then recurse
// per child.
func (t *Trie) buildRange(entries []buildEntry, depth, left, right int) (int32, error) {
	value := noValue
	i := left
	if i < right && len(entries[i].key) == depth {
		value = entries[i].value
		i++
		if i < right && len(entries[i].key) == depth {
			return 0, errs.New(errs.UnsortedOrDuplicate, "duplicate key detected during build")
		}
	}

	type childRange struct {
		token      Token
		start, end int
	}
	var children []childRange
	for i < right {
		tok := entries[i].key[depth]
		start := i
		for i < right && entries[i].key[depth] == tok {
			i++
		}
		children = append(children, childRange{token: tok, start: start, end: i})
	}

	nodeIdx := int32(len(t.values))
	t.values = append(t.values, value)
	t.words = append(t.words, 0) // placeholder, patched below

	switch {
	case len(children) == 0:
		t.words[nodeIdx] = packWord(tagLeaf, 0)

	case len(children) == 1:
		c := children[0]
		childIdx, err := t.buildRange(entries, depth+1, c.start, c.end)
		if err != nil {
			return 0, err
		}
		scIdx := int32(len(t.singles))
		t.singles = append(t.singles, singleChild{token: c.token, child: childIdx})
		t.words[nodeIdx] = packWord(tagSingle, scIdx)

	case len(children) <= smallArrayThreshold:
		group := smallGroup{entries: make([]smallEntry, 0, len(children))}
		for _, c := range children {
			childIdx, err := t.buildRange(entries, depth+1, c.start, c.end)
			if err != nil {
				return 0, err
			}
			group.entries = append(group.entries, smallEntry{token: c.token, child: childIdx})
		}
		sgIdx := int32(len(t.smalls))
		t.smalls = append(t.smalls, group)
		t.words[nodeIdx] = packWord(tagSmall, sgIdx)

	default:
		hm := tokenhash.New(tokenhash.DefaultBuckets)
		for _, c := range children {
			childIdx, err := t.buildRange(entries, depth+1, c.start, c.end)
			if err != nil {
				return 0, err
			}
			if err := hm.Update(c.token, childIdx); err != nil {
				return 0, err
			}
		}
		hIdx := int32(len(t.hashes))
		t.hashes = append(t.hashes, hm)
		t.words[nodeIdx] = packWord(tagHash, hIdx)
	}

	return nodeIdx, nil
}

// childAt returns the child node index reached from node by token, if any.
func (t *Trie) childAt(node int32, token Token) (int32, bool) {
	tg, payload := unpackWord(t.words[node])
	switch tg {
	case tagLeaf:
		return 0, false
	case tagSingle:
		sc := t.singles[payload]
		if sc.token == token {
			return sc.child, true
		}
		return 0, false
	case tagSmall:
		// Linear scan: spec.md's threshold (≤8) is small enough that a
		// second binary-search code path buys nothing measurable, same
		// call nanohashmap.hh makes for its own ≤4 bucket runs.
		entries := t.smalls[payload].entries
		for _, e := range entries {
			if e.token == token {
				return e.child, true
			}
		}
		return 0, false
	case tagHash:
		v, ok := t.hashes[payload].Find(token)
		return v, ok
	}
	return 0, false
}

// Root is the arena index of the trie's root node.
const Root int32 = 0

// ExactMatch walks key from the root and returns the value stored for key,
// if key is exactly a stored key (spec.md §4.5).
func (t *Trie) ExactMatch(key []Token) (int32, bool) {
	node := Root
	for _, tok := range key {
		child, ok := t.childAt(node, tok)
		if !ok {
			return 0, false
		}
		node = child
	}
	return t.valueAt(node)
}

func (t *Trie) valueAt(node int32) (int32, bool) {
	v := t.values[node]
	if v == noValue {
		return 0, false
	}
	return v, true
}

// LongestPrefix walks key from the root and returns the length and value of
// the longest stored key that is a prefix of key. ok is false if no stored
// key is a prefix of key at all.
func (t *Trie) LongestPrefix(key []Token) (length int, value int32, ok bool) {
	node := Root
	bestLen := -1
	var bestVal int32

	if v, has := t.valueAt(node); has {
		bestLen, bestVal = 0, v
	}

	for i, tok := range key {
		child, found := t.childAt(node, tok)
		if !found {
			break
		}
		node = child
		if v, has := t.valueAt(node); has {
			bestLen, bestVal = i+1, v
		}
	}

	if bestLen < 0 {
		return 0, 0, false
	}
	return bestLen, bestVal, true
}

// Cursor is a resumable traversal position. A Trie has no mutating method
// after Build, so a Cursor remains valid for the trie's whole lifetime.
type Cursor struct {
	node  int32
	depth int
}

// NewCursor returns a Cursor positioned at the root.
func (t *Trie) NewCursor() Cursor { return Cursor{node: Root, depth: 0} }

// TraverseResult reports the outcome of one Traverse call. There is no
// separate fail-at-leaf result: whether the reached node carries a value is
// reported by HasValue.
type TraverseResult int

const (
	// TraverseOK means the cursor advanced and the destination node may or
	// may not carry a value; check Cursor separately via HasValue.
	TraverseOK TraverseResult = iota
	// TraverseFailAtIntermediate means no child matched the next token.
	TraverseFailAtIntermediate
)

// Traverse advances cur by one token, returning the new cursor position and
// whether the step succeeded. The caller may continue a prior walk from a
// previously matched position without rewalking from the root.
func (t *Trie) Traverse(cur Cursor, tok Token) (Cursor, TraverseResult) {
	child, ok := t.childAt(cur.node, tok)
	if !ok {
		return cur, TraverseFailAtIntermediate
	}
	return Cursor{node: child, depth: cur.depth + 1}, TraverseOK
}

// HasValue reports whether cur's node carries a stored value.
func (t *Trie) HasValue(cur Cursor) (int32, bool) {
	return t.valueAt(cur.node)
}

// HasChildren reports whether cur's node has any children at all — used by
// the tokenizer to distinguish "dead end, but maybe a longer key exists
// elsewhere" from "definitely no longer key starts here" (spec.md §4.6 step
// 3, "the trie's traverse returns ... an intermediate-present state").
func (t *Trie) HasChildren(cur Cursor) bool {
	tg, _ := unpackWord(t.words[cur.node])
	return tg != tagLeaf
}

// NumNodes returns the number of nodes in the arena.
func (t *Trie) NumNodes() int { return len(t.values) }

// Debug renders a human-readable dump of each node's tag for debugging
// (spec.md §9, "include a debug-only decoder").
func (t *Trie) Debug() []string {
	names := map[tag]string{tagLeaf: "leaf", tagSingle: "single", tagSmall: "small", tagHash: "hash"}
	out := make([]string, len(t.words))
	for i, w := range t.words {
		tg, payload := unpackWord(w)
		out[i] = names[tg] + "(" + itoa(payload) + ")"
	}
	return out
}

func itoa(v int32) string {
	return string(appendInt(nil, int64(v)))
}

func appendInt(dst []byte, v int64) []byte {
	if v < 0 {
		dst = append(dst, '-')
		v = -v
	}
	if v >= 10 {
		dst = appendInt(dst, v/10)
	}
	return append(dst, byte('0'+v%10))
}
