package trie

import (
	"encoding/binary"

	"github.com/nanotrie/subword/internal/errs"
	"github.com/nanotrie/subword/internal/tokenhash"
)

// magic identifies the trie's serialized form. "NTRI" for nanotrie.
const magic uint32 = 0x4e545249

// Header layout (little-endian, packed, no padding), per spec.md §4.5
// "Serialization": magic, key-type width, node count, then section counts.
type header struct {
	Magic        uint32
	CodepointKey uint32 // 0 = byte keys, 1 = codepoint keys
	NumNodes     uint32
	NumSingles   uint32
	NumSmalls    uint32
	NumHashes    uint32
}

const headerSize = 6 * 4

// Serialize produces a byte-exact encoding of t: the header, packed node
// words, per-node values, then each side array (singles, smalls, hashmap
// bodies) in order of first appearance.
func (t *Trie) Serialize() []byte {
	codepointKey := uint32(0)
	if t.keyIsCodepoint {
		codepointKey = 1
	}

	h := header{
		Magic:        magic,
		CodepointKey: codepointKey,
		NumNodes:     uint32(len(t.words)),
		NumSingles:   uint32(len(t.singles)),
		NumSmalls:    uint32(len(t.smalls)),
		NumHashes:    uint32(len(t.hashes)),
	}

	out := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(out[0:4], h.Magic)
	binary.LittleEndian.PutUint32(out[4:8], h.CodepointKey)
	binary.LittleEndian.PutUint32(out[8:12], h.NumNodes)
	binary.LittleEndian.PutUint32(out[12:16], h.NumSingles)
	binary.LittleEndian.PutUint32(out[16:20], h.NumSmalls)
	binary.LittleEndian.PutUint32(out[20:24], h.NumHashes)

	for _, w := range t.words {
		out = appendUint32(out, uint32(w))
	}
	for _, v := range t.values {
		out = appendUint32(out, uint32(v))
	}
	for _, sc := range t.singles {
		out = appendUint32(out, sc.token)
		out = appendUint32(out, uint32(sc.child))
	}
	for _, g := range t.smalls {
		out = appendUint32(out, uint32(len(g.entries)))
		for _, e := range g.entries {
			out = appendUint32(out, e.token)
			out = appendUint32(out, uint32(e.child))
		}
	}
	for _, hm := range t.hashes {
		body := hm.Serialize()
		out = appendUint32(out, uint32(len(body)))
		out = append(out, body...)
	}

	return out
}

func appendUint32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) u32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, errs.New(errs.CorruptBlob, "trie: truncated while reading u32")
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, errs.New(errs.CorruptBlob, "trie: truncated while reading bytes")
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Deserialize restores a Trie from data produced by Serialize, validating
// every cross-reference (child indices within bounds, hashmap bodies well
// formed) before returning, per spec.md §4.5 "Deserialize validates all
// cross-references."
func Deserialize(data []byte) (*Trie, error) {
	if len(data) < headerSize {
		return nil, errs.New(errs.CorruptBlob, "trie: truncated header")
	}
	r := &byteReader{buf: data}

	m, err := r.u32()
	if err != nil {
		return nil, err
	}
	if m != magic {
		return nil, errs.New(errs.CorruptBlob, "trie: bad magic")
	}
	codepointKey, err := r.u32()
	if err != nil {
		return nil, err
	}
	numNodes, err := r.u32()
	if err != nil {
		return nil, err
	}
	numSingles, err := r.u32()
	if err != nil {
		return nil, err
	}
	numSmalls, err := r.u32()
	if err != nil {
		return nil, err
	}
	numHashes, err := r.u32()
	if err != nil {
		return nil, err
	}

	t := &Trie{keyIsCodepoint: codepointKey == 1}

	t.words = make([]int32, numNodes)
	for i := range t.words {
		w, err := r.u32()
		if err != nil {
			return nil, err
		}
		t.words[i] = int32(w)
	}

	t.values = make([]int32, numNodes)
	for i := range t.values {
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		t.values[i] = int32(v)
	}

	t.singles = make([]singleChild, numSingles)
	for i := range t.singles {
		tok, err := r.u32()
		if err != nil {
			return nil, err
		}
		child, err := r.u32()
		if err != nil {
			return nil, err
		}
		t.singles[i] = singleChild{token: tok, child: int32(child)}
	}

	t.smalls = make([]smallGroup, numSmalls)
	for i := range t.smalls {
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		entries := make([]smallEntry, n)
		for k := range entries {
			tok, err := r.u32()
			if err != nil {
				return nil, err
			}
			child, err := r.u32()
			if err != nil {
				return nil, err
			}
			entries[k] = smallEntry{token: tok, child: int32(child)}
		}
		t.smalls[i] = smallGroup{entries: entries}
	}

	t.hashes = make([]*tokenhash.Map, numHashes)
	for i := range t.hashes {
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		body, err := r.bytes(int(n))
		if err != nil {
			return nil, err
		}
		hm, err := tokenhash.Deserialize(tokenhash.DefaultBuckets, body)
		if err != nil {
			return nil, errs.Wrap(errs.CorruptBlob, err, "trie: bad hashmap body")
		}
		t.hashes[i] = hm
	}

	// Validate every cross-reference: tag payload indices and child node
	// indices must be in range.
	for i, w := range t.words {
		tg, payload := unpackWord(w)
		switch tg {
		case tagLeaf:
		case tagSingle:
			if payload < 0 || int(payload) >= len(t.singles) {
				return nil, errs.Newf(errs.CorruptBlob, "trie: node %d single index out of range", i)
			}
			if c := t.singles[payload].child; c < 0 || int(c) >= len(t.words) {
				return nil, errs.Newf(errs.CorruptBlob, "trie: node %d single child out of range", i)
			}
		case tagSmall:
			if payload < 0 || int(payload) >= len(t.smalls) {
				return nil, errs.Newf(errs.CorruptBlob, "trie: node %d small index out of range", i)
			}
			for _, e := range t.smalls[payload].entries {
				if e.child < 0 || int(e.child) >= len(t.words) {
					return nil, errs.Newf(errs.CorruptBlob, "trie: node %d small child out of range", i)
				}
			}
		case tagHash:
			if payload < 0 || int(payload) >= len(t.hashes) {
				return nil, errs.Newf(errs.CorruptBlob, "trie: node %d hash index out of range", i)
			}
			for _, e := range t.hashes[payload].All() {
				if e.Value < 0 || int(e.Value) >= len(t.words) {
					return nil, errs.Newf(errs.CorruptBlob, "trie: node %d hash child out of range", i)
				}
			}
		default:
			return nil, errs.Newf(errs.CorruptBlob, "trie: node %d has unknown tag", i)
		}
	}

	return t, nil
}
