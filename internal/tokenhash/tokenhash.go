// Package tokenhash implements the fixed-bucket single-token hash map used
// as the dense payload inside trie hashmap nodes (spec.md §3 "Trie node
// encoding", §4.4), ported from
// _examples/original_source/experiment/nanotrie/nanohashmap.hh.
package tokenhash

import (
	"encoding/binary"
	"sort"

	"github.com/nanotrie/subword/internal/errs"
)

// linearScanThreshold is the bucket size at or below which a linear scan is
// used instead of a binary search, matching the original's ≤4 threshold.
const linearScanThreshold = 4

const fnvOffsetBasis uint32 = 0x811c9dc5
const fnvPrime uint32 = 0x01000193

// FNV1a hashes key's bytes with the 32-bit FNV-1a algorithm, matching
// nanohashmap.hh's inline hash exactly (not hash/fnv, to keep the hash
// domain identical byte-for-byte to the serialized format).
func FNV1a(key []byte) uint32 {
	h := fnvOffsetBasis
	for _, b := range key {
		h = (h ^ uint32(b)) * fnvPrime
	}
	return h
}

// Entity is one key/value slot inside the shared entity buffer.
type Entity struct {
	Key   uint32
	Value int32
}

type bucket struct {
	count  uint32
	offset uint32
}

// Map is a fixed-N-bucket hash map over uint32 keys (the trie's KeyType is
// always representable as a uint32: a byte 0-255 or a codepoint up to
// 0x10FFFF). N is fixed at construction and never resized.
type Map struct {
	n       uint32
	buckets []bucket
	buffer  []Entity
}

// New returns an empty Map with n buckets. 64 is the spec's suggested
// default for per-node hash payloads (spec.md §4.4).
func New(n uint32) *Map {
	return &Map{n: n, buckets: make([]bucket, n)}
}

// DefaultBuckets is the per-node bucket count used when a trie hashmap node
// is constructed without an explicit override.
const DefaultBuckets = 64

func (m *Map) bucketIndex(key uint32) uint32 {
	var kb [4]byte
	binary.LittleEndian.PutUint32(kb[:], key)
	return FNV1a(kb[:]) % m.n
}

func (m *Map) search(b *bucket, key uint32) (pos int, found bool) {
	if b.count == 0 {
		return 0, false
	}
	lo := int(b.offset)
	hi := int(b.offset + b.count)
	if b.count <= linearScanThreshold {
		for i := lo; i < hi; i++ {
			if m.buffer[i].Key == key {
				return i, true
			}
		}
		return 0, false
	}
	i := sort.Search(int(b.count), func(i int) bool {
		return m.buffer[lo+i].Key >= key
	})
	if i < int(b.count) && m.buffer[lo+i].Key == key {
		return lo + i, true
	}
	return 0, false
}

// sortedInsertPos returns the index within [lo,hi) where key should be
// inserted to keep the run sorted ascending.
func (m *Map) sortedInsertPos(lo, hi int, key uint32) int {
	i := sort.Search(hi-lo, func(i int) bool {
		return m.buffer[lo+i].Key >= key
	})
	return lo + i
}

// Update inserts key/value, or overwrites value if key already exists.
func (m *Map) Update(key uint32, value int32) error {
	idx := m.bucketIndex(key)
	b := &m.buckets[idx]

	if pos, found := m.search(b, key); found {
		m.buffer[pos].Value = value
		return nil
	}

	if len(m.buffer) > (1<<31 - 1) {
		return errs.New(errs.TooMany, "tokenhash entity buffer would exceed int32 capacity")
	}

	lo := int(b.offset)
	hi := int(b.offset + b.count)
	insertAt := lo
	if b.count > 0 {
		insertAt = m.sortedInsertPos(lo, hi, key)
	} else {
		insertAt = len(m.buffer)
		b.offset = uint32(insertAt)
	}

	m.buffer = append(m.buffer, Entity{})
	copy(m.buffer[insertAt+1:], m.buffer[insertAt:len(m.buffer)-1])
	m.buffer[insertAt] = Entity{Key: key, Value: value}
	b.count++

	// Adjust every other bucket's offset at or past the insertion point: a
	// run that started exactly at insertAt now starts one slot later.
	for i := range m.buckets {
		if uint32(i) != idx && m.buckets[i].offset >= uint32(insertAt) {
			m.buckets[i].offset++
		}
	}

	return nil
}

// Count reports whether key is present.
func (m *Map) Count(key uint32) bool {
	b := &m.buckets[m.bucketIndex(key)]
	_, found := m.search(b, key)
	return found
}

// Find returns the value for key, if present.
func (m *Map) Find(key uint32) (int32, bool) {
	b := &m.buckets[m.bucketIndex(key)]
	pos, found := m.search(b, key)
	if !found {
		return 0, false
	}
	return m.buffer[pos].Value, true
}

// Erase removes key from the map, if present.
func (m *Map) Erase(key uint32) bool {
	idx := m.bucketIndex(key)
	b := &m.buckets[idx]
	pos, found := m.search(b, key)
	if !found {
		return false
	}

	m.buffer = append(m.buffer[:pos], m.buffer[pos+1:]...)
	b.count--

	for i := range m.buckets {
		if m.buckets[i].offset > uint32(pos) {
			m.buckets[i].offset--
		}
	}

	return true
}

// Len returns the number of entities stored across all buckets.
func (m *Map) Len() int { return len(m.buffer) }

// All returns every stored entity. The caller must not mutate the returned
// slice; order matches internal bucket/offset layout, not insertion order.
func (m *Map) All() []Entity { return m.buffer }

// Serialize writes the N bucket headers followed by the entity run, both in
// little-endian fixed-width fields, matching nanohashmap.hh's layout.
func (m *Map) Serialize() []byte {
	out := make([]byte, 0, int(m.n)*8+len(m.buffer)*8)
	for _, b := range m.buckets {
		var hdr [8]byte
		binary.LittleEndian.PutUint32(hdr[0:4], b.count)
		binary.LittleEndian.PutUint32(hdr[4:8], b.offset)
		out = append(out, hdr[:]...)
	}
	for _, e := range m.buffer {
		var rec [8]byte
		binary.LittleEndian.PutUint32(rec[0:4], e.Key)
		binary.LittleEndian.PutUint32(rec[4:8], uint32(e.Value))
		out = append(out, rec[:]...)
	}
	return out
}

// Deserialize restores a Map with n buckets from data produced by
// Serialize, validating that every bucket's (offset..offset+count) range is
// in bounds and that ranges are pairwise disjoint and collectively cover the
// entity buffer (spec.md §4.4 "Corrupt on deserialize invariant
// violation").
func Deserialize(n uint32, data []byte) (*Map, error) {
	headerSize := int(n) * 8
	if len(data) < headerSize {
		return nil, errs.New(errs.CorruptBlob, "tokenhash: truncated bucket header")
	}
	if (len(data)-headerSize)%8 != 0 {
		return nil, errs.New(errs.CorruptBlob, "tokenhash: entity buffer not a multiple of record size")
	}

	m := New(n)
	for i := uint32(0); i < n; i++ {
		off := int(i) * 8
		m.buckets[i] = bucket{
			count:  binary.LittleEndian.Uint32(data[off : off+4]),
			offset: binary.LittleEndian.Uint32(data[off+4 : off+8]),
		}
	}

	nentities := (len(data) - headerSize) / 8
	covered := make([]bool, nentities)
	total := 0
	for i := uint32(0); i < n; i++ {
		b := m.buckets[i]
		for k := uint32(0); k < b.count; k++ {
			pos := int(b.offset + k)
			if pos >= nentities {
				return nil, errs.New(errs.CorruptBlob, "tokenhash: bucket range out of bounds")
			}
			if covered[pos] {
				return nil, errs.New(errs.CorruptBlob, "tokenhash: overlapping bucket ranges")
			}
			covered[pos] = true
			total++
		}
	}
	if total != nentities {
		return nil, errs.New(errs.CorruptBlob, "tokenhash: entity count does not match covered span")
	}

	m.buffer = make([]Entity, nentities)
	for i := 0; i < nentities; i++ {
		off := headerSize + i*8
		m.buffer[i] = Entity{
			Key:   binary.LittleEndian.Uint32(data[off : off+4]),
			Value: int32(binary.LittleEndian.Uint32(data[off+4 : off+8])),
		}
	}

	return m, nil
}
