package trainer

// MaxCodepoint is the highest valid Unicode scalar value, used to offset
// POS-id keys away from codepoint keys in the shared counter table
// (spec.md §3 "Counter table": keyed by codepoint ∪ (MAX_CP+1+pos_id)).
const MaxCodepoint = 0x10FFFF

// CounterTable is the shared per-character / per-POS frequency table used
// both to break ties when back-filling an unobserved seed pattern's POS
// (spec.md §4.7 "Pruning": "pick the (pos, feature) with lowest global
// counter value") and, eventually, to assign the dense ids
// internal/blob's char_to_id region serializes (spec.md §6).
type CounterTable struct {
	counts   map[int64]int64
	denseIDs map[int64]int32
	order    []int64
}

// NewCounterTable returns an empty CounterTable.
func NewCounterTable() *CounterTable {
	return &CounterTable{counts: make(map[int64]int64), denseIDs: make(map[int64]int32)}
}

// CharCounterKey is the counter-table key for codepoint r.
func CharCounterKey(r rune) int64 { return int64(r) }

// PosCounterKey is the counter-table key for POS id posID.
func PosCounterKey(posID int32) int64 { return int64(MaxCodepoint) + 1 + int64(posID) }

// Increment adds delta to key's running count, assigning it a dense id on
// first sight.
func (c *CounterTable) Increment(key int64, delta int64) {
	if _, ok := c.counts[key]; !ok {
		c.denseIDs[key] = int32(len(c.order))
		c.order = append(c.order, key)
	}
	c.counts[key] += delta
}

// Value returns key's current count, or 0 if never incremented.
func (c *CounterTable) Value(key int64) int64 {
	return c.counts[key]
}

// DenseID returns the dense id assigned to key, if any.
func (c *CounterTable) DenseID(key int64) (int32, bool) {
	id, ok := c.denseIDs[key]
	return id, ok
}

// Keys returns every registered key in dense-id order.
func (c *CounterTable) Keys() []int64 {
	return c.order
}
