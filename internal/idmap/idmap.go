// Package idmap implements a generic bidirectional T <-> int32 table with
// monotonically assigned ids and no removal (spec.md §3 "IdMap<T>", §4.3).
package idmap

import (
	"math"

	"github.com/nanotrie/subword/internal/errs"
)

// MaxID is the largest id an IdMap can assign (signed 32-bit maximum,
// spec.md §3 invariant (iii)). Per spec.md §9's overflow-direction fix, the
// overflow condition is next id > MaxID, not next id < MaxID.
const MaxID = math.MaxInt32

// Map is a bidirectional mapping between comparable values of type T and
// densely assigned int32 ids, starting at 0 in insertion order.
type Map[T comparable] struct {
	byKey []T
	ids   map[T]int32
}

// New returns an empty Map.
func New[T comparable]() *Map[T] {
	return &Map[T]{ids: make(map[T]int32)}
}

// Put assigns the next id to x on first sight; repeat calls with the same x
// are idempotent and return the previously assigned id with existed=true.
func (m *Map[T]) Put(x T) (id int32, existed bool, err error) {
	if id, ok := m.ids[x]; ok {
		return id, true, nil
	}
	if len(m.byKey) > MaxID {
		return 0, false, errs.New(errs.TooMany, "idmap exceeded int32 capacity")
	}
	id = int32(len(m.byKey))
	m.byKey = append(m.byKey, x)
	m.ids[x] = id
	return id, false, nil
}

// GetByKey returns the id assigned to x, if any.
func (m *Map[T]) GetByKey(x T) (int32, bool) {
	id, ok := m.ids[x]
	return id, ok
}

// GetByID returns the value assigned to id, if any.
func (m *Map[T]) GetByID(id int32) (T, bool) {
	var zero T
	if id < 0 || int(id) >= len(m.byKey) {
		return zero, false
	}
	return m.byKey[id], true
}

// Size returns the number of entries, equal to the next id to be assigned.
func (m *Map[T]) Size() int {
	return len(m.byKey)
}

// Keys returns every key in insertion (id) order. The caller must not
// mutate the returned slice.
func (m *Map[T]) Keys() []T {
	return m.byKey
}
