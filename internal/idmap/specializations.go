package idmap

// StringKey, PosKey, and PairKey are the three IdMap specializations named
// in spec.md §3: a plain string table (feature/POS strings), a
// (string,int)-keyed table (pattern surface + prev-POS id), and an
// (int,int)-keyed table. The trainer uses the first two; the counter table
// keeps its own int64-keyed maps and does not use PairKey.
type StringKey = string

type PosKey struct {
	Surface  string
	PrevPOS  int32
}

type PairKey struct {
	A int32
	B int32
}

// NewStringMap returns an IdMap specialized for plain string keys.
func NewStringMap() *Map[StringKey] { return New[StringKey]() }

// NewPosMap returns an IdMap specialized for (surface, prev-POS) keys, used
// by the trainer's pattern table.
func NewPosMap() *Map[PosKey] { return New[PosKey]() }

// NewPairMap returns an IdMap specialized for (int,int) keys.
func NewPairMap() *Map[PairKey] { return New[PairKey]() }
