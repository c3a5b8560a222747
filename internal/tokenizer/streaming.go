package tokenizer

// StreamEncoder implements a streaming encoder by buffering input bytes and
// greedily flushing any prefix that cannot participate in a longer match
// anymore. It is the trie-longest-match analogue of the teacher's
// EncoderState
// (_examples/adiu19-bpetok-go/internal/tokenizer/encoder_state.go): the
// same "hold back a tail reserve, re-encode, emit only the committed
// prefix" strategy, with the reserve sized from the vocabulary's longest
// entry instead of a BPE merge length.
type StreamEncoder struct {
	tok         *Tokenizer
	tailReserve int

	buf    []byte
	outBuf []int32
}

// NewStreamEncoder returns a StreamEncoder over tok. maxVocabEntryLen is the
// longest byte length of any vocabulary entry (spec.md's Pattern record
// tracks this as max_word_length during training); it bounds how many
// trailing bytes must be held back to guarantee a match spanning a future
// chunk boundary is not missed.
func NewStreamEncoder(tok *Tokenizer, maxVocabEntryLen int) *StreamEncoder {
	tail := 0
	if maxVocabEntryLen > 0 {
		tail = maxVocabEntryLen - 1
	}
	return &StreamEncoder{tok: tok, tailReserve: tail}
}

// Feed consumes the next chunk of raw bytes and emits any ids that are now
// guaranteed not to change regardless of what bytes follow.
func (s *StreamEncoder) Feed(chunk []byte) ([]int32, error) {
	s.outBuf = s.outBuf[:0]
	if len(chunk) > 0 {
		s.buf = append(s.buf, chunk...)
	}

	if err := s.emitCommitted(); err != nil {
		return nil, err
	}

	if len(s.outBuf) == 0 {
		return nil, nil
	}
	return append([]int32(nil), s.outBuf...), nil
}

// Flush encodes whatever bytes remain buffered and resets the encoder for
// reuse.
func (s *StreamEncoder) Flush() ([]int32, error) {
	s.outBuf = s.outBuf[:0]
	if len(s.buf) > 0 {
		ids, err := s.tok.Encode(s.buf)
		if err != nil {
			return nil, err
		}
		s.outBuf = append(s.outBuf, ids...)
		s.buf = s.buf[:0]
	}

	if len(s.outBuf) == 0 {
		return nil, nil
	}
	return append([]int32(nil), s.outBuf...), nil
}

func (s *StreamEncoder) emitCommitted() error {
	emitLimit := len(s.buf) - s.tailReserve
	if emitLimit <= 0 {
		return nil
	}

	ids, err := s.tok.Encode(s.buf)
	if err != nil {
		return err
	}

	consumed := 0
	for _, id := range ids {
		tokLen := s.tok.idByteLen(id)
		if consumed+tokLen > emitLimit {
			break
		}
		s.outBuf = append(s.outBuf, id)
		consumed += tokLen
	}

	if consumed > 0 {
		s.buf = s.buf[consumed:]
	}
	return nil
}

// idByteLen returns how many original bytes id represents, for both
// vocabulary and byte-fallback ids.
func (t *Tokenizer) idByteLen(id int32) int {
	if id >= ByteFallbackBase && id <= ByteFallbackMax {
		return 1
	}
	if s, ok := t.vocab.RevVocab[id]; ok {
		return len(s)
	}
	return 0
}

// BasicDecoder is the non-streaming Decoder implementation; decode has no
// need to buffer across calls (spec.md §4.6 has no partial-fallback state
// that spans Feed calls once an id sequence is complete), mirroring the
// teacher's note that "no need for flush right now because we won't be
// maintaining internal buffer".
type BasicDecoder struct {
	tok *Tokenizer
}

// NewBasicDecoder returns a BasicDecoder over tok.
func NewBasicDecoder(tok *Tokenizer) *BasicDecoder {
	return &BasicDecoder{tok: tok}
}

// Feed decodes tokens to bytes in one call.
func (d *BasicDecoder) Feed(tokens []int32) ([]byte, error) {
	return d.tok.Decode(tokens)
}
