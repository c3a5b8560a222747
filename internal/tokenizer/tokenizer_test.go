package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestByteFallbackDecode is spec.md §8 scenario 2 verbatim.
func TestByteFallbackDecode(t *testing.T) {
	vocab, err := BuildVocab(map[string]int32{"a": 258})
	require.NoError(t, err)
	tok := New(vocab)

	ids, err := tok.Encode([]byte("a😀"))
	require.NoError(t, err)

	emoji := "😀"
	want := []int32{258}
	for _, b := range []byte(emoji) {
		want = append(want, int32(b)+ByteFallbackBase)
	}
	assert.Equal(t, want, ids)

	decoded, err := tok.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, "a😀", string(decoded))
}

// TestJapaneseLongestMatch is spec.md §8 scenario 3 verbatim.
func TestJapaneseLongestMatch(t *testing.T) {
	vocab, err := BuildVocab(map[string]int32{
		"吾輩": 257, "は": 258, "猫": 259, "である": 260,
	})
	require.NoError(t, err)
	tok := New(vocab)

	ids, err := tok.Encode([]byte("吾輩は猫である"))
	require.NoError(t, err)
	assert.Equal(t, []int32{257, 258, 259, 260}, ids)
}

func TestVocabOnlyRoundTrip(t *testing.T) {
	vocab, err := BuildVocab(map[string]int32{
		"he": 257, "hello": 258, "word": 259, "world": 260, "you": 261, "your": 262,
	})
	require.NoError(t, err)
	tok := New(vocab)

	for _, text := range []string{"hello", "he", "world", "your"} {
		ids, err := tok.Encode([]byte(text))
		require.NoError(t, err)
		decoded, err := tok.Decode(ids)
		require.NoError(t, err)
		assert.Equal(t, text, string(decoded))
	}
}

func TestEncodeDecodeTotalInverseWithByteFallback(t *testing.T) {
	vocab, err := BuildVocab(map[string]int32{"吾輩": 257, "は": 258})
	require.NoError(t, err)
	tok := New(vocab)

	samples := []string{
		"吾輩は猫である", "hello world", "ミックス123test",
		"", "😀🎉", "plain ascii text with no vocab hits",
	}
	for _, s := range samples {
		ids, err := tok.Encode([]byte(s))
		require.NoError(t, err)
		decoded, err := tok.Decode(ids)
		require.NoError(t, err)
		assert.Equal(t, s, string(decoded), "round trip for %q", s)
	}
}

func TestLongestMatchMaximality(t *testing.T) {
	vocab, err := BuildVocab(map[string]int32{"吾輩": 257, "吾": 258})
	require.NoError(t, err)
	tok := New(vocab)

	ids, err := tok.Encode([]byte("吾輩"))
	require.NoError(t, err)
	// Must pick the longer "吾輩" entry, not "吾" followed by fallback.
	assert.Equal(t, []int32{257}, ids)
}

func TestDecodeUnknownId(t *testing.T) {
	vocab, err := BuildVocab(map[string]int32{"a": 257})
	require.NoError(t, err)
	tok := New(vocab)

	_, err = tok.Decode([]int32{9999})
	require.Error(t, err)
}

func TestDecodeInvalidFallbackSequence(t *testing.T) {
	vocab, err := BuildVocab(map[string]int32{"a": 257})
	require.NoError(t, err)
	tok := New(vocab)

	// 0xF0 alone can never complete a UTF-8 character: it demands 3 more
	// continuation bytes that never arrive.
	badLead := int32(0xF0) + ByteFallbackBase
	_, err = tok.Decode([]int32{badLead})
	require.Error(t, err)
}

func TestStreamEncoderMatchesOffline(t *testing.T) {
	vocab, err := BuildVocab(map[string]int32{
		"吾輩": 257, "は": 258, "猫": 259, "である": 260,
	})
	require.NoError(t, err)
	tok := New(vocab)

	text := "吾輩は猫である"
	offline, err := tok.Encode([]byte(text))
	require.NoError(t, err)

	se := NewStreamEncoder(tok, vocab.MaxEntryLen())
	var streamed []int32
	buf := []byte(text)
	for i := 0; i < len(buf); i += 3 {
		end := i + 3
		if end > len(buf) {
			end = len(buf)
		}
		ids, err := se.Feed(buf[i:end])
		require.NoError(t, err)
		streamed = append(streamed, ids...)
	}
	tail, err := se.Flush()
	require.NoError(t, err)
	streamed = append(streamed, tail...)

	assert.Equal(t, offline, streamed)
}
