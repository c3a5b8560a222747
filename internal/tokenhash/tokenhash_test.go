package tokenhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateFindRoundTrip(t *testing.T) {
	m := New(8)
	keys := []uint32{1, 9, 17, 2, 100, 3, 4, 5, 6, 7}
	for i, k := range keys {
		require.NoError(t, m.Update(k, int32(i)))
	}
	for i, k := range keys {
		v, ok := m.Find(k)
		require.True(t, ok)
		assert.EqualValues(t, i, v)
	}
	_, ok := m.Find(12345)
	assert.False(t, ok)
}

func TestUpdateOverwrites(t *testing.T) {
	m := New(4)
	require.NoError(t, m.Update(5, 1))
	require.NoError(t, m.Update(5, 2))
	v, ok := m.Find(5)
	require.True(t, ok)
	assert.EqualValues(t, 2, v)
	assert.Equal(t, 1, m.Len())
}

func TestFindManyInSameBucket(t *testing.T) {
	// Force everything into bucket 0 to exercise both linear and binary
	// search paths (threshold is 4).
	m := New(1)
	for i := uint32(0); i < 20; i++ {
		require.NoError(t, m.Update(i, int32(i*10)))
	}
	for i := uint32(0); i < 20; i++ {
		v, ok := m.Find(i)
		require.True(t, ok)
		assert.EqualValues(t, i*10, v)
	}
}

func TestErase(t *testing.T) {
	m := New(4)
	for i := uint32(0); i < 10; i++ {
		require.NoError(t, m.Update(i, int32(i)))
	}
	assert.True(t, m.Erase(5))
	_, ok := m.Find(5)
	assert.False(t, ok)
	for _, i := range []uint32{0, 1, 2, 3, 4, 6, 7, 8, 9} {
		v, ok := m.Find(i)
		require.True(t, ok)
		assert.EqualValues(t, i, v)
	}
	assert.False(t, m.Erase(5))
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	m := New(8)
	for i := uint32(0); i < 30; i++ {
		require.NoError(t, m.Update(i*3+1, int32(i)))
	}
	data := m.Serialize()

	restored, err := Deserialize(8, data)
	require.NoError(t, err)

	for i := uint32(0); i < 30; i++ {
		v, ok := restored.Find(i*3 + 1)
		require.True(t, ok)
		assert.EqualValues(t, i, v)
	}
}

func TestDeserializeRejectsCorrupt(t *testing.T) {
	_, err := Deserialize(8, []byte{0x01})
	require.Error(t, err)

	m := New(4)
	require.NoError(t, m.Update(1, 1))
	data := m.Serialize()
	// Corrupt: truncate entity region.
	_, err = Deserialize(4, data[:len(data)-4])
	require.Error(t, err)
}
