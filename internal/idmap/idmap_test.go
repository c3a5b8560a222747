package idmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAssignsInsertionOrder(t *testing.T) {
	m := NewStringMap()

	id0, existed0, err := m.Put("he")
	require.NoError(t, err)
	assert.False(t, existed0)
	assert.EqualValues(t, 0, id0)

	id1, existed1, err := m.Put("hello")
	require.NoError(t, err)
	assert.False(t, existed1)
	assert.EqualValues(t, 1, id1)

	idAgain, existedAgain, err := m.Put("he")
	require.NoError(t, err)
	assert.True(t, existedAgain)
	assert.EqualValues(t, 0, idAgain)
}

func TestBijection(t *testing.T) {
	m := NewStringMap()
	words := []string{"吾輩", "は", "猫", "である"}
	for _, w := range words {
		id, _, err := m.Put(w)
		require.NoError(t, err)

		gotID, ok := m.GetByKey(w)
		require.True(t, ok)
		assert.Equal(t, id, gotID)

		gotWord, ok := m.GetByID(id)
		require.True(t, ok)
		assert.Equal(t, w, gotWord)
	}
	assert.Equal(t, len(words), m.Size())
}

func TestGetByIDOutOfRange(t *testing.T) {
	m := NewStringMap()
	_, ok := m.GetByID(0)
	assert.False(t, ok)
	_, ok = m.GetByID(-1)
	assert.False(t, ok)
}

func TestPosKeyMap(t *testing.T) {
	m := NewPosMap()
	id, _, err := m.Put(PosKey{Surface: "猫", PrevPOS: -1})
	require.NoError(t, err)
	got, ok := m.GetByID(id)
	require.True(t, ok)
	assert.Equal(t, PosKey{Surface: "猫", PrevPOS: -1}, got)
}
