package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	q := NewQueue()

	_, _, ok := q.NextPair()
	require.False(t, ok)

	require.NoError(t, q.AddPlayer("a"))
	require.ErrorIs(t, q.AddPlayer("a"), ErrAlreadyQueued)
	_, _, ok = q.NextPair()
	require.False(t, ok)
	require.Equal(t, 1, q.Size())

	require.NoError(t, q.AddPlayer("b"))
	require.NoError(t, q.AddPlayer("c"))
	require.True(t, q.RemovePlayer("b"))
	require.False(t, q.RemovePlayer("b"))
	require.NoError(t, q.AddPlayer("d"))

	first, second, ok := q.NextPair()
	require.True(t, ok)
	require.Equal(t, "a", first.PlayerID)
	require.Equal(t, "c", second.PlayerID)
	require.Equal(t, 1, q.Size())
}
