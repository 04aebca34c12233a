package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRecent(t *testing.T) {
	store := NewStore(10)

	store.Append("s1", "user", "hello")
	store.Append("s1", "assistant", "hi there")

	msgs := store.Recent("s1", 10)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.False(t, msgs[0].Timestamp.IsZero())
}

func TestRetentionLimit(t *testing.T) {
	store := NewStore(10)

	for i := 0; i < 15; i++ {
		store.Append("s1", "user", fmt.Sprintf("msg-%d", i))
	}

	msgs := store.Recent("s1", 100)
	require.Len(t, msgs, 10)
	// Oldest five evicted, order preserved.
	assert.Equal(t, "msg-5", msgs[0].Content)
	assert.Equal(t, "msg-14", msgs[9].Content)
}

func TestRecentWindow(t *testing.T) {
	store := NewStore(10)
	for i := 0; i < 8; i++ {
		store.Append("s1", "user", fmt.Sprintf("msg-%d", i))
	}

	msgs := store.Recent("s1", 4)
	require.Len(t, msgs, 4)
	assert.Equal(t, "msg-4", msgs[0].Content)
	assert.Equal(t, "msg-7", msgs[3].Content)
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewStore(10)
	store.Append("s1", "user", "in s1")
	store.Append("s2", "user", "in s2")

	assert.Len(t, store.Recent("s1", 10), 1)
	assert.Len(t, store.Recent("s2", 10), 1)
	assert.Empty(t, store.Recent("unknown", 10))
}
