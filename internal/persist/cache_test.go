package persist_test

import (
	"testing"

	"pie/internal/persist"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestOutputCache_PutGetRoundTrip(t *testing.T) {
	cache, err := persist.OpenOutputCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	session := uuid.New()
	require.NoError(t, cache.Put(session, "task-a", []byte("first")))

	out, ok, err := cache.Get(session, "task-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("first"), out)

	_, ok, err = cache.Get(session, "task-b")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOutputCache_PutOverwritesSameKey(t *testing.T) {
	cache, err := persist.OpenOutputCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	session := uuid.New()
	require.NoError(t, cache.Put(session, "task-a", []byte("v1")))
	require.NoError(t, cache.Put(session, "task-a", []byte("v2")))

	out, ok, err := cache.Get(session, "task-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), out)
}

func TestOutputCache_SessionsListsDistinctSessions(t *testing.T) {
	cache, err := persist.OpenOutputCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	s1, s2 := uuid.New(), uuid.New()
	require.NoError(t, cache.Put(s1, "a", []byte("x")))
	require.NoError(t, cache.Put(s1, "b", []byte("y")))
	require.NoError(t, cache.Put(s2, "a", []byte("z")))

	sessions, err := cache.Sessions()
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{s1, s2}, sessions)
}
