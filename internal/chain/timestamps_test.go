package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimestampCacheResetsWhenFull(t *testing.T) {
	cache := newTimestampCache(2)
	cache.put(1, 100)
	cache.put(2, 112)

	ts, ok := cache.get(2)
	require.True(t, ok)
	require.Equal(t, uint64(112), ts)

	cache.put(3, 124)
	_, ok = cache.get(1)
	require.False(t, ok, "full cache is dropped before the next insert")
	ts, ok = cache.get(3)
	require.True(t, ok)
	require.Equal(t, uint64(124), ts)
}
