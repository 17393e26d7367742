package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *ContentCache {
	t.Helper()

	cache, err := Open(filepath.Join(t.TempDir(), "cache.db"), 16, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestContentCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "https://raw.example.org/readme.md")
	require.False(t, ok)

	require.NoError(t, cache.Put(ctx, "https://raw.example.org/readme.md", "# Hello"))

	got, ok := cache.Get(ctx, "https://raw.example.org/readme.md")
	require.True(t, ok)
	require.Equal(t, "# Hello", got)
}

func TestContentCacheEntriesAreImmutable(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "u", "first"))
	require.NoError(t, cache.Put(ctx, "u", "second"))

	// the memory layer sees the newest write, but the durable layer keeps
	// the original; evict the hot entry to observe it
	cache.mem.Purge()

	got, ok := cache.Get(ctx, "u")
	require.True(t, ok)
	require.Equal(t, "first", got)
}

func TestContentCacheSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, err := Open(path, 16, nil)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "u", "persisted"))
	require.NoError(t, first.Close())

	second, err := Open(path, 16, nil)
	require.NoError(t, err)
	defer second.Close()

	got, ok := second.Get(ctx, "u")
	require.True(t, ok)
	require.Equal(t, "persisted", got)
}
