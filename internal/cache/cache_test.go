package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(NewClient(mr.Addr(), "", 0), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetJSON(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()

	var brands []string
	hit, err := c.GetJSON(ctx, KeyBrands, &brands)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, KeyBrands, []string{"AMD", "Intel"}))
	hit, err = c.GetJSON(ctx, KeyBrands, &brands)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"AMD", "Intel"}, brands)

	assert.Equal(t, time.Minute, mr.TTL(KeyBrands))
	mr.FastForward(2 * time.Minute)
	hit, err = c.GetJSON(ctx, KeyBrands, &brands)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(KeyHome, "{not json"))

	var v map[string]any
	hit, err := c.GetJSON(context.Background(), KeyHome, &v)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists(KeyHome))
}

func TestCache_InvalidateCatalog(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, KeyCategories, []string{"cpu"}))
	require.NoError(t, c.SetJSON(ctx, ProductKey("ryzen-7"), map[string]any{"id": 1}))
	require.NoError(t, mr.Set("session:abc", "keep"))

	require.NoError(t, c.InvalidateCatalog(ctx))

	assert.False(t, mr.Exists(KeyCategories))
	assert.False(t, mr.Exists(ProductKey("ryzen-7")))
	assert.True(t, mr.Exists("session:abc"))
}

func TestCache_Delete(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, ProductKey("a"), 1))
	require.NoError(t, c.Delete(ctx))
	require.NoError(t, c.Delete(ctx, ProductKey("a"), ProductKey("missing")))
	assert.False(t, mr.Exists(ProductKey("a")))
}

func TestCache_RedisDown(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	mr.Close()

	var v []string
	_, err := c.GetJSON(context.Background(), KeyBrands, &v)
	require.Error(t, err)
}
