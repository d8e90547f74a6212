package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgify.com/pkg/cache"
	"ytgify.com/pkg/testutil"
)

func TestViewDedupAndBuffer(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	Use(rdb)
	ctx := context.Background()

	first, err := MarkViewed(ctx, 1, "u7", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)
	again, err := MarkViewed(ctx, 1, "u7", time.Hour)
	require.NoError(t, err)
	assert.False(t, again)

	mr.FastForward(2 * time.Hour)
	first, err = MarkViewed(ctx, 1, "u7", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	for i := 0; i < 3; i++ {
		ok, err := BufferView(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	_, err = BufferView(ctx, 2)
	require.NoError(t, err)

	counts, err := DrainViews(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 3, 2: 1}, counts)
	assert.False(t, mr.Exists(cache.Key(cache.ViewBufferKey, 1)))

	counts, err = DrainViews(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	RestoreViews(ctx, map[int64]int64{1: 3})
	counts, err = DrainViews(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 3}, counts)
}

func TestNoRedisDisablesDedup(t *testing.T) {
	Use(nil)
	ctx := context.Background()
	first, err := MarkViewed(ctx, 1, "u1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)
	ok, err := BufferView(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrendingZset(t *testing.T) {
	_, rdb := testutil.NewRedis(t)
	Use(rdb)
	ctx := context.Background()

	require.NoError(t, StoreTrending(ctx, map[int64]float64{1: 0.5, 2: 3, 3: 1, 4: 0}, 2))
	ids, err := TrendingIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids)

	require.NoError(t, RemoveTrending(ctx, 2))
	ids, err = TrendingIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)

	require.NoError(t, StoreTrending(ctx, map[int64]float64{}, 2))
	ids, err = TrendingIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
