package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgify.com/cmd/model"
	"ytgify.com/pkg/testutil"
)

func usage(t *testing.T, name string) int64 {
	t.Helper()
	var h model.Hashtag
	require.NoError(t, DB.Where("name = ?", name).First(&h).Error)
	return h.UsageCount
}

func TestSyncReplacesTags(t *testing.T) {
	DB = testutil.NewDB(t)
	u := testutil.CreateUser(t, DB, "alice")
	g := testutil.CreateGif(t, DB, u.ID, "first")

	require.NoError(t, Sync(DB, g.ID, []string{"cats", "funny"}))
	assert.Equal(t, int64(1), usage(t, "cats"))
	assert.Equal(t, int64(1), usage(t, "funny"))

	// syncing the same set again changes nothing
	require.NoError(t, Sync(DB, g.ID, []string{"cats", "funny"}))
	assert.Equal(t, int64(1), usage(t, "cats"))

	require.NoError(t, Sync(DB, g.ID, []string{"cats", "reaction"}))
	assert.Equal(t, int64(1), usage(t, "cats"))
	assert.Equal(t, int64(0), usage(t, "funny"))
	assert.Equal(t, int64(1), usage(t, "reaction"))

	var joins int64
	require.NoError(t, DB.Model(&model.GifHashtag{}).Where("gif_id = ?", g.ID).Count(&joins).Error)
	assert.Equal(t, int64(2), joins)

	require.NoError(t, Detach(DB, g.ID))
	assert.Equal(t, int64(0), usage(t, "cats"))
	assert.Equal(t, int64(0), usage(t, "reaction"))
}

func TestTrendingAndLookup(t *testing.T) {
	DB = testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, DB, "alice")

	a := testutil.CreateGif(t, DB, u.ID, "a")
	b := testutil.CreateGif(t, DB, u.ID, "b")
	hidden := testutil.CreateGif(t, DB, u.ID, "hidden", testutil.Private)
	old := testutil.CreateGif(t, DB, u.ID, "old", testutil.CreatedAt(time.Now().Add(-30*24*time.Hour)))

	require.NoError(t, Sync(DB, a.ID, []string{"cats", "cat_memes"}))
	require.NoError(t, Sync(DB, b.ID, []string{"cats"}))
	require.NoError(t, Sync(DB, hidden.ID, []string{"secret"}))
	require.NoError(t, Sync(DB, old.ID, []string{"retro"}))

	list, err := Trending(ctx, time.Now().Add(-7*24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "cats", list[0].Name)
	assert.Equal(t, int64(2), list[0].GifCount)
	assert.Equal(t, "cat_memes", list[1].Name)

	h, err := GetByName(ctx, "cats")
	require.NoError(t, err)
	ids, total, err := GifIDsByHashtag(ctx, h.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []int64{b.ID, a.ID}, ids)

	secret, err := GetByName(ctx, "secret")
	require.NoError(t, err)
	_, total, err = GifIDsByHashtag(ctx, secret.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	found, err := SearchPrefix(ctx, "cat", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "cats", found[0].Name)

	// "_" is matched literally
	found, err = SearchPrefix(ctx, "cat_", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "cat_memes", found[0].Name)
	// "%" 不能当通配符
	found, err = SearchPrefix(ctx, "%", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
	found, err = SearchPrefix(ctx, "c%s", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}
