package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	hashtagdb "ytgify.com/cmd/hashtag/dal/db"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/testutil"
)

func setup(t *testing.T) context.Context {
	t.Helper()
	DB = testutil.NewDB(t)
	hashtagdb.DB = DB
	return context.Background()
}

func reload(t *testing.T, id int64) *model.Gif {
	t.Helper()
	var g model.Gif
	require.NoError(t, DB.Unscoped().First(&g, id).Error)
	return &g
}

func TestCreateAndDeleteGifCounters(t *testing.T) {
	ctx := setup(t)
	alice := testutil.CreateUser(t, DB, "alice")
	bob := testutil.CreateUser(t, DB, "bob")
	parent := testutil.CreateGif(t, DB, alice.ID, "parent")

	remix := &model.Gif{UserID: bob.ID, Title: "remix", Privacy: "public", ParentGifID: &parent.ID, IsRemix: true}
	require.NoError(t, CreateGif(ctx, remix, []string{"remix", "cats"}))

	got, err := GetGif(ctx, remix.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.User.Username)
	assert.Len(t, got.Hashtags, 2)
	assert.Equal(t, int64(1), reload(t, parent.ID).RemixCount)

	var u model.User
	require.NoError(t, DB.First(&u, bob.ID).Error)
	assert.Equal(t, int64(1), u.GifsCount)

	require.NoError(t, DeleteGif(ctx, got))
	_, err = GetGif(ctx, remix.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, int64(0), reload(t, parent.ID).RemixCount)
	require.NoError(t, DB.First(&u, bob.ID).Error)
	assert.Equal(t, int64(0), u.GifsCount)

	var h model.Hashtag
	require.NoError(t, DB.Where("name = ?", "cats").First(&h).Error)
	assert.Zero(t, h.UsageCount)

	// deleting twice reports not found
	assert.ErrorIs(t, DeleteGif(ctx, got), gorm.ErrRecordNotFound)
}

func TestListGifsVisibility(t *testing.T) {
	ctx := setup(t)
	alice := testutil.CreateUser(t, DB, "alice")
	bob := testutil.CreateUser(t, DB, "bob")
	now := time.Now()
	pub := testutil.CreateGif(t, DB, alice.ID, "public cats", testutil.CreatedAt(now.Add(-2*time.Hour)))
	unl := testutil.CreateGif(t, DB, alice.ID, "unlisted", testutil.Unlisted, testutil.CreatedAt(now.Add(-time.Hour)))
	priv := testutil.CreateGif(t, DB, alice.ID, "private", testutil.Private, testutil.CreatedAt(now))
	other := testutil.CreateGif(t, DB, bob.ID, "bob's dogs", testutil.CreatedAt(now.Add(-3*time.Hour)))

	ids := func(list []*model.Gif) []int64 {
		res := make([]int64, 0, len(list))
		for _, g := range list {
			res = append(res, g.ID)
		}
		return res
	}

	list, total, err := ListGifs(ctx, Filter{UserID: alice.ID}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []int64{pub.ID}, ids(list))

	list, total, err = ListGifs(ctx, Filter{UserID: alice.ID, ViewerID: alice.ID}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []int64{priv.ID, unl.ID, pub.ID}, ids(list))

	list, _, err = ListGifs(ctx, Filter{UserIDs: []int64{}}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, _, err = ListGifs(ctx, Filter{ExcludeUserIDs: []int64{alice.ID}}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{other.ID}, ids(list))

	list, _, err = ListGifs(ctx, Filter{Query: "dogs"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{other.ID}, ids(list))

	list, _, err = ListGifs(ctx, Filter{Since: now.Add(-150 * time.Minute)}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{pub.ID}, ids(list))

	got, err := MGetGifs(ctx, []int64{other.ID, 9999, pub.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{other.ID, pub.ID}, ids(got))
}

func TestListGifsQueryIsLiteral(t *testing.T) {
	ctx := setup(t)
	alice := testutil.CreateUser(t, DB, "alice")
	pct := testutil.CreateGif(t, DB, alice.ID, "100% real")
	testutil.CreateGif(t, DB, alice.ID, "1000 real")
	under := testutil.CreateGif(t, DB, alice.ID, "snake_case")
	testutil.CreateGif(t, DB, alice.ID, "snakeXcase")
	bang := testutil.CreateGif(t, DB, alice.ID, "wow!")

	cases := map[string][]int64{
		"100%": {pct.ID},
		"e_c":  {under.ID},
		"wow!": {bang.ID},
		"%":    {pct.ID},
		"!":    {bang.ID},
		"x\\y": {},
	}
	for query, want := range cases {
		list, total, err := ListGifs(ctx, Filter{Query: query}, 0, 10)
		require.NoError(t, err, query)
		assert.Equal(t, int64(len(want)), total, query)
		got := make([]int64, 0, len(list))
		for _, g := range list {
			got = append(got, g.ID)
		}
		assert.ElementsMatch(t, want, got, query)
	}
}

func TestCountersAndScores(t *testing.T) {
	ctx := setup(t)
	alice := testutil.CreateUser(t, DB, "alice")
	fresh := testutil.CreateGif(t, DB, alice.ID, "fresh")
	stale := testutil.CreateGif(t, DB, alice.ID, "stale", testutil.CreatedAt(time.Now().Add(-30*24*time.Hour)))
	require.NoError(t, DB.Model(&model.Gif{}).Where("id = ?", stale.ID).UpdateColumn("trending_score", 5).Error)

	n, err := IncrShare(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = IncrShare(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, AddViewCounts(ctx, map[int64]int64{fresh.ID: 3, stale.ID: 0}))
	assert.Equal(t, int64(3), reload(t, fresh.ID).ViewCount)

	since := time.Now().Add(-7 * 24 * time.Hour)
	cands, err := TrendingCandidates(ctx, since)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, fresh.ID, cands[0].ID)

	require.NoError(t, UpdateTrendingScores(ctx, map[int64]float64{fresh.ID: 1.5}, since))
	assert.Equal(t, 1.5, reload(t, fresh.ID).TrendingScore)
	assert.Zero(t, reload(t, stale.ID).TrendingScore)

	require.NoError(t, InsertView(ctx, &model.GifView{GifID: fresh.ID, UserID: alice.ID, ViewedAt: time.Now()}))
	var views int64
	require.NoError(t, DB.Model(&model.GifView{}).Where("gif_id = ?", fresh.ID).Count(&views).Error)
	assert.Equal(t, int64(1), views)
}
