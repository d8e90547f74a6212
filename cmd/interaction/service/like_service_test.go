package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgify.com/cmd/interaction/dal/db"
	"ytgify.com/cmd/interaction/infras/redis"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/cache"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/lock"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/testutil"
)

func TestToggleLike(t *testing.T) {
	ctx, conn, _ := setup(t)
	rec := &mq.RecordingProducer{}
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	g := testutil.CreateGif(t, conn, alice.ID, "funny")
	svc := NewLikeService(ctx, rec)

	res, err := svc.Toggle(bob.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: true, LikeCount: 1}, res)

	var owner model.User
	require.NoError(t, conn.First(&owner, alice.ID).Error)
	assert.Equal(t, int64(1), owner.TotalLikesReceived)

	res, err = svc.Toggle(bob.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: false, LikeCount: 0}, res)

	require.NoError(t, conn.First(&owner, alice.ID).Error)
	assert.Zero(t, owner.TotalLikesReceived)

	require.Len(t, rec.Likes, 2)
	assert.Equal(t, "like", rec.Likes[0].ActionType)
	assert.Equal(t, alice.ID, rec.Likes[0].OwnerID)
	assert.Equal(t, int64(1), rec.Likes[0].LikeCount)
	assert.Equal(t, "unlike", rec.Likes[1].ActionType)
}

func TestToggleLikeHidden(t *testing.T) {
	ctx, conn, _ := setup(t)
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	secret := testutil.CreateGif(t, conn, alice.ID, "secret", testutil.Private)
	svc := NewLikeService(ctx, nil)

	_, err := svc.Toggle(bob.ID, secret.ID)
	assert.EqualValues(t, errno.GifNotExistErrCode, errno.ConvertErr(err).ErrCode)
	_, err = svc.Toggle(bob.ID, 12345)
	assert.EqualValues(t, errno.GifNotExistErrCode, errno.ConvertErr(err).ErrCode)

	res, err := svc.Toggle(alice.ID, secret.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
}

func TestLikedByUsesCache(t *testing.T) {
	ctx, conn, mr := setup(t)
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	g1 := testutil.CreateGif(t, conn, alice.ID, "one")
	g2 := testutil.CreateGif(t, conn, alice.ID, "two")
	svc := NewLikeService(ctx, nil)

	_, err := svc.Toggle(bob.ID, g1.ID)
	require.NoError(t, err)

	// 第一次读取从数据库预热
	liked, err := svc.LikedBy(bob.ID, []int64{g1.ID, g2.ID})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{g1.ID: true}, liked)
	assert.True(t, mr.Exists(cache.Key(cache.UserLikesKey, bob.ID)))

	// 之后的点赞直接写入缓存
	_, err = svc.Toggle(bob.ID, g2.ID)
	require.NoError(t, err)
	cached, ok := redis.LikedSet(ctx, bob.ID, []int64{g1.ID, g2.ID})
	require.True(t, ok)
	assert.Equal(t, map[int64]bool{g1.ID: true, g2.ID: true}, cached)

	infos, err := svc.Decorate(bob.ID, []*model.Gif{g1, g2})
	require.NoError(t, err)
	assert.True(t, infos[0].LikedByViewer)
	assert.True(t, infos[1].LikedByViewer)

	infos, err = svc.Decorate(0, []*model.Gif{g1})
	require.NoError(t, err)
	assert.False(t, infos[0].LikedByViewer)

	// 没有点赞的用户也能命中占位缓存
	none, err := svc.LikedBy(alice.ID, []int64{g1.ID})
	require.NoError(t, err)
	assert.Empty(t, none)
	_, ok = redis.LikedSet(ctx, alice.ID, []int64{g1.ID})
	assert.True(t, ok)
}

func TestWarmDoesNotOverwriteConcurrentLike(t *testing.T) {
	ctx, conn, _ := setup(t)
	_, lockRDB := testutil.NewRedis(t)
	lock.Init(lockRDB)
	t.Cleanup(func() { lock.Init(nil) })
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	g := testutil.CreateGif(t, conn, alice.ID, "racy")
	svc := NewLikeService(ctx, nil)

	var wg sync.WaitGroup
	err := lock.WithLock(ctx, likesCacheLock(bob.ID), func() error {
		// 预热已经读到点赞前的数据
		stale, err := db.UserLikes(ctx, bob.ID)
		require.NoError(t, err)
		require.Empty(t, stale)

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Toggle(bob.ID, g.ID)
			assert.NoError(t, err)
		}()
		require.Eventually(t, func() bool {
			liked, _ := db.IsLiked(ctx, bob.ID, g.ID)
			return liked
		}, 2*time.Second, 10*time.Millisecond)
		return redis.WarmLikes(ctx, bob.ID, stale, time.Minute)
	})
	require.NoError(t, err)
	wg.Wait()

	cached, ok := redis.LikedSet(ctx, bob.ID, []int64{g.ID})
	require.True(t, ok)
	assert.True(t, cached[g.ID])
}

func TestLikedByWithoutCache(t *testing.T) {
	ctx, conn, _ := setup(t)
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	g1 := testutil.CreateGif(t, conn, alice.ID, "one")
	g2 := testutil.CreateGif(t, conn, alice.ID, "two")
	svc := NewLikeService(ctx, nil)
	_, err := svc.Toggle(bob.ID, g2.ID)
	require.NoError(t, err)

	redis.Use(nil)
	liked, err := svc.LikedBy(bob.ID, []int64{g1.ID, g2.ID})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{g2.ID: true}, liked)
}

func TestListLikedGifs(t *testing.T) {
	ctx, conn, _ := setup(t)
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	pub := testutil.CreateGif(t, conn, alice.ID, "pub")
	secret := testutil.CreateGif(t, conn, bob.ID, "bob secret", testutil.Private)
	svc := NewLikeService(ctx, nil)

	_, err := svc.Toggle(bob.ID, pub.ID)
	require.NoError(t, err)
	_, err = svc.Toggle(bob.ID, secret.ID)
	require.NoError(t, err)

	page, err := svc.ListLikedGifs(alice.ID, bob.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, pub.ID, page.Items[0].ID)

	page, err = svc.ListLikedGifs(bob.ID, bob.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.True(t, page.Items[0].LikedByViewer)
}
