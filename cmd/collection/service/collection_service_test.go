package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ytgify.com/cmd/collection/dal/db"
	gifdb "ytgify.com/cmd/gif/dal/db"
	interactiondb "ytgify.com/cmd/interaction/dal/db"
	interactionredis "ytgify.com/cmd/interaction/infras/redis"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/testutil"
)

func setup(t *testing.T) (context.Context, *gorm.DB) {
	conn := testutil.NewDB(t)
	db.DB, gifdb.DB, interactiondb.DB = conn, conn, conn
	interactionredis.Use(nil)
	return context.Background(), conn
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func TestCreateCollection(t *testing.T) {
	ctx, conn := setup(t)
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	svc := NewCollectionService(ctx, nil)

	c, err := svc.Create(alice.ID, &CreateCollectionRequest{Name: " Favorites ", Description: "best ones"})
	require.NoError(t, err)
	assert.Equal(t, "Favorites", c.Name)
	assert.True(t, c.IsPublic)

	_, err = svc.Create(alice.ID, &CreateCollectionRequest{Name: "Favorites"})
	assert.EqualValues(t, errno.ConflictErrCode, errno.ConvertErr(err).ErrCode)
	_, err = svc.Create(bob.ID, &CreateCollectionRequest{Name: "Favorites"})
	assert.NoError(t, err)

	_, err = svc.Create(alice.ID, &CreateCollectionRequest{Name: "  "})
	assert.EqualValues(t, errno.ValidationErrCode, errno.ConvertErr(err).ErrCode)

	hidden, err := svc.Create(alice.ID, &CreateCollectionRequest{Name: "Drafts", IsPublic: boolPtr(false)})
	require.NoError(t, err)
	got, err := svc.Get(alice.ID, hidden.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublic)
	_, err = svc.Get(bob.ID, hidden.ID)
	assert.EqualValues(t, errno.CollectionNotExistErrCode, errno.ConvertErr(err).ErrCode)

	page, err := svc.ListByUser(bob.ID, alice.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	page, err = svc.ListByUser(alice.ID, alice.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestUpdateAndDeleteCollection(t *testing.T) {
	ctx, conn := setup(t)
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	svc := NewCollectionService(ctx, nil)

	a, err := svc.Create(alice.ID, &CreateCollectionRequest{Name: "A"})
	require.NoError(t, err)
	_, err = svc.Create(alice.ID, &CreateCollectionRequest{Name: "B"})
	require.NoError(t, err)

	_, err = svc.Update(bob.ID, a.ID, &UpdateCollectionRequest{Name: strPtr("mine")})
	assert.EqualValues(t, errno.ForbiddenErrCode, errno.ConvertErr(err).ErrCode)
	_, err = svc.Update(alice.ID, a.ID, &UpdateCollectionRequest{Name: strPtr("B")})
	assert.EqualValues(t, errno.ConflictErrCode, errno.ConvertErr(err).ErrCode)

	updated, err := svc.Update(alice.ID, a.ID, &UpdateCollectionRequest{Name: strPtr("A"), IsPublic: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "A", updated.Name)
	assert.False(t, updated.IsPublic)

	g := testutil.CreateGif(t, conn, alice.ID, "g")
	_, err = svc.AddGif(alice.ID, a.ID, g.ID)
	require.NoError(t, err)

	assert.EqualValues(t, errno.CollectionNotExistErrCode, errno.ConvertErr(svc.Delete(bob.ID, a.ID)).ErrCode)
	require.NoError(t, svc.Delete(alice.ID, a.ID))
	_, err = svc.Get(alice.ID, a.ID)
	assert.EqualValues(t, errno.CollectionNotExistErrCode, errno.ConvertErr(err).ErrCode)

	var rows int64
	require.NoError(t, conn.Model(&model.CollectionGif{}).Where("collection_id = ?", a.ID).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestCollectionGifs(t *testing.T) {
	ctx, conn := setup(t)
	rec := &mq.RecordingProducer{}
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	mine := testutil.CreateGif(t, conn, alice.ID, "mine")
	theirs := testutil.CreateGif(t, conn, bob.ID, "theirs")
	secret := testutil.CreateGif(t, conn, bob.ID, "secret", testutil.Private)
	svc := NewCollectionService(ctx, rec)

	c, err := svc.Create(alice.ID, &CreateCollectionRequest{Name: "Faves"})
	require.NoError(t, err)

	c, err = svc.AddGif(alice.ID, c.ID, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.GifsCount)
	c, err = svc.AddGif(alice.ID, c.ID, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.GifsCount, "adding twice is a no-op")
	c, err = svc.AddGif(alice.ID, c.ID, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.GifsCount)

	_, err = svc.AddGif(alice.ID, c.ID, secret.ID)
	assert.EqualValues(t, errno.GifNotExistErrCode, errno.ConvertErr(err).ErrCode)
	_, err = svc.AddGif(bob.ID, c.ID, theirs.ID)
	assert.EqualValues(t, errno.ForbiddenErrCode, errno.ConvertErr(err).ErrCode)

	// 只通知别人的 gif 第一次被收藏
	require.Len(t, rec.Notifications, 1)
	assert.Equal(t, bob.ID, rec.Notifications[0].RecipientID)
	assert.Equal(t, alice.ID, rec.Notifications[0].ActorID)
	assert.Equal(t, constants.NotificationCollectionAdd, rec.Notifications[0].Action)

	page, err := svc.ListGifs(bob.ID, c.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, theirs.ID, page.Items[0].ID)
	assert.Equal(t, mine.ID, page.Items[1].ID)

	c, err = svc.RemoveGif(alice.ID, c.ID, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.GifsCount)
	c, err = svc.RemoveGif(alice.ID, c.ID, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.GifsCount)
}

func TestDeletedGifLeavesCollectionsAndOwnerCounters(t *testing.T) {
	ctx, conn := setup(t)
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	carol := testutil.CreateUser(t, conn, "carol")
	g := testutil.CreateGif(t, conn, bob.ID, "doomed")
	kept := testutil.CreateGif(t, conn, bob.ID, "kept")
	svc := NewCollectionService(ctx, nil)

	c, err := svc.Create(alice.ID, &CreateCollectionRequest{Name: "Saved"})
	require.NoError(t, err)
	_, err = svc.AddGif(alice.ID, c.ID, g.ID)
	require.NoError(t, err)
	c, err = svc.AddGif(alice.ID, c.ID, kept.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), c.GifsCount)

	for _, u := range []*model.User{alice, carol} {
		_, _, err = interactiondb.CreateLike(ctx, u.ID, g)
		require.NoError(t, err)
	}
	_, _, err = interactiondb.CreateLike(ctx, alice.ID, kept)
	require.NoError(t, err)

	require.NoError(t, gifdb.DeleteGif(ctx, g))

	got, err := svc.Get(alice.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.GifsCount)
	page, err := svc.ListGifs(alice.ID, c.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, got.GifsCount, page.Total)

	var owner model.User
	require.NoError(t, conn.First(&owner, bob.ID).Error)
	assert.Equal(t, int64(1), owner.TotalLikesReceived)
	assert.Equal(t, int64(1), owner.GifsCount)
}
