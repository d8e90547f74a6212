package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgify.com/cmd/relation/dal/db"
	userdb "ytgify.com/cmd/user/dal/db"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/testutil"
)

func TestFollowLifecycle(t *testing.T) {
	conn := testutil.NewDB(t)
	db.DB, userdb.DB = conn, conn
	ctx := context.Background()
	rec := &mq.RecordingProducer{}
	svc := NewRelationService(ctx, rec)

	alice := testutil.CreateUser(t, conn, "alice")
	testutil.CreateUser(t, conn, "bob")

	res, err := svc.Follow(alice.ID, "bob")
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.Equal(t, int64(1), res.FollowersCount)

	// following twice is a no-op
	res, err = svc.Follow(alice.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.FollowersCount)
	require.Len(t, rec.Follows, 1)
	assert.Equal(t, "follow", rec.Follows[0].ActionType)

	page, err := svc.FollowingList(alice.ID, "alice", 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bob", page.Items[0].Username)
	assert.True(t, page.Items[0].IsFollowing)

	page, err = svc.FollowerList(0, "bob", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	res, err = svc.Toggle(alice.ID, "bob")
	require.NoError(t, err)
	assert.False(t, res.Following)
	assert.Zero(t, res.FollowersCount)
	require.Len(t, rec.Follows, 2)
	assert.Equal(t, "unfollow", rec.Follows[1].ActionType)

	_, err = svc.Unfollow(alice.ID, "bob")
	require.NoError(t, err)
	assert.Len(t, rec.Follows, 2)
}

func TestFollowSelfAndMissing(t *testing.T) {
	conn := testutil.NewDB(t)
	db.DB, userdb.DB = conn, conn
	svc := NewRelationService(context.Background(), mq.NopProducer{})
	alice := testutil.CreateUser(t, conn, "alice")

	_, err := svc.Follow(alice.ID, "alice")
	assert.EqualValues(t, errno.ValidationErrCode, errno.ConvertErr(err).ErrCode)
	_, err = svc.Follow(alice.ID, "ghost")
	assert.EqualValues(t, errno.UserNotExistErrCode, errno.ConvertErr(err).ErrCode)
}

func TestNilProducerDefaultsToNop(t *testing.T) {
	conn := testutil.NewDB(t)
	db.DB, userdb.DB = conn, conn
	svc := NewRelationService(context.Background(), nil)
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")

	res, err := svc.Follow(alice.ID, "bob")
	require.NoError(t, err)
	assert.True(t, res.Following)
	ids, err := svc.FollowingIDs(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, ids)

	res, err = svc.Unfollow(alice.ID, "bob")
	require.NoError(t, err)
	assert.False(t, res.Following)
	got, err := userdb.GetUserByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Zero(t, got.FollowersCount)
}
