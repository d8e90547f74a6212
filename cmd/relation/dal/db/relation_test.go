package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgify.com/cmd/model"
	"ytgify.com/pkg/testutil"
)

func TestFollowCounters(t *testing.T) {
	DB = testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, DB, "alice")
	bob := testutil.CreateUser(t, DB, "bob")

	created, err := CreateFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = CreateFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var a, b model.User
	require.NoError(t, DB.First(&a, alice.ID).Error)
	require.NoError(t, DB.First(&b, bob.ID).Error)
	assert.Equal(t, int64(1), a.FollowingCount)
	assert.Equal(t, int64(1), b.FollowersCount)

	ok, err := IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	followers, total, err := GetFollowerListPaged(ctx, bob.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	following, _, err := GetFollowingListPaged(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)

	set, err := FollowingSet(ctx, alice.ID, []int64{bob.ID, 999})
	require.NoError(t, err)
	assert.True(t, set[bob.ID])
	assert.False(t, set[999])

	deleted, err := DeleteFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = DeleteFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, DB.First(&a, alice.ID).Error)
	require.NoError(t, DB.First(&b, bob.ID).Error)
	assert.Zero(t, a.FollowingCount)
	assert.Zero(t, b.FollowersCount)
}
