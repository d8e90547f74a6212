package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/testutil"
)

func commentCount(t *testing.T, conn *gorm.DB, gifID int64) int64 {
	var g model.Gif
	require.NoError(t, conn.First(&g, gifID).Error)
	return g.CommentCount
}

func TestCreateCommentAndReply(t *testing.T) {
	ctx, conn, _ := setup(t)
	rec := &mq.RecordingProducer{}
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	carol := testutil.CreateUser(t, conn, "carol")
	g := testutil.CreateGif(t, conn, alice.ID, "funny")
	svc := NewCommentService(ctx, rec)

	top, err := svc.Create(bob.ID, g.ID, &CreateCommentRequest{Content: "  nice one  "})
	require.NoError(t, err)
	assert.Equal(t, "nice one", top.Content)
	assert.Equal(t, "bob", top.User.Username)
	assert.True(t, top.CanEdit)
	assert.True(t, top.CanDelete)

	reply, err := svc.Create(carol.ID, g.ID, &CreateCommentRequest{Content: "agreed", ParentCommentID: &top.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentCommentID)

	_, err = svc.Create(alice.ID, g.ID, &CreateCommentRequest{Content: "too deep", ParentCommentID: &reply.ID})
	assert.EqualValues(t, errno.ValidationErrCode, errno.ConvertErr(err).ErrCode)

	other := testutil.CreateGif(t, conn, alice.ID, "other")
	_, err = svc.Create(alice.ID, other.ID, &CreateCommentRequest{Content: "wrong gif", ParentCommentID: &top.ID})
	assert.EqualValues(t, errno.ValidationErrCode, errno.ConvertErr(err).ErrCode)

	missing := int64(999)
	_, err = svc.Create(alice.ID, g.ID, &CreateCommentRequest{Content: "x", ParentCommentID: &missing})
	assert.EqualValues(t, errno.CommentNotExistErrCode, errno.ConvertErr(err).ErrCode)

	assert.Equal(t, int64(2), commentCount(t, conn, g.ID))

	require.Len(t, rec.Comments, 2)
	assert.Equal(t, alice.ID, rec.Comments[0].GifOwnerID)
	assert.Equal(t, int64(1), rec.Comments[0].CommentCount)
	assert.Equal(t, top.ID, rec.Comments[1].ParentCommentID)
	assert.Equal(t, bob.ID, rec.Comments[1].ParentAuthorID)
	assert.Equal(t, int64(2), rec.Comments[1].CommentCount)

	page, err := svc.List(0, g.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Items[0].ReplyCount)
	assert.False(t, page.Items[0].CanDelete)

	replies, err := svc.ListReplies(alice.ID, top.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, replies.Items, 1)
	assert.Equal(t, reply.ID, replies.Items[0].ID)
	assert.False(t, replies.Items[0].CanEdit)
	assert.True(t, replies.Items[0].CanDelete, "gif owner moderates")
}

func TestCommentValidation(t *testing.T) {
	ctx, conn, _ := setup(t)
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	g := testutil.CreateGif(t, conn, alice.ID, "funny")
	secret := testutil.CreateGif(t, conn, alice.ID, "secret", testutil.Private)
	svc := NewCommentService(ctx, nil)

	_, err := svc.Create(bob.ID, g.ID, &CreateCommentRequest{Content: "   "})
	assert.EqualValues(t, errno.ValidationErrCode, errno.ConvertErr(err).ErrCode)
	_, err = svc.Create(bob.ID, g.ID, &CreateCommentRequest{Content: strings.Repeat("a", 1001)})
	assert.EqualValues(t, errno.ValidationErrCode, errno.ConvertErr(err).ErrCode)
	_, err = svc.Create(bob.ID, g.ID, &CreateCommentRequest{Content: strings.Repeat("é", 1000)})
	assert.NoError(t, err)

	_, err = svc.Create(bob.ID, secret.ID, &CreateCommentRequest{Content: "hi"})
	assert.EqualValues(t, errno.GifNotExistErrCode, errno.ConvertErr(err).ErrCode)
	_, err = svc.List(bob.ID, secret.ID, 1, 20)
	assert.EqualValues(t, errno.GifNotExistErrCode, errno.ConvertErr(err).ErrCode)
}

func TestUpdateComment(t *testing.T) {
	ctx, conn, _ := setup(t)
	rec := &mq.RecordingProducer{}
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	g := testutil.CreateGif(t, conn, alice.ID, "funny")
	svc := NewCommentService(ctx, rec)

	c, err := svc.Create(bob.ID, g.ID, &CreateCommentRequest{Content: "frist"})
	require.NoError(t, err)

	_, err = svc.Update(alice.ID, c.ID, "hijacked")
	assert.EqualValues(t, errno.ForbiddenErrCode, errno.ConvertErr(err).ErrCode)

	updated, err := svc.Update(bob.ID, c.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, "first", updated.Content)

	_, err = svc.Update(bob.ID, 999, "x")
	assert.EqualValues(t, errno.CommentNotExistErrCode, errno.ConvertErr(err).ErrCode)

	require.Len(t, rec.Comments, 2)
	assert.Equal(t, mq.CommentEventUpdate, rec.Comments[1].Type)
}

func TestDeleteComment(t *testing.T) {
	ctx, conn, _ := setup(t)
	rec := &mq.RecordingProducer{}
	alice := testutil.CreateUser(t, conn, "alice")
	bob := testutil.CreateUser(t, conn, "bob")
	carol := testutil.CreateUser(t, conn, "carol")
	g := testutil.CreateGif(t, conn, alice.ID, "funny")
	svc := NewCommentService(ctx, rec)

	top, err := svc.Create(bob.ID, g.ID, &CreateCommentRequest{Content: "top"})
	require.NoError(t, err)
	r1, err := svc.Create(carol.ID, g.ID, &CreateCommentRequest{Content: "r1", ParentCommentID: &top.ID})
	require.NoError(t, err)
	_, err = svc.Create(alice.ID, g.ID, &CreateCommentRequest{Content: "r2", ParentCommentID: &top.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), commentCount(t, conn, g.ID))

	assert.EqualValues(t, errno.ForbiddenErrCode, errno.ConvertErr(svc.Delete(bob.ID, r1.ID)).ErrCode)

	require.NoError(t, svc.Delete(carol.ID, r1.ID))
	assert.Equal(t, int64(2), commentCount(t, conn, g.ID))
	var parent model.Comment
	require.NoError(t, conn.First(&parent, top.ID).Error)
	assert.Equal(t, int64(1), parent.ReplyCount)

	// gif 作者删除顶层评论, 回复一并删除
	require.NoError(t, svc.Delete(alice.ID, top.ID))
	assert.Zero(t, commentCount(t, conn, g.ID))
	var left int64
	require.NoError(t, conn.Model(&model.Comment{}).Where("gif_id = ?", g.ID).Count(&left).Error)
	assert.Zero(t, left)

	assert.EqualValues(t, errno.CommentNotExistErrCode, errno.ConvertErr(svc.Delete(alice.ID, top.ID)).ErrCode)

	last := rec.Comments[len(rec.Comments)-1]
	assert.Equal(t, mq.CommentEventDelete, last.Type)
	assert.Zero(t, last.CommentCount)
}
