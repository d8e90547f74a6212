package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytgify.com/cmd/interaction/dal/db"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/utils"
)

type CreateCommentRequest struct {
	Content         string `json:"content"`
	ParentCommentID *int64 `json:"parent_comment_id"`
}

type CommentService struct {
	ctx      context.Context
	producer mq.MessageProducer
}

func NewCommentService(ctx context.Context, producer mq.MessageProducer) *CommentService {
	if producer == nil {
		producer = mq.NopProducer{}
	}
	return &CommentService{ctx: ctx, producer: producer}
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errno.ValidationErr.WithMessage("Content can't be blank")
	}
	if utf8.RuneCountInString(content) > constants.MaxCommentLen {
		return "", errno.ValidationErr.WithMessage("Content is too long (maximum is 1000 characters)")
	}
	return content, nil
}

// Create 发表评论或回复. 回复只能挂在同一 gif 的顶层评论下
func (s *CommentService) Create(userID, gifID int64, req *CreateCommentRequest) (*model.CommentInfo, error) {
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}
	gif, err := visibleGif(s.ctx, userID, gifID)
	if err != nil {
		return nil, err
	}

	var parent *model.Comment
	if req.ParentCommentID != nil {
		parent, err = s.get(*req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.GifID != gifID {
			return nil, errno.ValidationErr.WithMessage("Parent comment belongs to another gif")
		}
		if parent.ParentCommentID != nil {
			return nil, errno.ValidationErr.WithMessage("Replies can only be added to top-level comments")
		}
	}

	c := &model.Comment{
		GifID:           gifID,
		UserID:          userID,
		ParentCommentID: req.ParentCommentID,
		Content:         content,
	}
	if err := db.CreateComment(s.ctx, c); err != nil {
		return nil, errors.WithMessage(err, "dao.CreateComment failed")
	}
	created, err := s.get(c.ID)
	if err != nil {
		return nil, err
	}

	event := &mq.CommentEvent{
		Type:       mq.CommentEventCreate,
		CommentID:  c.ID,
		GifID:      gifID,
		UserID:     userID,
		GifOwnerID: gif.UserID,
		Content:    content,
	}
	if parent != nil {
		event.ParentCommentID = parent.ID
		event.ParentAuthorID = parent.UserID
	}
	s.publish(event)
	return s.info(userID, gif.UserID, created), nil
}

// List gif 的顶层评论
func (s *CommentService) List(viewerID, gifID int64, page, perPage int) (*model.PageResult[*model.CommentInfo], error) {
	gif, err := visibleGif(s.ctx, viewerID, gifID)
	if err != nil {
		return nil, err
	}
	page, perPage = utils.NormalizePage(page, perPage)
	list, total, err := db.ListComments(s.ctx, gifID, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.ListComments failed")
	}
	return model.NewPage(s.infos(viewerID, gif.UserID, list), page, perPage, total), nil
}

func (s *CommentService) ListReplies(viewerID, commentID int64, page, perPage int) (*model.PageResult[*model.CommentInfo], error) {
	parent, err := s.get(commentID)
	if err != nil {
		return nil, err
	}
	gif, err := visibleGif(s.ctx, viewerID, parent.GifID)
	if err != nil {
		return nil, err
	}
	page, perPage = utils.NormalizePage(page, perPage)
	list, total, err := db.ListReplies(s.ctx, commentID, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.ListReplies failed")
	}
	return model.NewPage(s.infos(viewerID, gif.UserID, list), page, perPage, total), nil
}

// Update 只有作者可以修改
func (s *CommentService) Update(userID, commentID int64, content string) (*model.CommentInfo, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	c, err := s.get(commentID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, errno.ForbiddenErr
	}
	gif, err := visibleGif(s.ctx, userID, c.GifID)
	if err != nil {
		return nil, err
	}
	if err := db.UpdateComment(s.ctx, commentID, content); err != nil {
		return nil, errors.WithMessage(err, "dao.UpdateComment failed")
	}
	c.Content = content
	s.publish(&mq.CommentEvent{
		Type:       mq.CommentEventUpdate,
		CommentID:  c.ID,
		GifID:      c.GifID,
		UserID:     userID,
		GifOwnerID: gif.UserID,
		Content:    content,
	})
	return s.info(userID, gif.UserID, c), nil
}

// Delete 作者或 gif 作者可以删除
func (s *CommentService) Delete(userID, commentID int64) error {
	c, err := s.get(commentID)
	if err != nil {
		return err
	}
	gif, err := visibleGif(s.ctx, userID, c.GifID)
	if err != nil {
		return err
	}
	if c.UserID != userID && gif.UserID != userID {
		return errno.ForbiddenErr
	}
	removed, err := db.DeleteComment(s.ctx, c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errno.CommentNotExistErr
	}
	if err != nil {
		return errors.WithMessage(err, "dao.DeleteComment failed")
	}
	hlog.CtxInfof(s.ctx, "user %d deleted comment %d (%d rows) on gif %d", userID, commentID, removed, c.GifID)

	event := &mq.CommentEvent{
		Type:       mq.CommentEventDelete,
		CommentID:  c.ID,
		GifID:      c.GifID,
		UserID:     userID,
		GifOwnerID: gif.UserID,
	}
	if c.ParentCommentID != nil {
		event.ParentCommentID = *c.ParentCommentID
	}
	s.publish(event)
	return nil
}

func (s *CommentService) publish(event *mq.CommentEvent) {
	count, err := db.CommentCount(s.ctx, event.GifID)
	if err != nil {
		hlog.CtxWarnf(s.ctx, "Read comment count of gif %d failed: %v", event.GifID, err)
	}
	event.CommentCount = count
	mq.Report(s.ctx, mq.CommentEventExchange, s.producer.PublishCommentEvent(s.ctx, event))
}

func (s *CommentService) get(id int64) (*model.Comment, error) {
	c, err := db.GetComment(s.ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.CommentNotExistErr
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetComment failed")
	}
	return c, nil
}

func (s *CommentService) info(viewerID, gifOwnerID int64, c *model.Comment) *model.CommentInfo {
	return &model.CommentInfo{
		Comment:   c,
		CanEdit:   viewerID != 0 && c.UserID == viewerID,
		CanDelete: viewerID != 0 && (c.UserID == viewerID || gifOwnerID == viewerID),
	}
}

func (s *CommentService) infos(viewerID, gifOwnerID int64, list []*model.Comment) []*model.CommentInfo {
	res := make([]*model.CommentInfo, 0, len(list))
	for _, c := range list {
		res = append(res, s.info(viewerID, gifOwnerID, c))
	}
	return res
}
