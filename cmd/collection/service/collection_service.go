package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytgify.com/cmd/collection/dal/db"
	gifservice "ytgify.com/cmd/gif/service"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/lock"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/utils"
)

type CreateCollectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
}

type UpdateCollectionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

type CollectionService struct {
	ctx      context.Context
	producer mq.MessageProducer
}

func NewCollectionService(ctx context.Context, producer mq.MessageProducer) *CollectionService {
	if producer == nil {
		producer = mq.NopProducer{}
	}
	return &CollectionService{ctx: ctx, producer: producer}
}

func validateName(name string) error {
	if name == "" {
		return errno.ValidationErr.WithMessage("Name can't be blank")
	}
	if utf8.RuneCountInString(name) > constants.MaxCollectionNameLen {
		return errno.ValidationErr.WithMessage("Name is too long (maximum is 100 characters)")
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > constants.MaxCollectionDescLen {
		return errno.ValidationErr.WithMessage("Description is too long (maximum is 500 characters)")
	}
	return nil
}

func (s *CollectionService) Create(userID int64, req *CreateCollectionRequest) (*model.Collection, error) {
	name := strings.TrimSpace(req.Name)
	desc := strings.TrimSpace(req.Description)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateDescription(desc); err != nil {
		return nil, err
	}
	c := &model.Collection{UserID: userID, Name: name, Description: desc, IsPublic: true}
	if req.IsPublic != nil {
		c.IsPublic = *req.IsPublic
	}
	created, err := db.CreateCollection(s.ctx, c)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.CreateCollection failed")
	}
	if !created {
		return nil, errno.ConflictErr.WithMessage("You already have a collection with this name")
	}
	// is_public 的零值不会被 Create 写入, 默认值为 true 时需要补一次
	if !c.IsPublic {
		if err := db.UpdateCollection(s.ctx, c.ID, map[string]interface{}{"is_public": false}); err != nil {
			return nil, errors.WithMessage(err, "dao.UpdateCollection failed")
		}
	}
	return c, nil
}

// Get 私密收藏夹对其他人表现为不存在
func (s *CollectionService) Get(viewerID, id int64) (*model.Collection, error) {
	c, err := db.GetCollection(s.ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.CollectionNotExistErr
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetCollection failed")
	}
	if !c.VisibleTo(viewerID) {
		return nil, errno.CollectionNotExistErr
	}
	return c, nil
}

func (s *CollectionService) owned(ownerID, id int64) (*model.Collection, error) {
	c, err := s.Get(ownerID, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != ownerID {
		return nil, errno.ForbiddenErr
	}
	return c, nil
}

func (s *CollectionService) ListByUser(viewerID, userID int64, page, perPage int) (*model.PageResult[*model.Collection], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	list, total, err := db.ListByUser(s.ctx, userID, viewerID == userID, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.ListByUser failed")
	}
	return model.NewPage(list, page, perPage, total), nil
}

func (s *CollectionService) Update(ownerID, id int64, req *UpdateCollectionRequest) (*model.Collection, error) {
	c, err := s.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		taken, err := db.NameTaken(s.ctx, ownerID, name, id)
		if err != nil {
			return nil, errors.WithMessage(err, "dao.NameTaken failed")
		}
		if taken {
			return nil, errno.ConflictErr.WithMessage("You already have a collection with this name")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if err := validateDescription(desc); err != nil {
			return nil, err
		}
		updates["description"] = desc
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if len(updates) == 0 {
		return c, nil
	}
	if err := db.UpdateCollection(s.ctx, id, updates); err != nil {
		return nil, errors.WithMessage(err, "dao.UpdateCollection failed")
	}
	return s.Get(ownerID, id)
}

func (s *CollectionService) Delete(ownerID, id int64) error {
	if _, err := s.owned(ownerID, id); err != nil {
		return err
	}
	if err := db.DeleteCollection(s.ctx, id); err != nil {
		return errors.WithMessage(err, "dao.DeleteCollection failed")
	}
	return nil
}

// AddGif 幂等, 第一次加入别人的 gif 时通知其作者
func (s *CollectionService) AddGif(ownerID, id, gifID int64) (*model.Collection, error) {
	if _, err := s.owned(ownerID, id); err != nil {
		return nil, err
	}
	gif, err := gifservice.NewGifService(s.ctx, nil).GetVisible(ownerID, gifID)
	if err != nil {
		return nil, err
	}
	var added bool
	err = lock.WithLock(s.ctx, fmt.Sprintf("collection:%d", id), func() error {
		var err error
		added, err = db.AddGif(s.ctx, id, gifID)
		return err
	})
	if err != nil {
		return nil, errors.WithMessage(err, "dao.AddGif failed")
	}
	if added && gif.UserID != ownerID {
		hlog.CtxInfof(s.ctx, "user %d added gif %d to collection %d", ownerID, gifID, id)
		mq.Report(s.ctx, mq.NotificationEventExchange, s.producer.PublishNotificationEvent(s.ctx, &mq.NotificationEvent{
			RecipientID:    gif.UserID,
			ActorID:        ownerID,
			Action:         constants.NotificationCollectionAdd,
			NotifiableType: "Gif",
			NotifiableID:   gifID,
		}))
	}
	return s.Get(ownerID, id)
}

// RemoveGif 不在收藏夹中时不报错
func (s *CollectionService) RemoveGif(ownerID, id, gifID int64) (*model.Collection, error) {
	if _, err := s.owned(ownerID, id); err != nil {
		return nil, err
	}
	err := lock.WithLock(s.ctx, fmt.Sprintf("collection:%d", id), func() error {
		_, err := db.RemoveGif(s.ctx, id, gifID)
		return err
	})
	if err != nil {
		return nil, errors.WithMessage(err, "dao.RemoveGif failed")
	}
	return s.Get(ownerID, id)
}

// ListGifs 按加入顺序
func (s *CollectionService) ListGifs(viewerID, id int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	if _, err := s.Get(viewerID, id); err != nil {
		return nil, err
	}
	page, perPage = utils.NormalizePage(page, perPage)
	ids, total, err := db.GifIDs(s.ctx, id, viewerID, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GifIDs failed")
	}
	items, err := gifservice.NewGifService(s.ctx, nil).ByIDs(viewerID, ids)
	if err != nil {
		return nil, err
	}
	return model.NewPage(items, page, perPage, total), nil
}
