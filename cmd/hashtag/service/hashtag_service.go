package service

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	gifservice "ytgify.com/cmd/gif/service"
	"ytgify.com/cmd/hashtag/dal/db"
	"ytgify.com/cmd/hashtag/infras/redis"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/hashtag"
	"ytgify.com/pkg/utils"
)

const (
	DefaultTrendingLimit = 10
	maxTrendingLimit     = 50
	searchLimit          = 10
)

type HashtagService struct {
	ctx context.Context
}

func NewHashtagService(ctx context.Context) *HashtagService {
	return &HashtagService{ctx: ctx}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultTrendingLimit
	}
	if limit > maxTrendingLimit {
		return maxTrendingLimit
	}
	return limit
}

// Trending 热门话题, 缓存 HashtagCacheTTL
func (s *HashtagService) Trending(limit int) ([]*db.TrendingHashtag, error) {
	limit = clampLimit(limit)
	if list, ok := redis.GetTrending(s.ctx, limit); ok {
		return list, nil
	}
	return s.Refresh(limit)
}

// Refresh 重新统计热门话题并写入缓存, worker 定期调用
func (s *HashtagService) Refresh(limit int) ([]*db.TrendingHashtag, error) {
	limit = clampLimit(limit)
	since := time.Now().Add(-gifservice.TrendingWindow())
	list, err := db.Trending(s.ctx, since, limit)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.Trending failed")
	}
	if err := redis.SetTrending(s.ctx, limit, list, constants.HashtagCacheTTL); err != nil {
		hlog.CtxWarnf(s.ctx, "cache trending hashtags failed: %v", err)
	}
	return list, nil
}

// GifsByHashtag 带该话题的公开 gif
func (s *HashtagService) GifsByHashtag(viewerID int64, name string, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	tag := hashtag.Normalize(name)
	if tag == "" {
		return nil, errno.NotFoundErr.WithMessage("Hashtag not found")
	}
	h, err := db.GetByName(s.ctx, tag)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.NotFoundErr.WithMessage("Hashtag not found")
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetByName failed")
	}
	ids, total, err := db.GifIDsByHashtag(s.ctx, h.ID, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GifIDsByHashtag failed")
	}
	items, err := gifservice.NewGifService(s.ctx, nil).ByIDs(viewerID, ids)
	if err != nil {
		return nil, err
	}
	return model.NewPage(items, page, perPage, total), nil
}

// Search 话题名前缀补全
func (s *HashtagService) Search(prefix string) ([]*model.Hashtag, error) {
	tag := hashtag.Normalize(prefix)
	if tag == "" {
		return []*model.Hashtag{}, nil
	}
	list, err := db.SearchPrefix(s.ctx, tag, searchLimit)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.SearchPrefix failed")
	}
	return list, nil
}
