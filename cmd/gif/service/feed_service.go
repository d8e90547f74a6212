package service

import (
	"context"

	"github.com/pkg/errors"

	"ytgify.com/cmd/gif/dal/db"
	"ytgify.com/cmd/model"
	relation "ytgify.com/cmd/relation/service"
	"ytgify.com/pkg/utils"
)

type FeedService struct {
	ctx context.Context
}

func NewFeedService(ctx context.Context) *FeedService {
	return &FeedService{ctx: ctx}
}

// Home 先是关注用户的公开 gif (最新在前), 之后接上其他用户的热门 gif.
// 两段拼成一个序列后再分页, 所以翻页时不会重复
func (s *FeedService) Home(userID int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	if userID == 0 {
		return s.Trending(0, page, perPage)
	}
	page, perPage = utils.NormalizePage(page, perPage)
	offset := utils.Offset(page, perPage)

	following, err := relation.NewRelationService(s.ctx, nil).FollowingIDs(userID)
	if err != nil {
		return nil, err
	}

	followed := db.Filter{UserIDs: following, OrderBy: db.OrderRecent}
	rest := db.Filter{ExcludeUserIDs: following, OrderBy: db.OrderTrending}

	followedTotal, err := db.CountGifs(s.ctx, followed)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.CountGifs failed")
	}
	gifs := make([]*model.Gif, 0, perPage)
	if int64(offset) < followedTotal {
		part, _, err := db.ListGifs(s.ctx, followed, offset, perPage)
		if err != nil {
			return nil, errors.WithMessage(err, "dao.ListGifs failed")
		}
		gifs = append(gifs, part...)
	}

	restOffset := offset - int(followedTotal)
	if restOffset < 0 {
		restOffset = 0
	}
	var restTotal int64
	if need := perPage - len(gifs); need > 0 {
		var part []*model.Gif
		part, restTotal, err = db.ListGifs(s.ctx, rest, restOffset, need)
		if err != nil {
			return nil, errors.WithMessage(err, "dao.ListGifs failed")
		}
		gifs = append(gifs, part...)
	} else if restTotal, err = db.CountGifs(s.ctx, rest); err != nil {
		return nil, errors.WithMessage(err, "dao.CountGifs failed")
	}

	items, err := NewGifService(s.ctx, nil).Decorate(userID, gifs)
	if err != nil {
		return nil, err
	}
	return model.NewPage(items, page, perPage, followedTotal+restTotal), nil
}

func (s *FeedService) Trending(viewerID int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	return NewTrendingService(s.ctx).Top(viewerID, page, perPage)
}

func (s *FeedService) Recent(viewerID int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	return NewGifService(s.ctx, nil).ListRecent(viewerID, page, perPage)
}

func (s *FeedService) Popular(viewerID int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	return NewGifService(s.ctx, nil).ListPopular(viewerID, page, perPage)
}
