package service

import (
	"time"

	"github.com/pkg/errors"

	"ytgify.com/cmd/gif/dal/db"
	"ytgify.com/cmd/model"
	"ytgify.com/config"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/utils"
)

const defaultWindowHours = 168

// TrendingWindow 热度和热门列表只统计这段时间内创建的 gif
func TrendingWindow() time.Duration {
	h := config.ConfigInfo.Trending.WindowHours
	if h <= 0 {
		h = defaultWindowHours
	}
	return time.Duration(h) * time.Hour
}

// List 按条件分页并附加点赞状态
func (s *GifService) List(viewerID int64, f db.Filter, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	gifs, total, err := db.ListGifs(s.ctx, f, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.ListGifs failed")
	}
	items, err := s.Decorate(viewerID, gifs)
	if err != nil {
		return nil, err
	}
	return model.NewPage(items, page, perPage, total), nil
}

// ListByUser 非本人只能看到公开 gif
func (s *GifService) ListByUser(viewerID, userID int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	f := db.Filter{UserID: userID, OrderBy: db.OrderRecent}
	if viewerID == userID {
		f.ViewerID = viewerID
	}
	return s.List(viewerID, f, page, perPage)
}

// ListRemixes 基于 id 的二创
func (s *GifService) ListRemixes(viewerID, id int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	if _, err := s.GetVisible(viewerID, id); err != nil {
		return nil, err
	}
	return s.List(viewerID, db.Filter{ParentID: id, ViewerID: viewerID, OrderBy: db.OrderRecent}, page, perPage)
}

func (s *GifService) ListRecent(viewerID int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	return s.List(viewerID, db.Filter{OrderBy: db.OrderRecent}, page, perPage)
}

// ListPopular 窗口内点赞最多的公开 gif
func (s *GifService) ListPopular(viewerID int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	f := db.Filter{Since: time.Now().Add(-TrendingWindow()), OrderBy: db.OrderPopular}
	return s.List(viewerID, f, page, perPage)
}

// ByIDs 按 ids 顺序返回可出现在列表中的 gif: 公开的, 或 viewerID 自己的
func (s *GifService) ByIDs(viewerID int64, ids []int64) ([]*model.GifInfo, error) {
	gifs, err := db.MGetGifs(s.ctx, ids)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.MGetGifs failed")
	}
	visible := gifs[:0]
	for _, g := range gifs {
		if g.Privacy == constants.PrivacyPublic || (viewerID != 0 && g.UserID == viewerID) {
			visible = append(visible, g)
		}
	}
	return s.Decorate(viewerID, visible)
}
