package service

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"

	"ytgify.com/cmd/gif/dal/db"
	"ytgify.com/cmd/gif/infras/redis"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/constants"
)

type ViewService struct {
	ctx context.Context
}

func NewViewService(ctx context.Context) *ViewService {
	return &ViewService{ctx: ctx}
}

// ViewerKey 登录用户按 id 去重, 匿名用户按 ip
func ViewerKey(userID int64, ip string) string {
	if userID != 0 {
		return "u" + strconv.FormatInt(userID, 10)
	}
	return "ip" + ip
}

// RecordView 同一观看者每个去重窗口只计一次, 返回本次是否计数
func (s *ViewService) RecordView(viewerID int64, viewerKey string, gifID int64) (bool, error) {
	if _, err := NewGifService(s.ctx, nil).GetVisible(viewerID, gifID); err != nil {
		return false, err
	}
	first, err := redis.MarkViewed(s.ctx, gifID, viewerKey, constants.ViewDedupWindow)
	if err != nil {
		hlog.CtxWarnf(s.ctx, "view dedup unavailable for gif %d: %v", gifID, err)
	}
	if !first {
		return false, nil
	}

	buffered, err := redis.BufferView(s.ctx, gifID)
	if err != nil {
		hlog.CtxWarnf(s.ctx, "buffer view of gif %d failed, writing through: %v", gifID, err)
	}
	if !buffered {
		if err := db.AddViewCounts(s.ctx, map[int64]int64{gifID: 1}); err != nil {
			return false, errors.WithMessage(err, "dao.AddViewCounts failed")
		}
	}
	if err := db.InsertView(s.ctx, &model.GifView{GifID: gifID, UserID: viewerID, ViewedAt: time.Now()}); err != nil {
		hlog.CtxWarnf(s.ctx, "insert view of gif %d failed: %v", gifID, err)
	}
	return true, nil
}

// FlushViews 把 redis 中缓冲的浏览数写入 gifs.view_count, 返回涉及的 gif 数
func (s *ViewService) FlushViews() (int, error) {
	counts, err := redis.DrainViews(s.ctx)
	if err != nil {
		redis.RestoreViews(s.ctx, counts)
		return 0, errors.WithMessage(err, "drain buffered views")
	}
	if len(counts) == 0 {
		return 0, nil
	}
	if err := db.AddViewCounts(s.ctx, counts); err != nil {
		redis.RestoreViews(s.ctx, counts)
		return 0, errors.WithMessage(err, "dao.AddViewCounts failed")
	}
	hlog.CtxInfof(s.ctx, "flushed buffered views of %d gifs", len(counts))
	return len(counts), nil
}
