package service

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"

	"ytgify.com/cmd/gif/dal/db"
	"ytgify.com/cmd/gif/infras/redis"
	"ytgify.com/cmd/model"
	"ytgify.com/config"
	"ytgify.com/pkg/trending"
	"ytgify.com/pkg/utils"
)

const defaultTrendingSize = 500

type TrendingService struct {
	ctx context.Context
	now func() time.Time
}

func NewTrendingService(ctx context.Context) *TrendingService {
	return &TrendingService{ctx: ctx, now: time.Now}
}

// Refresh 重新计算窗口内公开 gif 的热度, 写回数据库并替换 redis 榜单
func (s *TrendingService) Refresh() (int, error) {
	now := s.now()
	since := now.Add(-TrendingWindow())
	candidates, err := db.TrendingCandidates(s.ctx, since)
	if err != nil {
		return 0, errors.WithMessage(err, "dao.TrendingCandidates failed")
	}
	scores := make(map[int64]float64, len(candidates))
	for _, g := range candidates {
		scores[g.ID] = trending.ScoreAt(trending.Counters{
			Likes:    g.LikeCount,
			Comments: g.CommentCount,
			Remixes:  g.RemixCount,
			Shares:   g.ShareCount,
			Views:    g.ViewCount,
		}, g.CreatedAt, now)
	}
	if err := db.UpdateTrendingScores(s.ctx, scores, since); err != nil {
		return 0, errors.WithMessage(err, "dao.UpdateTrendingScores failed")
	}
	size := config.ConfigInfo.Trending.Size
	if size <= 0 {
		size = defaultTrendingSize
	}
	if err := redis.StoreTrending(s.ctx, scores, size); err != nil {
		hlog.CtxWarnf(s.ctx, "store trending zset failed: %v", err)
	}
	hlog.CtxInfof(s.ctx, "trending refreshed, %d candidates", len(candidates))
	return len(candidates), nil
}

// Top 优先读 redis 榜单, 榜单为空时按数据库中的 trending_score 排序.
// 榜单里已删除或转为非公开的 gif 不计入总数, 顺便移出榜单
func (s *TrendingService) Top(viewerID int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	ranked, err := redis.TrendingIDs(s.ctx)
	if err != nil {
		hlog.CtxWarnf(s.ctx, "read trending zset failed, falling back to database: %v", err)
	}
	if err != nil || len(ranked) == 0 {
		return NewGifService(s.ctx, nil).List(viewerID, db.Filter{OrderBy: db.OrderTrending}, page, perPage)
	}
	live, err := db.PublicIDs(s.ctx, ranked)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.PublicIDs failed")
	}
	if len(live) < len(ranked) {
		s.prune(ranked, live)
	}

	offset := utils.Offset(page, perPage)
	ids := []int64{}
	if offset < len(live) {
		ids = live[offset:min(offset+perPage, len(live))]
	}
	items, err := NewGifService(s.ctx, nil).ByIDs(viewerID, ids)
	if err != nil {
		return nil, err
	}
	return model.NewPage(items, page, perPage, int64(len(live))), nil
}

func (s *TrendingService) prune(ranked, live []int64) {
	keep := make(map[int64]bool, len(live))
	for _, id := range live {
		keep[id] = true
	}
	for _, id := range ranked {
		if keep[id] {
			continue
		}
		if err := redis.RemoveTrending(s.ctx, id); err != nil {
			hlog.CtxWarnf(s.ctx, "remove gif %d from trending failed: %v", id, err)
			return
		}
	}
}
