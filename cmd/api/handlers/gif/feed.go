package gif

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/cmd/gif/service"
	"ytgify.com/cmd/model"
)

type feedFunc func(s *service.FeedService, viewer int64, page, perPage int) (*model.PageResult[*model.GifInfo], error)

func feed(fn feedFunc) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		p, err := handlers.BindPage(ctx, c)
		if err != nil {
			handlers.SendResponse(c, err, nil)
			return
		}
		res, err := fn(service.NewFeedService(ctx), handlers.UserID(c), p.Page, p.PerPage)
		handlers.SendResponse(c, err, res)
	}
}

var (
	// HomeFeed 关注的人的 gif, 不足一页用热门补齐, 匿名用户直接返回热门
	HomeFeed     = feed((*service.FeedService).Home)
	TrendingFeed = feed((*service.FeedService).Trending)
	RecentFeed   = feed((*service.FeedService).Recent)
	PopularFeed  = feed((*service.FeedService).Popular)
)

type SearchParam struct {
	handlers.PageParam
	Q string `query:"q"`
}

func Search(ctx context.Context, c *app.RequestContext) {
	var req SearchParam
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewSearchService(ctx).Search(handlers.UserID(c), req.Q, req.Page, req.PerPage)
	handlers.SendResponse(c, err, res)
}
