package notification

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/cmd/notification/service"
	"ytgify.com/pkg/errno"
)

type ListParam struct {
	handlers.PageParam
	Unread bool `query:"unread"`
}

type CountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type MarkAllResponse struct {
	Updated int64 `json:"updated"`
}

func List(ctx context.Context, c *app.RequestContext) {
	var req ListParam
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewNotificationService(ctx).List(handlers.UserID(c), req.Unread, req.Page, req.PerPage)
	handlers.SendResponse(c, err, res)
}

func UnreadCount(ctx context.Context, c *app.RequestContext) {
	n, err := service.NewNotificationService(ctx).UnreadCount(handlers.UserID(c))
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendResponse(c, errno.Success, &CountResponse{UnreadCount: n})
}

func MarkRead(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewNotificationService(ctx).MarkRead(handlers.UserID(c), id)
	handlers.SendResponse(c, err, res)
}

func MarkAllRead(ctx context.Context, c *app.RequestContext) {
	n, err := service.NewNotificationService(ctx).MarkAllRead(handlers.UserID(c))
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendResponse(c, errno.Success, &MarkAllResponse{Updated: n})
}
