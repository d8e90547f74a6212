package interaction

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/cmd/interaction/service"
)

type UpdateCommentParam struct {
	Content string `json:"content"`
}

func CreateComment(ctx context.Context, c *app.RequestContext) {
	gifID, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	var req service.CreateCommentRequest
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewCommentService(ctx, handlers.Producer).Create(handlers.UserID(c), gifID, &req)
	handlers.SendResponse(c, err, res)
}

// ListComments 顶层评论, 新的在前
func ListComments(ctx context.Context, c *app.RequestContext) {
	gifID, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	p, err := handlers.BindPage(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewCommentService(ctx, handlers.Producer).List(handlers.UserID(c), gifID, p.Page, p.PerPage)
	handlers.SendResponse(c, err, res)
}

func ListReplies(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	p, err := handlers.BindPage(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewCommentService(ctx, handlers.Producer).ListReplies(handlers.UserID(c), id, p.Page, p.PerPage)
	handlers.SendResponse(c, err, res)
}

func UpdateComment(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	var req UpdateCommentParam
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewCommentService(ctx, handlers.Producer).Update(handlers.UserID(c), id, req.Content)
	handlers.SendResponse(c, err, res)
}

func DeleteComment(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	err = service.NewCommentService(ctx, handlers.Producer).Delete(handlers.UserID(c), id)
	handlers.SendResponse(c, err, nil)
}
