package collection

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/cmd/collection/service"
)

func CreateCollection(ctx context.Context, c *app.RequestContext) {
	var req service.CreateCollectionRequest
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewCollectionService(ctx, handlers.Producer).Create(handlers.UserID(c), &req)
	handlers.SendResponse(c, err, res)
}

func GetCollection(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewCollectionService(ctx, handlers.Producer).Get(handlers.UserID(c), id)
	handlers.SendResponse(c, err, res)
}

func UpdateCollection(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	var req service.UpdateCollectionRequest
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewCollectionService(ctx, handlers.Producer).Update(handlers.UserID(c), id, &req)
	handlers.SendResponse(c, err, res)
}

func DeleteCollection(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	err = service.NewCollectionService(ctx, handlers.Producer).Delete(handlers.UserID(c), id)
	handlers.SendResponse(c, err, nil)
}

func ListCollectionGifs(ctx context.Context, c *app.RequestContext) {
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
	res, err := service.NewCollectionService(ctx, handlers.Producer).ListGifs(handlers.UserID(c), id, p.Page, p.PerPage)
	handlers.SendResponse(c, err, res)
}

func ids(c *app.RequestContext) (id, gifID int64, err error) {
	if id, err = handlers.ParamID(c, "id"); err != nil {
		return
	}
	gifID, err = handlers.ParamID(c, "gif_id")
	return
}

// AddGif 重复添加不报错
func AddGif(ctx context.Context, c *app.RequestContext) {
	id, gifID, err := ids(c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewCollectionService(ctx, handlers.Producer).AddGif(handlers.UserID(c), id, gifID)
	handlers.SendResponse(c, err, res)
}

func RemoveGif(ctx context.Context, c *app.RequestContext) {
	id, gifID, err := ids(c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewCollectionService(ctx, handlers.Producer).RemoveGif(handlers.UserID(c), id, gifID)
	handlers.SendResponse(c, err, res)
}
