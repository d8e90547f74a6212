package gif

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/cmd/gif/service"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/errno"
)

// CreateParam multipart 表单中随文件提交的字段
type CreateParam struct {
	Title                 string   `form:"title"`
	Description           string   `form:"description"`
	Privacy               string   `form:"privacy"`
	YoutubeVideoURL       string   `form:"youtube_video_url"`
	YoutubeVideoTitle     string   `form:"youtube_video_title"`
	YoutubeChannelName    string   `form:"youtube_channel_name"`
	YoutubeTimestampStart *float64 `form:"youtube_timestamp_start"`
	YoutubeTimestampEnd   *float64 `form:"youtube_timestamp_end"`
	HasTextOverlay        bool     `form:"has_text_overlay"`
	TextOverlay           string   `form:"text_overlay"`
}

func (p *CreateParam) meta() *service.GifMeta {
	return &service.GifMeta{
		Title:                 p.Title,
		Description:           p.Description,
		Privacy:               p.Privacy,
		YoutubeVideoURL:       p.YoutubeVideoURL,
		YoutubeVideoTitle:     p.YoutubeVideoTitle,
		YoutubeChannelName:    p.YoutubeChannelName,
		YoutubeTimestampStart: p.YoutubeTimestampStart,
		YoutubeTimestampEnd:   p.YoutubeTimestampEnd,
		HasTextOverlay:        p.HasTextOverlay,
		TextOverlay:           p.TextOverlay,
	}
}

type ListParam struct {
	handlers.PageParam
	Sort string `query:"sort"`
}

type ShareResponse struct {
	ShareCount int64 `json:"share_count"`
}

type ViewResponse struct {
	Counted bool `json:"counted"`
}

func bindUpload(c *app.RequestContext) (*service.Upload, *service.GifMeta, error) {
	var req CreateParam
	if err := handlers.Bind(c, &req); err != nil {
		return nil, nil, err
	}
	data, name, contentType, err := handlers.FormFile(c, "file", 0)
	if err != nil {
		return nil, nil, err
	}
	return &service.Upload{Filename: name, ContentType: contentType, Data: data}, req.meta(), nil
}

func CreateGif(ctx context.Context, c *app.RequestContext) {
	upload, meta, err := bindUpload(c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	info, err := service.NewGifService(ctx, handlers.Producer).Create(handlers.UserID(c), upload, meta)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	hlog.CtxInfof(ctx, "user %d created gif %d", info.UserID, info.ID)
	handlers.SendResponse(c, errno.Success, info)
}

func RemixGif(ctx context.Context, c *app.RequestContext) {
	parentID, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	upload, meta, err := bindUpload(c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	info, err := service.NewGifService(ctx, handlers.Producer).Remix(handlers.UserID(c), parentID, upload, meta)
	handlers.SendResponse(c, err, info)
}

func GetGif(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	info, err := service.NewGifService(ctx, handlers.Producer).Get(handlers.UserID(c), id)
	handlers.SendResponse(c, err, info)
}

func UpdateGif(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	var req service.UpdateGifRequest
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	info, err := service.NewGifService(ctx, handlers.Producer).Update(handlers.UserID(c), id, &req)
	handlers.SendResponse(c, err, info)
}

func DeleteGif(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	err = service.NewGifService(ctx, handlers.Producer).Delete(handlers.UserID(c), id)
	handlers.SendResponse(c, err, nil)
}

// ListGifs sort 取 recent(默认), popular, trending
func ListGifs(ctx context.Context, c *app.RequestContext) {
	var req ListParam
	if err := c.BindQuery(&req); err != nil {
		handlers.SendResponse(c, errno.ParamErr.WithMessage("page and per_page must be integers"), nil)
		return
	}
	var (
		res    *model.PageResult[*model.GifInfo]
		err    error
		viewer = handlers.UserID(c)
	)
	switch req.Sort {
	case "", "recent":
		res, err = service.NewGifService(ctx, handlers.Producer).ListRecent(viewer, req.Page, req.PerPage)
	case "popular":
		res, err = service.NewGifService(ctx, handlers.Producer).ListPopular(viewer, req.Page, req.PerPage)
	case "trending":
		res, err = service.NewFeedService(ctx).Trending(viewer, req.Page, req.PerPage)
	default:
		err = errno.ParamErr.WithMessage("sort must be one of recent, popular, trending")
	}
	handlers.SendResponse(c, err, res)
}

func ListRemixes(ctx context.Context, c *app.RequestContext) {
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
	res, err := service.NewGifService(ctx, handlers.Producer).ListRemixes(handlers.UserID(c), id, p.Page, p.PerPage)
	handlers.SendResponse(c, err, res)
}

// RecordView 同一观看者一小时内只计一次
func RecordView(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	viewer := handlers.UserID(c)
	counted, err := service.NewViewService(ctx).RecordView(viewer, service.ViewerKey(viewer, c.ClientIP()), id)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendResponse(c, errno.Success, &ViewResponse{Counted: counted})
}

func ShareGif(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	n, err := service.NewGifService(ctx, handlers.Producer).Share(handlers.UserID(c), id)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendResponse(c, errno.Success, &ShareResponse{ShareCount: n})
}
