package handlers

import (
	"context"
	"io"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"

	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/mq"
)

type Response struct {
	Code    int64       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Producer 由 main 注入, 未连接 RabbitMQ 时为 NopProducer
var Producer mq.MessageProducer = mq.NopProducer{}

// SendResponse pack response, http 状态码由错误码决定
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	Err := errno.ConvertErr(err)
	status := errno.HTTPStatus(Err)
	if Err.ErrCode == errno.ServiceErrCode {
		// 内部错误只记日志, 不把细节返回给客户端
		hlog.Errorf("%s %s failed: %v", c.Method(), c.FullPath(), err)
		Err = errno.ServiceErr.WithMessage("Internal server error")
	}
	c.JSON(status, Response{
		Code:    Err.ErrCode,
		Message: Err.ErrMsg,
		Data:    data,
	})
}

// UserID 鉴权中间件写入的当前用户, 匿名为 0
func UserID(c *app.RequestContext) int64 {
	if v, ok := c.Get(constants.IdentityKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// PageParam 分页参数, 由 utils.NormalizePage 处理默认值和上限
type PageParam struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

func BindPage(ctx context.Context, c *app.RequestContext) (PageParam, error) {
	var p PageParam
	if err := c.BindQuery(&p); err != nil {
		hlog.CtxInfof(ctx, "bind page failed: %v", err)
		return p, errno.ParamErr.WithMessage("page and per_page must be integers")
	}
	return p, nil
}

// ParamID 路径中的数字 id
func ParamID(c *app.RequestContext, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errno.ParamErr.WithMessage("invalid " + name)
	}
	return id, nil
}

// Bind 绑定请求体, 失败时统一为 ParamErr
func Bind(c *app.RequestContext, req interface{}) error {
	if err := c.BindAndValidate(req); err != nil {
		return errno.ParamErr.WithMessage(err.Error())
	}
	return nil
}

// FormFile 读取 multipart 中的文件, limit 为 0 时不限制大小
func FormFile(c *app.RequestContext, field string, limit int64) (data []byte, filename, contentType string, err error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", "", errno.ValidationErr.WithMessage("File can't be blank")
	}
	if limit > 0 && fh.Size > limit {
		return nil, "", "", errno.FileTooLargeErr
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", "", errors.WithMessage(err, "open upload")
	}
	defer f.Close()
	if data, err = io.ReadAll(f); err != nil {
		return nil, "", "", errors.WithMessage(err, "read upload")
	}
	return data, fh.Filename, fh.Header.Get("Content-Type"), nil
}
