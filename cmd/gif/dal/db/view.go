package db

import (
	"context"

	"ytgify.com/cmd/model"
)

// InsertView 记录一次浏览. gif_views 可按 gif_id 分表, 写入时必须带 gif_id
func InsertView(ctx context.Context, v *model.GifView) error {
	return DB.WithContext(ctx).Create(v).Error
}
