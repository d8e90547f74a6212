package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"

	"ytgify.com/cmd/model"
	"ytgify.com/cmd/user/dal/db"
	"ytgify.com/config"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/oss"
	"ytgify.com/pkg/utils"
)

type UpdateAvatarService struct {
	ctx context.Context
}

func NewUpdateAvatarService(ctx context.Context) *UpdateAvatarService {
	return &UpdateAvatarService{ctx: ctx}
}

// UpdateAvatar 上传新头像并删除旧头像
func (s *UpdateAvatarService) UpdateAvatar(userID int64, data []byte) (*model.Account, error) {
	maxBytes := config.ConfigInfo.Upload.MaxAvatarMB << 20
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, errno.FileTooLargeErr
	}
	contentType := http.DetectContentType(data)
	objectName, err := oss.AvatarObjectName(userID, utils.GetBytesMD5(data), contentType)
	if err != nil {
		return nil, errno.FileTypeErr.WithMessage("Avatar must be a JPEG, PNG, GIF or WebP image")
	}

	u, err := NewGetUserInfoService(s.ctx).GetByID(userID)
	if err != nil {
		return nil, err
	}
	url, err := oss.Store.PutBytes(s.ctx, objectName, data, contentType)
	if err != nil {
		return nil, errors.WithMessage(err, "upload avatar")
	}
	if err = db.UpdateUser(s.ctx, userID, map[string]interface{}{"avatar_url": url}); err != nil {
		return nil, errors.WithMessage(err, "dao.UpdateUser failed")
	}
	if u.AvatarURL != "" && u.AvatarURL != url {
		if old := objectFromURL(u.AvatarURL); old != "" {
			if err := oss.Store.Remove(s.ctx, old); err != nil {
				hlog.CtxWarnf(s.ctx, "remove old avatar %s failed: %v", old, err)
			}
		}
	}
	u.AvatarURL = url
	return &model.Account{User: u, Email: u.Email}, nil
}

// objectFromURL 取出地址中 avatars/ 开始的对象名
func objectFromURL(url string) string {
	i := strings.LastIndex(url, "/avatars/")
	if i < 0 {
		return ""
	}
	return url[i+1:]
}
