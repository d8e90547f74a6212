package user

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ytgify.com/cmd/api/handlers"
	collection "ytgify.com/cmd/collection/service"
	gif "ytgify.com/cmd/gif/service"
	interaction "ytgify.com/cmd/interaction/service"
	relation "ytgify.com/cmd/relation/service"
	"ytgify.com/cmd/user/service"
)

type UpdateMeParam struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

type ChangePasswordParam struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func GetProfile(ctx context.Context, c *app.RequestContext) {
	profile, err := service.NewGetUserInfoService(ctx).Profile(handlers.UserID(c), c.Param("username"))
	handlers.SendResponse(c, err, profile)
}

func UpdateMe(ctx context.Context, c *app.RequestContext) {
	var req UpdateMeParam
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	account, err := service.NewUpdateUserService(ctx).UpdateUser(handlers.UserID(c), &service.UpdateUserRequest{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	handlers.SendResponse(c, err, account)
}

func UploadAvatar(ctx context.Context, c *app.RequestContext) {
	data, _, _, err := handlers.FormFile(c, "avatar", 0)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	account, err := service.NewUpdateAvatarService(ctx).UpdateAvatar(handlers.UserID(c), data)
	handlers.SendResponse(c, err, account)
}

func ChangePassword(ctx context.Context, c *app.RequestContext) {
	var req ChangePasswordParam
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	err := service.NewChangePasswordService(ctx).ChangePassword(handlers.UserID(c), req.CurrentPassword, req.NewPassword)
	handlers.SendResponse(c, err, nil)
}

// owner 路径中的用户名对应的用户 id
func owner(ctx context.Context, c *app.RequestContext) (int64, error) {
	u, err := service.NewGetUserInfoService(ctx).GetByUsername(c.Param("username"))
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func UserGifs(ctx context.Context, c *app.RequestContext) {
	p, err := handlers.BindPage(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	uid, err := owner(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := gif.NewGifService(ctx, handlers.Producer).ListByUser(handlers.UserID(c), uid, p.Page, p.PerPage)
	handlers.SendResponse(c, err, res)
}

func UserLikes(ctx context.Context, c *app.RequestContext) {
	p, err := handlers.BindPage(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	uid, err := owner(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := interaction.NewLikeService(ctx, handlers.Producer).ListLikedGifs(handlers.UserID(c), uid, p.Page, p.PerPage)
	handlers.SendResponse(c, err, res)
}

func UserCollections(ctx context.Context, c *app.RequestContext) {
	p, err := handlers.BindPage(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	uid, err := owner(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := collection.NewCollectionService(ctx, handlers.Producer).ListByUser(handlers.UserID(c), uid, p.Page, p.PerPage)
	handlers.SendResponse(c, err, res)
}

func Followers(ctx context.Context, c *app.RequestContext) {
	p, err := handlers.BindPage(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := relation.NewRelationService(ctx, handlers.Producer).FollowerList(handlers.UserID(c), c.Param("username"), p.Page, p.PerPage)
	handlers.SendResponse(c, err, res)
}

func Following(ctx context.Context, c *app.RequestContext) {
	p, err := handlers.BindPage(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := relation.NewRelationService(ctx, handlers.Producer).FollowingList(handlers.UserID(c), c.Param("username"), p.Page, p.PerPage)
	handlers.SendResponse(c, err, res)
}
