package main

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"ytgify.com/cmd/api/handlers/collection"
	"ytgify.com/cmd/api/handlers/gif"
	"ytgify.com/cmd/api/handlers/hashtag"
	"ytgify.com/cmd/api/handlers/interaction"
	"ytgify.com/cmd/api/handlers/notification"
	"ytgify.com/cmd/api/handlers/relation"
	"ytgify.com/cmd/api/handlers/user"
	"ytgify.com/cmd/api/router/authfunc"
	"ytgify.com/pkg/ratelimit"
)

func with(mw []app.HandlerFunc, h ...app.HandlerFunc) []app.HandlerFunc {
	return append(append(make([]app.HandlerFunc, 0, len(mw)+len(h)), mw...), h...)
}

// register 注册 /api 下的全部路由
func register(r *server.Hertz) {
	auth := authfunc.Auth()
	optional := authfunc.OptionalAuth()

	api := r.Group("/api", ratelimit.Global())

	_auth := api.Group("/auth")
	_auth.POST("/register", ratelimit.Limit(ratelimit.ResourceRegister, ratelimit.ByIP), user.Register)
	_auth.POST("/login", ratelimit.Limit(ratelimit.ResourceLogin, ratelimit.ByIP), user.Login)
	_auth.POST("/refresh", user.Refresh)
	_auth.DELETE("/logout", with(auth, user.Logout)...)
	_auth.GET("/me", with(auth, user.Me)...)

	_users := api.Group("/users")
	// me 需要先于 :username 注册
	_users.PATCH("/me", with(auth, user.UpdateMe)...)
	_users.POST("/me/avatar", with(auth, user.UploadAvatar)...)
	_users.PUT("/me/password", with(auth, user.ChangePassword)...)
	_users.GET("/:username", with(optional, user.GetProfile)...)
	_users.GET("/:username/gifs", with(optional, user.UserGifs)...)
	_users.GET("/:username/followers", with(optional, user.Followers)...)
	_users.GET("/:username/following", with(optional, user.Following)...)
	_users.GET("/:username/collections", with(optional, user.UserCollections)...)
	_users.GET("/:username/likes", with(optional, user.UserLikes)...)
	_users.POST("/:username/follow", with(auth, relation.Follow)...)
	_users.DELETE("/:username/follow", with(auth, relation.Unfollow)...)

	_gifs := api.Group("/gifs")
	_gifs.GET("", with(optional, gif.ListGifs)...)
	_gifs.POST("", with(auth, ratelimit.Limit(ratelimit.ResourceGifCreate, ratelimit.ByUser), gif.CreateGif)...)
	_gifs.GET("/:id", with(optional, gif.GetGif)...)
	_gifs.PATCH("/:id", with(auth, gif.UpdateGif)...)
	_gifs.DELETE("/:id", with(auth, gif.DeleteGif)...)
	_gifs.POST("/:id/remix", with(auth, ratelimit.Limit(ratelimit.ResourceGifCreate, ratelimit.ByUser), gif.RemixGif)...)
	_gifs.GET("/:id/remixes", with(optional, gif.ListRemixes)...)
	_gifs.POST("/:id/view", with(optional, gif.RecordView)...)
	_gifs.POST("/:id/share", with(optional, gif.ShareGif)...)
	_gifs.POST("/:id/like", with(auth, interaction.ToggleLike)...)
	_gifs.GET("/:id/comments", with(optional, interaction.ListComments)...)
	_gifs.POST("/:id/comments", with(auth, ratelimit.Limit(ratelimit.ResourceCommentCreate, ratelimit.ByUser), interaction.CreateComment)...)

	_comments := api.Group("/comments")
	_comments.PATCH("/:id", with(auth, interaction.UpdateComment)...)
	_comments.DELETE("/:id", with(auth, interaction.DeleteComment)...)
	_comments.GET("/:id/replies", with(optional, interaction.ListReplies)...)

	_feed := api.Group("/feed", optional...)
	_feed.GET("", gif.HomeFeed)
	_feed.GET("/trending", gif.TrendingFeed)
	_feed.GET("/recent", gif.RecentFeed)
	_feed.GET("/popular", gif.PopularFeed)

	_collections := api.Group("/collections")
	_collections.POST("", with(auth, collection.CreateCollection)...)
	_collections.GET("/:id", with(optional, collection.GetCollection)...)
	_collections.PATCH("/:id", with(auth, collection.UpdateCollection)...)
	_collections.DELETE("/:id", with(auth, collection.DeleteCollection)...)
	_collections.GET("/:id/gifs", with(optional, collection.ListCollectionGifs)...)
	_collections.POST("/:id/gifs/:gif_id", with(auth, collection.AddGif)...)
	_collections.DELETE("/:id/gifs/:gif_id", with(auth, collection.RemoveGif)...)

	_hashtags := api.Group("/hashtags")
	_hashtags.GET("/trending", hashtag.Trending)
	_hashtags.GET("/search", hashtag.Search)
	_hashtags.GET("/:name/gifs", with(optional, hashtag.Gifs)...)

	api.GET("/search", with(optional, gif.Search)...)

	_notifications := api.Group("/notifications", auth...)
	_notifications.GET("", notification.List)
	_notifications.GET("/unread_count", notification.UnreadCount)
	_notifications.POST("/read_all", notification.MarkAllRead)
	_notifications.POST("/:id/read", notification.MarkRead)
}
