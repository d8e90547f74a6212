package model

// GifInfo gif 加上与当前观看者相关的字段
type GifInfo struct {
	*Gif
	LikedByViewer bool `json:"liked_by_viewer"`
}

// Account 本人可见的用户信息
type Account struct {
	*User
	Email string `json:"email"`
}

type UserProfile struct {
	*User
	IsFollowing bool `json:"is_following"`
	IsSelf      bool `json:"is_self"`
}

type CommentInfo struct {
	*Comment
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}
