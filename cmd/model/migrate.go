package model

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移所有表
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Gif{}, "Hashtags", &GifHashtag{}); err != nil {
		return fmt.Errorf("setup gif_hashtags join table: %w", err)
	}
	return db.AutoMigrate(
		&User{},
		&JwtDenylist{},
		&Gif{},
		&GifView{},
		&Hashtag{},
		&GifHashtag{},
		&Like{},
		&Comment{},
		&Follow{},
		&Collection{},
		&CollectionGif{},
		&Notification{},
	)
}
