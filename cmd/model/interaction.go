package model

import (
	"time"

	"gorm.io/gorm"
)

type Like struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_likes_user_gif,priority:1" json:"user_id"`
	GifID     int64     `gorm:"not null;uniqueIndex:idx_likes_user_gif,priority:2;index" json:"gif_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID              int64          `gorm:"primaryKey" json:"id"`
	GifID           int64          `gorm:"not null;index:idx_comments_gif_created,priority:1" json:"gif_id"`
	UserID          int64          `gorm:"not null;index" json:"user_id"`
	ParentCommentID *int64         `gorm:"index" json:"parent_comment_id,omitempty"`
	Content         string         `gorm:"type:text;not null" json:"content"`
	ReplyCount      int64          `gorm:"not null;default:0" json:"reply_count"`
	CreatedAt       time.Time      `gorm:"index:idx_comments_gif_created,priority:2" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type Notification struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	EventID        string     `gorm:"size:64;uniqueIndex" json:"-"`
	RecipientID    int64      `gorm:"not null;index:idx_notifications_recipient,priority:1" json:"recipient_id"`
	ActorID        int64      `gorm:"not null" json:"actor_id"`
	Action         string     `gorm:"size:32;not null" json:"action"`
	NotifiableType string     `gorm:"size:32" json:"notifiable_type"`
	NotifiableID   int64      `json:"notifiable_id"`
	ReadAt         *time.Time `gorm:"index" json:"read_at"`
	CreatedAt      time.Time  `gorm:"index:idx_notifications_recipient,priority:2" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
