package model

import (
	"time"

	"gorm.io/gorm"
)

type Gif struct {
	ID                    int64          `gorm:"primaryKey" json:"id"`
	UserID                int64          `gorm:"not null;index:idx_gifs_user_created,priority:1" json:"user_id"`
	Title                 string         `gorm:"size:100;not null" json:"title"`
	Description           string         `gorm:"type:text" json:"description"`
	YoutubeVideoURL       string         `gorm:"size:512" json:"youtube_video_url"`
	YoutubeVideoTitle     string         `gorm:"size:255" json:"youtube_video_title"`
	YoutubeChannelName    string         `gorm:"size:255" json:"youtube_channel_name"`
	YoutubeTimestampStart float64        `json:"youtube_timestamp_start"`
	YoutubeTimestampEnd   float64        `json:"youtube_timestamp_end"`
	Duration              float64        `json:"duration"`
	FPS                   int            `json:"fps"`
	Width                 int            `json:"width"`
	Height                int            `json:"height"`
	Resolution            string         `gorm:"size:32" json:"resolution"`
	FileSize              int64          `json:"file_size"`
	FileURL               string         `gorm:"size:512" json:"file_url"`
	ThumbnailURL          string         `gorm:"size:512" json:"thumbnail_url"`
	ObjectKey             string         `gorm:"size:255" json:"-"`
	Privacy               string         `gorm:"size:16;not null;default:public;index" json:"privacy"`
	HasTextOverlay        bool           `json:"has_text_overlay"`
	TextOverlay           string         `gorm:"size:200" json:"text_overlay,omitempty"`
	ParentGifID           *int64         `gorm:"index" json:"parent_gif_id,omitempty"`
	IsRemix               bool           `gorm:"not null;default:false" json:"is_remix"`
	RemixCount            int64          `gorm:"not null;default:0" json:"remix_count"`
	LikeCount             int64          `gorm:"not null;default:0" json:"like_count"`
	CommentCount          int64          `gorm:"not null;default:0" json:"comment_count"`
	ViewCount             int64          `gorm:"not null;default:0" json:"view_count"`
	ShareCount            int64          `gorm:"not null;default:0" json:"share_count"`
	TrendingScore         float64        `gorm:"not null;default:0;index" json:"trending_score"`
	CreatedAt             time.Time      `gorm:"index:idx_gifs_user_created,priority:2" json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Hashtags []Hashtag `gorm:"many2many:gif_hashtags" json:"hashtags,omitempty"`
}

// VisibleTo reports whether viewerID may load the gif. Unlisted gifs are
// reachable by link, private ones only by their owner.
func (g *Gif) VisibleTo(viewerID int64) bool {
	if g.Privacy == "private" {
		return viewerID != 0 && viewerID == g.UserID
	}
	return true
}

// GifView is one recorded view event.
type GifView struct {
	ID       int64     `gorm:"primaryKey" json:"id"`
	GifID    int64     `gorm:"not null;index" json:"gif_id"`
	UserID   int64     `gorm:"index" json:"user_id"`
	ViewedAt time.Time `gorm:"not null" json:"viewed_at"`
}
