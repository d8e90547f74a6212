package model

import "time"

type Collection struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_collections_user_name,priority:1" json:"user_id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:idx_collections_user_name,priority:2" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	IsPublic    bool      `gorm:"not null;default:true" json:"is_public"`
	GifsCount   int64     `gorm:"not null;default:0" json:"gifs_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Collection) VisibleTo(viewerID int64) bool {
	return c.IsPublic || (viewerID != 0 && viewerID == c.UserID)
}

type CollectionGif struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	CollectionID int64     `gorm:"not null;uniqueIndex:idx_collection_gifs_pair,priority:1" json:"collection_id"`
	GifID        int64     `gorm:"not null;uniqueIndex:idx_collection_gifs_pair,priority:2;index" json:"gif_id"`
	Position     int64     `gorm:"not null;default:0" json:"position"`
	CreatedAt    time.Time `json:"created_at"`
}
