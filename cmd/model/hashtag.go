package model

import "time"

type Hashtag struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	UsageCount int64     `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

type GifHashtag struct {
	GifID     int64 `gorm:"primaryKey;autoIncrement:false"`
	HashtagID int64 `gorm:"primaryKey;autoIncrement:false;index"`
}
