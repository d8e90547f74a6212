package model

import "time"

// Follow FollowerID 关注了 FollowingID
type Follow struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	FollowerID  int64     `gorm:"not null;uniqueIndex:idx_follows_pair,priority:1" json:"follower_id"`
	FollowingID int64     `gorm:"not null;uniqueIndex:idx_follows_pair,priority:2;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
