package model

import "time"

type User struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	Username           string    `gorm:"size:30;not null;uniqueIndex" json:"username"`
	Email              string    `gorm:"size:255;not null;uniqueIndex" json:"-"`
	PasswordDigest     string    `gorm:"size:255;not null" json:"-"`
	DisplayName        string    `gorm:"size:50" json:"display_name"`
	Bio                string    `gorm:"size:500" json:"bio"`
	AvatarURL          string    `gorm:"size:512" json:"avatar_url"`
	GifsCount          int64     `gorm:"not null;default:0" json:"gifs_count"`
	FollowersCount     int64     `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount     int64     `gorm:"not null;default:0" json:"following_count"`
	TotalLikesReceived int64     `gorm:"not null;default:0" json:"total_likes_received"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// JwtDenylist holds revoked token ids until they would have expired anyway.
type JwtDenylist struct {
	ID        int64     `gorm:"primaryKey"`
	Jti       string    `gorm:"size:64;not null;uniqueIndex"`
	Exp       time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (JwtDenylist) TableName() string {
	return "jwt_denylists"
}
