package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

// VideoReel is a short vertical clip shown in the reel feed.
type VideoReel struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string             `gorm:"column:title;not null"`
	Description   string             `gorm:"column:description;not null"`
	VideoURL      string             `gorm:"column:video_url;not null"`
	ThumbnailURL  *string            `gorm:"column:thumbnail_url"`
	TiktokURL     *string            `gorm:"column:tiktok_url"`
	Category      enums.ReelCategory `gorm:"column:category;not null"`
	LikesCount    int                `gorm:"column:likes_count;not null"`
	CommentsCount int                `gorm:"column:comments_count;not null"`
	Duration      int                `gorm:"column:duration;not null"`
	OrderIndex    int                `gorm:"column:order_index;not null"`
	IsActive      bool               `gorm:"column:is_active;not null"`
	IsFeatured    bool               `gorm:"column:is_featured;not null"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *VideoReel) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// VideoReelLike is a presence row: one per (reel, session).
type VideoReelLike struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VideoReelID uuid.UUID `gorm:"column:video_reel_id;type:uuid;not null;uniqueIndex:video_reel_likes_reel_session_key"`
	SessionID   string    `gorm:"column:session_id;not null;uniqueIndex:video_reel_likes_reel_session_key"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *VideoReelLike) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

type VideoReelComment struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VideoReelID uuid.UUID `gorm:"column:video_reel_id;type:uuid;not null;index"`
	AuthorName  string    `gorm:"column:author_name;not null"`
	Content     string    `gorm:"column:content;not null"`
	SessionID   string    `gorm:"column:session_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *VideoReelComment) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
