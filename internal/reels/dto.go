package reels

import (
	"time"

	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/internal/feed"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

type ReelDTO struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	VideoURL      string             `json:"video_url"`
	ThumbnailURL  *string            `json:"thumbnail_url,omitempty"`
	TiktokURL     *string            `json:"tiktok_url,omitempty"`
	Category      enums.ReelCategory `json:"category"`
	LikesCount    int                `json:"likes_count"`
	CommentsCount int                `json:"comments_count"`
	Duration      int                `json:"duration"`
	OrderIndex    int                `json:"order_index"`
	IsActive      bool               `json:"is_active"`
	IsFeatured    bool               `json:"is_featured"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ReelRequest is the admin create/update payload.
type ReelRequest struct {
	Title        string  `json:"title" validate:"required,max=160"`
	Description  string  `json:"description" validate:"max=2000"`
	VideoURL     string  `json:"video_url" validate:"required,max=1000"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,max=1000"`
	TiktokURL    *string `json:"tiktok_url" validate:"omitempty,url,max=1000"`
	Category     string  `json:"category" validate:"required"`
	Duration     int     `json:"duration" validate:"min=0"`
	IsActive     *bool   `json:"is_active"`
	IsFeatured   *bool   `json:"is_featured"`
}

type MoveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// Feed is the response of the public feed endpoint.
type Feed struct {
	Category   string       `json:"category"`
	Categories []Category   `json:"categories"`
	Slides     []feed.Slide `json:"slides"`
}

// Category is a feed filter chip.
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func FromModel(m models.VideoReel) ReelDTO {
	return ReelDTO{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		VideoURL:      m.VideoURL,
		ThumbnailURL:  m.ThumbnailURL,
		TiktokURL:     m.TiktokURL,
		Category:      m.Category,
		LikesCount:    m.LikesCount,
		CommentsCount: m.CommentsCount,
		Duration:      m.Duration,
		OrderIndex:    m.OrderIndex,
		IsActive:      m.IsActive,
		IsFeatured:    m.IsFeatured,
		CreatedAt:     m.CreatedAt,
	}
}

func fromModels(rows []models.VideoReel) []ReelDTO {
	out := make([]ReelDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

func toFeedReel(m models.VideoReel) feed.Reel {
	return feed.Reel{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		VideoURL:      m.VideoURL,
		ThumbnailURL:  m.ThumbnailURL,
		TiktokURL:     m.TiktokURL,
		Category:      m.Category,
		Duration:      m.Duration,
		OrderIndex:    m.OrderIndex,
		LikesCount:    m.LikesCount,
		CommentsCount: m.CommentsCount,
	}
}
