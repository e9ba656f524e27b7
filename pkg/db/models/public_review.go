package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublicReview is a visitor-submitted review awaiting or past moderation.
type PublicReview struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorName string     `gorm:"column:author_name;not null"`
	Message    string     `gorm:"column:message;not null"`
	Rating     int        `gorm:"column:rating;not null"`
	IsApproved bool       `gorm:"column:is_approved;not null"`
	ReviewedAt *time.Time `gorm:"column:reviewed_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *PublicReview) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
