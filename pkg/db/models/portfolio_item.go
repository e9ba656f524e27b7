package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

// PortfolioItem is a before/after pair rendered by the comparison slider.
type PortfolioItem struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title          string                  `gorm:"column:title;not null"`
	Category       enums.PortfolioCategory `gorm:"column:category;not null"`
	BeforeImageURL string                  `gorm:"column:before_image_url;not null"`
	AfterImageURL  string                  `gorm:"column:after_image_url;not null"`
	DisplayOrder   int                     `gorm:"column:display_order;not null"`
	IsFeatured     bool                    `gorm:"column:is_featured;not null"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PortfolioItem) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
