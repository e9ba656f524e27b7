package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/ssmdetailing/ssm-backend/pkg/db/types"
)

// Service is a detailing offering listed on the landing page.
type Service struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title        string             `gorm:"column:title;not null"`
	Description  string             `gorm:"column:description;not null"`
	Icon         string             `gorm:"column:icon;not null"`
	Features     dbtypes.StringList `gorm:"column:features;type:jsonb;not null"`
	Price        *string            `gorm:"column:price"`
	Duration     *string            `gorm:"column:duration"`
	DisplayOrder int                `gorm:"column:display_order;not null"`
	IsActive     bool               `gorm:"column:is_active;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

type FAQItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Question     string    `gorm:"column:question;not null"`
	Answer       string    `gorm:"column:answer;not null"`
	DisplayOrder int       `gorm:"column:display_order;not null"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (FAQItem) TableName() string { return "faq_items" }

func (f *FAQItem) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

// Testimonial is a curated quote shown in the landing page carousel.
type Testimonial struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Role         string    `gorm:"column:role;not null"`
	Content      string    `gorm:"column:content;not null"`
	Rating       int       `gorm:"column:rating;not null"`
	ImageURL     *string   `gorm:"column:image_url"`
	DisplayOrder int       `gorm:"column:display_order;not null"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Testimonial) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
