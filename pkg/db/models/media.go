package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

// MediaAsset tracks an object this service wrote to storage.
type MediaAsset struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind       enums.MediaKind   `gorm:"column:kind;not null"`
	GCSKey     string            `gorm:"column:gcs_key;not null;unique"`
	FileName   string            `gorm:"column:file_name;not null"`
	MimeType   string            `gorm:"column:mime_type;not null"`
	SizeBytes  int64             `gorm:"column:size_bytes;not null"`
	PublicURL  string            `gorm:"column:public_url;not null"`
	Status     enums.MediaStatus `gorm:"column:status;not null"`
	UploadedAt *time.Time        `gorm:"column:uploaded_at"`
	DeletedAt  *time.Time        `gorm:"column:deleted_at"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (MediaAsset) TableName() string { return "media_assets" }

func (m *MediaAsset) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
