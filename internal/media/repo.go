package media

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

// Repository persists media_assets rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, asset *models.MediaAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *Repository) FindByGCSKey(ctx context.Context, gcsKey string) (*models.MediaAsset, error) {
	var m models.MediaAsset
	if err := r.db.WithContext(ctx).First(&m, "gcs_key = ?", gcsKey).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkUploaded moves a pending asset to uploaded; other states are left alone.
func (r *Repository) MarkUploaded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.MediaAsset{}).
		Where("id = ? AND status = ?", id, enums.MediaStatusPending).
		Updates(map[string]any{"status": enums.MediaStatusUploaded, "uploaded_at": at}).Error
}

func (r *Repository) MarkDeleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.MediaAsset{}).
		Where("id = ? AND status <> ?", id, enums.MediaStatusDeleted).
		Updates(map[string]any{"status": enums.MediaStatusDeleted, "deleted_at": at}).Error
}

// ListPendingBefore returns pending assets created before cutoff, oldest first.
func (r *Repository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.MediaAsset, error) {
	var rows []models.MediaAsset
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.MediaStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// CountReferences counts content rows still pointing at publicURL: reel
// videos and thumbnails, portfolio images and testimonial avatars.
func (r *Repository) CountReferences(ctx context.Context, publicURL string) (int64, error) {
	var total int64
	checks := []struct {
		model any
		where string
		args  []any
	}{
		{&models.VideoReel{}, "video_url = ? OR thumbnail_url = ?", []any{publicURL, publicURL}},
		{&models.PortfolioItem{}, "before_image_url = ? OR after_image_url = ?", []any{publicURL, publicURL}},
		{&models.Testimonial{}, "image_url = ?", []any{publicURL}},
	}
	for _, c := range checks {
		var n int64
		if err := r.db.WithContext(ctx).Model(c.model).Where(c.where, c.args...).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
