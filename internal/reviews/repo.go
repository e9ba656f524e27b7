package reviews

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/pagination"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RatingCount is one row of the approved rating histogram.
type RatingCount struct {
	Rating int
	Count  int
}

func (r *Repository) Create(ctx context.Context, review *models.PublicReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PublicReview, error) {
	var review models.PublicReview
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListApproved returns the newest approved reviews.
func (r *Repository) ListApproved(ctx context.Context, limit int) ([]models.PublicReview, error) {
	var rows []models.PublicReview
	err := r.db.WithContext(ctx).
		Where("is_approved = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// List pages through every review newest-first, fetching one extra row.
func (r *Repository) List(ctx context.Context, status Status, params pagination.Params) ([]models.PublicReview, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).Model(&models.PublicReview{})
	switch status {
	case StatusPending:
		q = q.Where("is_approved = ? AND reviewed_at IS NULL", false)
	case StatusApproved:
		q = q.Where("is_approved = ?", true)
	case StatusRejected:
		q = q.Where("is_approved = ? AND reviewed_at IS NOT NULL", false)
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.PublicReview
	err = q.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ApprovedHistogram counts approved reviews per rating.
func (r *Repository) ApprovedHistogram(ctx context.Context) ([]RatingCount, error) {
	var rows []RatingCount
	err := r.db.WithContext(ctx).
		Model(&models.PublicReview{}).
		Select("rating, COUNT(*) AS count").
		Where("is_approved = ?", true).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetApproval records the moderation decision.
func (r *Repository) SetApproval(ctx context.Context, id uuid.UUID, approved bool, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.PublicReview{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_approved": approved,
			"reviewed_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PublicReview{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRejectedBefore removes rejected reviews moderated before cutoff.
func (r *Repository) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_approved = ? AND reviewed_at IS NOT NULL AND reviewed_at < ?", false, cutoff).
		Delete(&models.PublicReview{})
	return res.RowsAffected, res.Error
}
