package reels

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive orders by order_index; an empty category means all.
func (r *Repository) ListActive(ctx context.Context, category enums.ReelCategory) ([]models.VideoReel, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var rows []models.VideoReel
	if err := q.Order("order_index ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]models.VideoReel, error) {
	var rows []models.VideoReel
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("order_index ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]models.VideoReel, error) {
	var rows []models.VideoReel
	if err := r.db.WithContext(ctx).Order("order_index ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VideoReel, error) {
	var reel models.VideoReel
	if err := r.db.WithContext(ctx).First(&reel, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reel, nil
}

// NextOrderIndex is 0 for the first reel and max+1 afterwards.
func (r *Repository) NextOrderIndex(ctx context.Context) (int, error) {
	var next int
	err := r.db.WithContext(ctx).
		Model(&models.VideoReel{}).
		Select("COALESCE(MAX(order_index) + 1, 0)").
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// CountFeatured counts featured reels other than exclude.
func (r *Repository) CountFeatured(ctx context.Context, exclude uuid.UUID) (int, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.VideoReel{}).Where("is_featured = ?", true)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *Repository) Create(ctx context.Context, reel *models.VideoReel) error {
	return r.db.WithContext(ctx).Create(reel).Error
}

// Update writes the editable columns only; counters belong to engagement.
func (r *Repository) Update(ctx context.Context, reel *models.VideoReel) error {
	return r.db.WithContext(ctx).
		Model(reel).
		Select("title", "description", "video_url", "thumbnail_url", "tiktok_url", "category", "duration", "is_active", "is_featured", "updated_at").
		Updates(reel).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.VideoReel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Move swaps the reel with its neighbour in dir and renumbers every reel
// 0..n-1. Moving past either end leaves the order untouched but still
// normalises the numbering. It reports whether the reel moved.
func (r *Repository) Move(ctx context.Context, id uuid.UUID, dir enums.MoveDirection) (bool, error) {
	moved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.VideoReel
		if err := tx.Select("id", "order_index").Order("order_index ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
			return err
		}
		pos := -1
		for i, row := range rows {
			if row.ID == id {
				pos = i
				break
			}
		}
		if pos < 0 {
			return gorm.ErrRecordNotFound
		}

		target := pos - 1
		if dir == enums.MoveDown {
			target = pos + 1
		}
		if target >= 0 && target < len(rows) {
			rows[pos], rows[target] = rows[target], rows[pos]
			moved = true
		}

		for i, row := range rows {
			if row.OrderIndex == i {
				continue
			}
			if err := tx.Model(&models.VideoReel{}).Where("id = ?", row.ID).UpdateColumn("order_index", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return moved, err
}
