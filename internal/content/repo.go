package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
)

// Repository persists site settings, services, FAQs and testimonials.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSettings returns the oldest settings row.
func (r *Repository) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings inserts the row when it has no id yet, otherwise updates it.
func (r *Repository) SaveSettings(ctx context.Context, settings *models.SiteSettings) error {
	if settings.ID == uuid.Nil {
		return r.db.WithContext(ctx).Create(settings).Error
	}
	return r.db.WithContext(ctx).Save(settings).Error
}

func (r *Repository) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	return listOrdered[models.Service](ctx, r.db, activeOnly)
}

func (r *Repository) FindService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	return findByID[models.Service](ctx, r.db, id)
}

func (r *Repository) CreateService(ctx context.Context, svc *models.Service) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *Repository) UpdateService(ctx context.Context, svc *models.Service) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

func (r *Repository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.Service](ctx, r.db, id)
}

func (r *Repository) ListFAQs(ctx context.Context, activeOnly bool) ([]models.FAQItem, error) {
	return listOrdered[models.FAQItem](ctx, r.db, activeOnly)
}

func (r *Repository) FindFAQ(ctx context.Context, id uuid.UUID) (*models.FAQItem, error) {
	return findByID[models.FAQItem](ctx, r.db, id)
}

// CountFAQs is used as the display order of the next FAQ.
func (r *Repository) CountFAQs(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FAQItem{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *Repository) CreateFAQ(ctx context.Context, faq *models.FAQItem) error {
	return r.db.WithContext(ctx).Create(faq).Error
}

func (r *Repository) UpdateFAQ(ctx context.Context, faq *models.FAQItem) error {
	return r.db.WithContext(ctx).Save(faq).Error
}

func (r *Repository) DeleteFAQ(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.FAQItem](ctx, r.db, id)
}

func (r *Repository) ListTestimonials(ctx context.Context, activeOnly bool) ([]models.Testimonial, error) {
	return listOrdered[models.Testimonial](ctx, r.db, activeOnly)
}

func (r *Repository) FindTestimonial(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	return findByID[models.Testimonial](ctx, r.db, id)
}

func (r *Repository) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *Repository) UpdateTestimonial(ctx context.Context, t *models.Testimonial) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *Repository) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.Testimonial](ctx, r.db, id)
}

func listOrdered[T any](ctx context.Context, db *gorm.DB, activeOnly bool) ([]T, error) {
	var rows []T
	q := db.WithContext(ctx).Model(new(T))
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("display_order ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func findByID[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) (*T, error) {
	row := new(T)
	if err := db.WithContext(ctx).First(row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// deleteByID reports gorm.ErrRecordNotFound when nothing matched.
func deleteByID[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
