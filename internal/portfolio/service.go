package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

// GalleryLimit caps the featured gallery on the landing page.
const GalleryLimit = 6

type Service interface {
	List(ctx context.Context, category string) ([]ItemDTO, error)
	Gallery(ctx context.Context) ([]ItemDTO, error)
	Categories() []string

	Create(ctx context.Context, req ItemRequest) (ItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, req ItemRequest) (ItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository interface {
	List(ctx context.Context, category enums.PortfolioCategory) ([]models.PortfolioItem, error)
	ListFeatured(ctx context.Context, limit int) ([]models.PortfolioItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PortfolioItem, error)
	MaxDisplayOrder(ctx context.Context) (int, error)
	Create(ctx context.Context, item *models.PortfolioItem) error
	Update(ctx context.Context, item *models.PortfolioItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MediaRemover deletes objects this service uploaded; foreign URLs are ignored.
type MediaRemover interface {
	DeleteByURL(ctx context.Context, rawURL string) error
}

type ServiceParams struct {
	Repo   repository
	Media  MediaRemover
	Logger *logger.Logger
}

type service struct {
	repo  repository
	media MediaRemover
	logg  *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("portfolio repository is required")
	}
	return &service{repo: params.Repo, media: params.Media, logg: params.Logger}, nil
}

// List accepts "Toate" or "" for every category.
func (s *service) List(ctx context.Context, category string) ([]ItemDTO, error) {
	var filter enums.PortfolioCategory
	if c := strings.TrimSpace(category); c != "" && c != enums.PortfolioCategoryAll {
		parsed, err := enums.ParsePortfolioCategory(c)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		filter = parsed
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list portfolio")
	}
	return fromModels(rows), nil
}

func (s *service) Gallery(ctx context.Context) ([]ItemDTO, error) {
	rows, err := s.repo.ListFeatured(ctx, GalleryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list gallery")
	}
	return fromModels(rows), nil
}

// Categories returns the public filter values, "Toate" first.
func (s *service) Categories() []string {
	out := []string{enums.PortfolioCategoryAll}
	for _, c := range enums.PortfolioCategories() {
		out = append(out, c.String())
	}
	return out
}

func (s *service) Create(ctx context.Context, req ItemRequest) (ItemDTO, error) {
	item := &models.PortfolioItem{}
	if err := applyRequest(item, req); err != nil {
		return ItemDTO{}, err
	}
	if req.DisplayOrder == nil {
		max, err := s.repo.MaxDisplayOrder(ctx)
		if err != nil {
			return ItemDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "next display order")
		}
		item.DisplayOrder = max + 1
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return ItemDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create portfolio item")
	}
	return FromModel(*item), nil
}

// Update removes replaced images that this service owns.
func (s *service) Update(ctx context.Context, id uuid.UUID, req ItemRequest) (ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ItemDTO{}, notFoundOr(err, "load portfolio item")
	}
	oldBefore, oldAfter := item.BeforeImageURL, item.AfterImageURL
	if err := applyRequest(item, req); err != nil {
		return ItemDTO{}, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return ItemDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update portfolio item")
	}
	if oldBefore != item.BeforeImageURL {
		s.removeMedia(ctx, oldBefore)
	}
	if oldAfter != item.AfterImageURL {
		s.removeMedia(ctx, oldAfter)
	}
	return FromModel(*item), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "load portfolio item")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "delete portfolio item")
	}
	s.removeMedia(ctx, item.BeforeImageURL)
	s.removeMedia(ctx, item.AfterImageURL)
	return nil
}

// removeMedia never fails the caller; orphans are swept by the cron worker.
func (s *service) removeMedia(ctx context.Context, rawURL string) {
	if s.media == nil || rawURL == "" {
		return
	}
	if err := s.media.DeleteByURL(ctx, rawURL); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "url", rawURL), "delete portfolio media", err)
	}
}

func applyRequest(item *models.PortfolioItem, req ItemRequest) error {
	category, err := enums.ParsePortfolioCategory(req.Category)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	title := strings.TrimSpace(req.Title)
	before := strings.TrimSpace(req.BeforeImageURL)
	after := strings.TrimSpace(req.AfterImageURL)
	if title == "" || before == "" || after == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title and both images are required")
	}
	item.Title = title
	item.Category = category
	item.BeforeImageURL = before
	item.AfterImageURL = after
	if req.DisplayOrder != nil {
		item.DisplayOrder = *req.DisplayOrder
	}
	if req.IsFeatured != nil {
		item.IsFeatured = *req.IsFeatured
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "portfolio item not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
