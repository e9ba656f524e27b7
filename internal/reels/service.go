package reels

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/internal/feed"
	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

const (
	// MaxFeatured caps the reels shown on the landing page.
	MaxFeatured = 4
)

type Service interface {
	ListActive(ctx context.Context, category string) ([]ReelDTO, error)
	ListFeatured(ctx context.Context) ([]ReelDTO, error)
	Feed(ctx context.Context, category, sessionID string) (Feed, error)

	List(ctx context.Context) ([]ReelDTO, error)
	Create(ctx context.Context, req ReelRequest) (ReelDTO, error)
	Update(ctx context.Context, id uuid.UUID, req ReelRequest) (ReelDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Move(ctx context.Context, id uuid.UUID, direction string) ([]ReelDTO, error)
}

type repository interface {
	ListActive(ctx context.Context, category enums.ReelCategory) ([]models.VideoReel, error)
	ListFeatured(ctx context.Context, limit int) ([]models.VideoReel, error)
	ListAll(ctx context.Context) ([]models.VideoReel, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.VideoReel, error)
	NextOrderIndex(ctx context.Context) (int, error)
	CountFeatured(ctx context.Context, exclude uuid.UUID) (int, error)
	Create(ctx context.Context, reel *models.VideoReel) error
	Update(ctx context.Context, reel *models.VideoReel) error
	Delete(ctx context.Context, id uuid.UUID) error
	Move(ctx context.Context, id uuid.UUID, dir enums.MoveDirection) (bool, error)
}

// LikeLookup reports which of ids the viewer session has liked.
type LikeLookup interface {
	LikedAmong(ctx context.Context, sessionID string, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

// MediaRemover deletes objects this service uploaded; foreign URLs are ignored.
type MediaRemover interface {
	DeleteByURL(ctx context.Context, rawURL string) error
}

type ServiceParams struct {
	Repo   repository
	Likes  LikeLookup
	Media  MediaRemover
	Logger *logger.Logger
}

type service struct {
	repo  repository
	likes LikeLookup
	media MediaRemover
	logg  *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reels repository is required")
	}
	return &service{repo: params.Repo, likes: params.Likes, media: params.Media, logg: params.Logger}, nil
}

func parseCategoryFilter(raw string) (enums.ReelCategory, error) {
	c := strings.ToLower(strings.TrimSpace(raw))
	if c == "" || c == feed.CategoryAll {
		return "", nil
	}
	parsed, err := enums.ParseReelCategory(c)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	return parsed, nil
}

func (s *service) ListActive(ctx context.Context, category string) ([]ReelDTO, error) {
	filter, err := parseCategoryFilter(category)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListActive(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reels")
	}
	return fromModels(rows), nil
}

func (s *service) ListFeatured(ctx context.Context) ([]ReelDTO, error) {
	rows, err := s.repo.ListFeatured(ctx, MaxFeatured)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list featured reels")
	}
	return fromModels(rows), nil
}

// Feed classifies every active reel of category. Liked flags are filled
// when a session is known; a failed lookup leaves them false.
func (s *service) Feed(ctx context.Context, category, sessionID string) (Feed, error) {
	filter, err := parseCategoryFilter(category)
	if err != nil {
		return Feed{}, err
	}
	rows, err := s.repo.ListActive(ctx, filter)
	if err != nil {
		return Feed{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list feed reels")
	}

	reels := make([]feed.Reel, 0, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		reels = append(reels, toFeedReel(row))
		ids = append(ids, row.ID)
	}
	slides := feed.NewSlides(reels)

	if sessionID != "" && s.likes != nil && len(ids) > 0 {
		liked, err := s.likes.LikedAmong(ctx, sessionID, ids)
		if err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "feed liked lookup", err)
			}
		} else {
			for i := range slides {
				slides[i].Liked = liked[slides[i].ID]
			}
		}
	}

	selected := feed.CategoryAll
	if filter != "" {
		selected = filter.String()
	}
	return Feed{Category: selected, Categories: Categories(), Slides: slides}, nil
}

// Categories lists the feed filter chips, "all" first.
func Categories() []Category {
	out := []Category{{Value: feed.CategoryAll, Label: "Toate"}}
	for _, c := range enums.ReelCategories() {
		out = append(out, Category{Value: c.String(), Label: c.Label()})
	}
	return out
}

func (s *service) List(ctx context.Context) ([]ReelDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reels")
	}
	return fromModels(rows), nil
}

func (s *service) Create(ctx context.Context, req ReelRequest) (ReelDTO, error) {
	reel := &models.VideoReel{IsActive: true}
	if err := applyRequest(reel, req); err != nil {
		return ReelDTO{}, err
	}
	if err := s.checkFeaturedCap(ctx, reel, uuid.Nil); err != nil {
		return ReelDTO{}, err
	}
	next, err := s.repo.NextOrderIndex(ctx)
	if err != nil {
		return ReelDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "next order index")
	}
	reel.OrderIndex = next
	if err := s.repo.Create(ctx, reel); err != nil {
		return ReelDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reel")
	}
	return FromModel(*reel), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req ReelRequest) (ReelDTO, error) {
	reel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ReelDTO{}, notFoundOr(err, "load reel")
	}
	oldVideo, oldThumb := reel.VideoURL, deref(reel.ThumbnailURL)
	if err := applyRequest(reel, req); err != nil {
		return ReelDTO{}, err
	}
	if err := s.checkFeaturedCap(ctx, reel, reel.ID); err != nil {
		return ReelDTO{}, err
	}
	if err := s.repo.Update(ctx, reel); err != nil {
		return ReelDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update reel")
	}
	if oldVideo != reel.VideoURL {
		s.removeMedia(ctx, oldVideo)
	}
	if oldThumb != deref(reel.ThumbnailURL) {
		s.removeMedia(ctx, oldThumb)
	}
	return FromModel(*reel), nil
}

func (s *service) checkFeaturedCap(ctx context.Context, reel *models.VideoReel, exclude uuid.UUID) error {
	if !reel.IsFeatured {
		return nil
	}
	count, err := s.repo.CountFeatured(ctx, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count featured reels")
	}
	if count >= MaxFeatured {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("at most %d reels can be featured", MaxFeatured))
	}
	return nil
}

// Delete removes the reel with its likes and comments, then its owned media.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	reel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "load reel")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "delete reel")
	}
	s.removeMedia(ctx, reel.VideoURL)
	s.removeMedia(ctx, deref(reel.ThumbnailURL))
	return nil
}

// Move returns the full admin list after reordering.
func (s *service) Move(ctx context.Context, id uuid.UUID, direction string) ([]ReelDTO, error) {
	dir, err := enums.ParseMoveDirection(direction)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction")
	}
	if _, err := s.repo.Move(ctx, id, dir); err != nil {
		return nil, notFoundOr(err, "move reel")
	}
	return s.List(ctx)
}

func (s *service) removeMedia(ctx context.Context, rawURL string) {
	if s.media == nil || rawURL == "" {
		return
	}
	if err := s.media.DeleteByURL(ctx, rawURL); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "url", rawURL), "delete reel media", err)
	}
}

func applyRequest(reel *models.VideoReel, req ReelRequest) error {
	category, err := enums.ParseReelCategory(req.Category)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	title := strings.TrimSpace(req.Title)
	videoURL := strings.TrimSpace(req.VideoURL)
	if title == "" || videoURL == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title and video_url are required")
	}
	if req.Duration < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration must not be negative")
	}
	reel.Title = title
	reel.Description = strings.TrimSpace(req.Description)
	reel.VideoURL = videoURL
	reel.ThumbnailURL = trimmedPtr(req.ThumbnailURL)
	reel.TiktokURL = trimmedPtr(req.TiktokURL)
	reel.Category = category
	reel.Duration = req.Duration
	if req.IsActive != nil {
		reel.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		reel.IsFeatured = *req.IsFeatured
	}
	return nil
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func notFoundOr(err error, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "reel not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
