package reviews

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/pagination"
)

const emptyAverage = "5.0"

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (ReviewDTO, error)
	ListApproved(ctx context.Context, limit int) ([]ReviewDTO, error)
	Summary(ctx context.Context) (Summary, error)

	List(ctx context.Context, status Status, params pagination.Params) (pagination.Page[ReviewDTO], error)
	Approve(ctx context.Context, id uuid.UUID) (ReviewDTO, error)
	Reject(ctx context.Context, id uuid.UUID) (ReviewDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, review *models.PublicReview) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PublicReview, error)
	ListApproved(ctx context.Context, limit int) ([]models.PublicReview, error)
	List(ctx context.Context, status Status, params pagination.Params) ([]models.PublicReview, error)
	ApprovedHistogram(ctx context.Context) ([]RatingCount, error)
	SetApproval(ctx context.Context, id uuid.UUID, approved bool, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository
	now  func() time.Time
}

func NewService(repo repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository is required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

// Submit stores an unapproved review.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (ReviewDTO, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("message must be at most %d characters", MaxMessageLength))
	}
	author := strings.TrimSpace(req.AuthorName)
	if author == "" {
		author = DefaultAuthor
	}
	if utf8.RuneCountInString(author) > MaxAuthorLength {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("author must be at most %d characters", MaxAuthorLength))
	}

	review := &models.PublicReview{
		AuthorName: author,
		Message:    message,
		Rating:     req.Rating,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}
	return FromModel(*review), nil
}

func (s *service) ListApproved(ctx context.Context, limit int) ([]ReviewDTO, error) {
	if limit <= 0 {
		limit = DefaultWidgetLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	rows, err := s.repo.ListApproved(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list approved reviews")
	}
	return fromModels(rows), nil
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	hist, err := s.repo.ApprovedHistogram(ctx)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "review histogram")
	}
	return Summarize(hist), nil
}

// Summarize builds the aggregate from a rating histogram. Ratings outside
// 1..5 are ignored.
func Summarize(hist []RatingCount) Summary {
	perStar := map[int]int{}
	total, sum := 0, 0
	for _, h := range hist {
		if h.Rating < 1 || h.Rating > 5 || h.Count <= 0 {
			continue
		}
		perStar[h.Rating] += h.Count
		total += h.Count
		sum += h.Rating * h.Count
	}

	out := Summary{Count: total, Average: emptyAverage, Distribution: make([]StarCount, 0, 5)}
	if total > 0 {
		out.Average = decimal.NewFromInt(int64(sum)).
			Div(decimal.NewFromInt(int64(total))).
			Round(1).
			StringFixed(1)
	}
	for star := 5; star >= 1; star-- {
		count := perStar[star]
		percent := 0
		if total > 0 {
			percent = int(decimal.NewFromInt(int64(count * 100)).
				Div(decimal.NewFromInt(int64(total))).
				Round(0).
				IntPart())
		}
		out.Distribution = append(out.Distribution, StarCount{Star: star, Count: count, Percent: percent})
	}
	return out
}

func (s *service) List(ctx context.Context, status Status, params pagination.Params) (pagination.Page[ReviewDTO], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Page[ReviewDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, status, params)
	if err != nil {
		return pagination.Page[ReviewDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return pagination.Trim(fromModels(rows), params.Limit, func(r ReviewDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	}), nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (ReviewDTO, error) {
	return s.moderate(ctx, id, true)
}

func (s *service) Reject(ctx context.Context, id uuid.UUID) (ReviewDTO, error) {
	return s.moderate(ctx, id, false)
}

func (s *service) moderate(ctx context.Context, id uuid.UUID, approved bool) (ReviewDTO, error) {
	if err := s.repo.SetApproval(ctx, id, approved, s.now().UTC()); err != nil {
		return ReviewDTO{}, notFoundOr(err, "moderate review")
	}
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ReviewDTO{}, notFoundOr(err, "load review")
	}
	return FromModel(*review), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "delete review")
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
