package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssmdetailing/ssm-backend/internal/feed"
	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	"github.com/ssmdetailing/ssm-backend/pkg/pagination"
)

const (
	ActionLike          = "like"
	ActionUnlike        = "unlike"
	ActionComment       = "comment"
	ActionCommentDelete = "comment_delete"
	ActionReconcile     = "reconcile"

	// MaxBatchIDs bounds the batch counts endpoint.
	MaxBatchIDs = 100
)

type Service interface {
	Like(ctx context.Context, reelID uuid.UUID, sessionID string) (State, error)
	Unlike(ctx context.Context, reelID uuid.UUID, sessionID string) (State, error)
	Toggle(ctx context.Context, reelID uuid.UUID, sessionID string) (State, error)

	Counts(ctx context.Context, reelIDs []uuid.UUID) ([]ReelCounts, error)
	LikedBy(ctx context.Context, sessionID string) ([]uuid.UUID, error)
	LikedAmong(ctx context.Context, sessionID string, ids []uuid.UUID) (map[uuid.UUID]bool, error)

	ListComments(ctx context.Context, reelID uuid.UUID, params pagination.Params) (pagination.Page[feed.Comment], error)
	AddComment(ctx context.Context, reelID uuid.UUID, sessionID string, req CommentRequest) (CommentResult, error)
	DeleteComment(ctx context.Context, reelID, commentID uuid.UUID) (ReelCounts, error)

	Reconcile(ctx context.Context, reelID uuid.UUID) (ReelCounts, error)
	ReelIDs(ctx context.Context) ([]uuid.UUID, error)
	DailyTotals(ctx context.Context, day time.Time) ([]DailyTotal, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MutationRecorder counts mutations by action.
type MutationRecorder interface {
	IncMutation(action string)
}

type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Broker  Broker
	Metrics MutationRecorder
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	broker  Broker
	metrics MutationRecorder
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("engagement repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		broker:  params.Broker,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

var errMissingSession = pkgerrors.New(pkgerrors.CodeValidation, "session id is required")

// recount reads the presence tables and writes the reel's cached counters.
func recount(ctx context.Context, repo Repository, reelID uuid.UUID) (ReelCounts, error) {
	likes, err := repo.CountLikes(ctx, reelID)
	if err != nil {
		return ReelCounts{}, err
	}
	comments, err := repo.CountComments(ctx, reelID)
	if err != nil {
		return ReelCounts{}, err
	}
	if err := repo.UpdateCounters(ctx, reelID, likes, comments); err != nil {
		return ReelCounts{}, err
	}
	return ReelCounts{ReelID: reelID, Likes: likes, Comments: comments}, nil
}

func requireActiveReel(ctx context.Context, repo Repository, reelID uuid.UUID) error {
	if _, err := repo.FindActiveReel(ctx, reelID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reel not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reel")
	}
	return nil
}

// mutateLike runs op and the recount in one transaction. op returns the
// resulting liked flag.
func (s *service) mutateLike(ctx context.Context, reelID uuid.UUID, sessionID string, op func(repo Repository) (bool, string, error)) (State, error) {
	if sessionID == "" {
		return State{}, errMissingSession
	}
	var (
		state  State
		action string
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := requireActiveReel(ctx, repo, reelID); err != nil {
			return err
		}
		liked, act, err := op(repo)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write like")
		}
		counts, err := recount(ctx, repo, reelID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recount reel")
		}
		action = act
		state = State{ReelID: reelID, Counts: feed.Counts{Liked: liked, Likes: counts.Likes, Comments: counts.Comments}}
		return nil
	})
	if err != nil {
		return State{}, err
	}
	s.after(ctx, action, ReelCounts{ReelID: reelID, Likes: state.Likes, Comments: state.Comments})
	return state, nil
}

func (s *service) Like(ctx context.Context, reelID uuid.UUID, sessionID string) (State, error) {
	return s.mutateLike(ctx, reelID, sessionID, func(repo Repository) (bool, string, error) {
		_, err := repo.InsertLike(ctx, reelID, sessionID)
		return true, ActionLike, err
	})
}

func (s *service) Unlike(ctx context.Context, reelID uuid.UUID, sessionID string) (State, error) {
	return s.mutateLike(ctx, reelID, sessionID, func(repo Repository) (bool, string, error) {
		_, err := repo.DeleteLike(ctx, reelID, sessionID)
		return false, ActionUnlike, err
	})
}

func (s *service) Toggle(ctx context.Context, reelID uuid.UUID, sessionID string) (State, error) {
	return s.mutateLike(ctx, reelID, sessionID, func(repo Repository) (bool, string, error) {
		removed, err := repo.DeleteLike(ctx, reelID, sessionID)
		if err != nil {
			return false, "", err
		}
		if removed {
			return false, ActionUnlike, nil
		}
		_, err = repo.InsertLike(ctx, reelID, sessionID)
		return true, ActionLike, err
	})
}

// Counts keeps the order of reelIDs and skips unknown reels.
func (s *service) Counts(ctx context.Context, reelIDs []uuid.UUID) ([]ReelCounts, error) {
	if len(reelIDs) > MaxBatchIDs {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d ids per request", MaxBatchIDs))
	}
	byID, err := s.repo.CountsFor(ctx, reelIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count engagement")
	}
	out := make([]ReelCounts, 0, len(byID))
	seen := make(map[uuid.UUID]bool, len(reelIDs))
	for _, id := range reelIDs {
		c, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, c)
	}
	return out, nil
}

func (s *service) LikedBy(ctx context.Context, sessionID string) ([]uuid.UUID, error) {
	if sessionID == "" {
		return []uuid.UUID{}, nil
	}
	ids, err := s.repo.LikedBy(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list liked reels")
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (s *service) LikedAmong(ctx context.Context, sessionID string, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	if sessionID == "" || len(ids) == 0 {
		return out, nil
	}
	liked, err := s.repo.LikedAmong(ctx, sessionID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

func (s *service) ListComments(ctx context.Context, reelID uuid.UUID, params pagination.Params) (pagination.Page[feed.Comment], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[feed.Comment]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if err := requireActiveReel(ctx, s.repo, reelID); err != nil {
		return pagination.Page[feed.Comment]{}, err
	}
	rows, err := s.repo.ListComments(ctx, reelID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return pagination.Page[feed.Comment]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list comments")
	}
	comments := make([]feed.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, commentFromModel(row))
	}
	return pagination.Trim(comments, params.Limit, func(c feed.Comment) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	}), nil
}

func (s *service) AddComment(ctx context.Context, reelID uuid.UUID, sessionID string, req CommentRequest) (CommentResult, error) {
	if sessionID == "" {
		return CommentResult{}, errMissingSession
	}
	author, body, err := feed.CommentDraft{Author: req.AuthorName, Body: req.Content}.Normalize()
	if err != nil {
		if errors.Is(err, feed.ErrEmptyComment) {
			return CommentResult{}, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
		}
		return CommentResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid comment")
	}
	if utf8.RuneCountInString(author) > MaxAuthorLength {
		return CommentResult{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("author must be at most %d characters", MaxAuthorLength))
	}
	if utf8.RuneCountInString(body) > MaxContentLength {
		return CommentResult{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("content must be at most %d characters", MaxContentLength))
	}

	var result CommentResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := requireActiveReel(ctx, repo, reelID); err != nil {
			return err
		}
		row := &models.VideoReelComment{
			VideoReelID: reelID,
			AuthorName:  author,
			Content:     body,
			SessionID:   sessionID,
			CreatedAt:   s.now().UTC(),
		}
		if err := repo.InsertComment(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert comment")
		}
		counts, err := recount(ctx, repo, reelID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recount reel")
		}
		result = CommentResult{Comment: commentFromModel(*row), Counts: counts}
		return nil
	})
	if err != nil {
		return CommentResult{}, err
	}
	s.after(ctx, ActionComment, result.Counts)
	return result, nil
}

// DeleteComment is admin moderation; the reel may be inactive.
func (s *service) DeleteComment(ctx context.Context, reelID, commentID uuid.UUID) (ReelCounts, error) {
	var counts ReelCounts
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		comment, err := repo.FindComment(ctx, commentID)
		if err != nil || comment.VideoReelID != reelID {
			if err == nil || db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load comment")
		}
		if err := repo.DeleteComment(ctx, commentID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete comment")
		}
		counts, err = recount(ctx, repo, reelID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recount reel")
		}
		return nil
	})
	if err != nil {
		return ReelCounts{}, err
	}
	s.after(ctx, ActionCommentDelete, counts)
	return counts, nil
}

// Reconcile rewrites a reel's cached counters from the presence tables.
func (s *service) Reconcile(ctx context.Context, reelID uuid.UUID) (ReelCounts, error) {
	var counts ReelCounts
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		counts, err = recount(ctx, s.repo.WithTx(tx), reelID)
		return err
	})
	return counts, err
}

func (s *service) ReelIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListReelIDs(ctx)
}

// DailyTotals covers the UTC day containing day.
func (s *service) DailyTotals(ctx context.Context, day time.Time) ([]DailyTotal, error) {
	day = day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return s.repo.DailyTotals(ctx, from, from.AddDate(0, 0, 1))
}

// after records the mutation and publishes it; neither can fail the request.
func (s *service) after(ctx context.Context, action string, counts ReelCounts) {
	if s.metrics != nil {
		s.metrics.IncMutation(action)
	}
	if s.broker == nil {
		return
	}
	payload, err := json.Marshal(Event{
		Type:     EventUpdated,
		Action:   action,
		ReelID:   counts.ReelID,
		Likes:    counts.Likes,
		Comments: counts.Comments,
		At:       s.now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.broker.Publish(ctx, Channel, string(payload)); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "reel_id", counts.ReelID.String()), "publish engagement event", err)
	}
}
