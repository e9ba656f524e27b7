package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

const reviewRetentionDays = 90

type rejectedReviewPurger interface {
	DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ReviewRetentionJobParams struct {
	Logger        *logger.Logger
	Reviews       rejectedReviewPurger
	RetentionDays int
}

// NewReviewRetentionJob purges rejected reviews once they age past the
// retention window.
func NewReviewRetentionJob(params ReviewRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reviews == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = reviewRetentionDays
	}
	return &reviewRetentionJob{
		logg:          params.Logger,
		repo:          params.Reviews,
		retentionDays: retention,
		now:           time.Now,
	}, nil
}

type reviewRetentionJob struct {
	logg          *logger.Logger
	repo          rejectedReviewPurger
	retentionDays int
	now           func() time.Time
}

func (j *reviewRetentionJob) Name() string { return "review-retention" }

func (j *reviewRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retentionDays)
	deleted, err := j.repo.DeleteRejectedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete rejected reviews: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retentionDays,
		"deleted":        deleted,
	})
	j.logg.Info(logCtx, "review retention complete")
	return nil
}
