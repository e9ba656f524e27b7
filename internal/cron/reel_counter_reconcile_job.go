package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/ssmdetailing/ssm-backend/internal/engagement"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

type counterReconciler interface {
	ReelIDs(ctx context.Context) ([]uuid.UUID, error)
	Reconcile(ctx context.Context, reelID uuid.UUID) (engagement.ReelCounts, error)
}

type ReelCounterReconcileJobParams struct {
	Logger     *logger.Logger
	Engagement counterReconciler
}

// NewReelCounterReconcileJob rebuilds cached reel counters from the like and
// comment tables.
func NewReelCounterReconcileJob(params ReelCounterReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Engagement == nil {
		return nil, fmt.Errorf("engagement service required")
	}
	return &reelCounterReconcileJob{logg: params.Logger, svc: params.Engagement}, nil
}

type reelCounterReconcileJob struct {
	logg *logger.Logger
	svc  counterReconciler
}

func (j *reelCounterReconcileJob) Name() string { return "reel-counter-reconcile" }

func (j *reelCounterReconcileJob) Run(ctx context.Context) error {
	ids, err := j.svc.ReelIDs(ctx)
	if err != nil {
		return fmt.Errorf("list reels: %w", err)
	}
	var (
		errs   error
		synced int
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		if _, err := j.svc.Reconcile(ctx, id); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reel %s: %w", id, err))
			continue
		}
		synced++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"reels":  len(ids),
		"synced": synced,
		"failed": len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "reel counters reconciled")
	return errs
}
