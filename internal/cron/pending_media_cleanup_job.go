package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

const (
	pendingMediaRetentionDays = 7
	pendingMediaBatchSize     = 200
)

type pendingMediaRepo interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.MediaAsset, error)
	MarkDeleted(ctx context.Context, id uuid.UUID, at time.Time) error
}

type objectDeleter interface {
	Delete(ctx context.Context, key string) error
}

type PendingMediaCleanupJobParams struct {
	Logger        *logger.Logger
	MediaRepo     pendingMediaRepo
	Store         objectDeleter
	RetentionDays int
	BatchSize     int
}

// NewPendingMediaCleanupJob removes uploads that never left the pending state.
func NewPendingMediaCleanupJob(params PendingMediaCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.MediaRepo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = pendingMediaRetentionDays
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = pendingMediaBatchSize
	}
	return &pendingMediaCleanupJob{
		logg:          params.Logger,
		repo:          params.MediaRepo,
		store:         params.Store,
		retentionDays: retention,
		batchSize:     batch,
		now:           time.Now,
	}, nil
}

type pendingMediaCleanupJob struct {
	logg          *logger.Logger
	repo          pendingMediaRepo
	store         objectDeleter
	retentionDays int
	batchSize     int
	now           func() time.Time
}

func (j *pendingMediaCleanupJob) Name() string { return "pending-media-cleanup" }

// Run handles one batch per cycle; a failed asset stays pending and is
// retried next cycle.
func (j *pendingMediaCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.AddDate(0, 0, -j.retentionDays)
	rows, err := j.repo.ListPendingBefore(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("query pending media: %w", err)
	}

	var (
		errs    error
		deleted int
	)
	for _, row := range rows {
		if err := j.store.Delete(ctx, row.GCSKey); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete object %s: %w", row.GCSKey, err))
			continue
		}
		if err := j.repo.MarkDeleted(ctx, row.ID, now); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark media %s deleted: %w", row.ID, err))
			continue
		}
		deleted++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":           cutoff,
		"retention_days":   j.retentionDays,
		"media_candidates": len(rows),
		"media_deleted":    deleted,
	})
	j.logg.Info(logCtx, "pending media cleanup complete")
	return errs
}
