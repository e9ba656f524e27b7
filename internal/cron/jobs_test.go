package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/ssmdetailing/ssm-backend/internal/engagement"
	"github.com/ssmdetailing/ssm-backend/pkg/bigquery"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
)

var fixedNow = time.Date(2026, 3, 15, 4, 30, 0, 0, time.UTC)

type fakeReconciler struct {
	ids     []uuid.UUID
	failing map[uuid.UUID]bool
	seen    []uuid.UUID
}

func (f *fakeReconciler) ReelIDs(context.Context) ([]uuid.UUID, error) { return f.ids, nil }

func (f *fakeReconciler) Reconcile(_ context.Context, id uuid.UUID) (engagement.ReelCounts, error) {
	f.seen = append(f.seen, id)
	if f.failing[id] {
		return engagement.ReelCounts{}, errors.New("db down")
	}
	return engagement.ReelCounts{ReelID: id}, nil
}

func TestReelCounterReconcileContinuesPastFailures(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	svc := &fakeReconciler{ids: []uuid.UUID{a, b, c}, failing: map[uuid.UUID]bool{b: true}}
	job, err := NewReelCounterReconcileJob(ReelCounterReconcileJobParams{Logger: newTestLogger(), Engagement: svc})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), b.String())
	assert.Equal(t, []uuid.UUID{a, b, c}, svc.seen)
}

type fakePurger struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakePurger) DeleteRejectedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, f.err
}

func TestReviewRetentionUsesConfiguredWindow(t *testing.T) {
	repo := &fakePurger{deleted: 3}
	job, err := NewReviewRetentionJob(ReviewRetentionJobParams{Logger: newTestLogger(), Reviews: repo})
	require.NoError(t, err)
	job.(*reviewRetentionJob).now = func() time.Time { return fixedNow }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, fixedNow.AddDate(0, 0, -90), repo.cutoff)

	repo.err = errors.New("boom")
	assert.Error(t, job.Run(context.Background()))
}

type fakePendingRepo struct {
	rows    []models.MediaAsset
	cutoff  time.Time
	limit   int
	deleted []uuid.UUID
}

func (f *fakePendingRepo) ListPendingBefore(_ context.Context, cutoff time.Time, limit int) ([]models.MediaAsset, error) {
	f.cutoff = cutoff
	f.limit = limit
	return f.rows, nil
}

func (f *fakePendingRepo) MarkDeleted(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeDeleter struct {
	keys    []string
	failKey string
}

func (f *fakeDeleter) Delete(_ context.Context, key string) error {
	if key == f.failKey {
		return errors.New("storage unavailable")
	}
	f.keys = append(f.keys, key)
	return nil
}

func TestPendingMediaCleanupDeletesObjectsThenRows(t *testing.T) {
	stale := models.MediaAsset{ID: uuid.New(), GCSKey: "reels/a.mp4"}
	stuck := models.MediaAsset{ID: uuid.New(), GCSKey: "reels/b.mp4"}
	repo := &fakePendingRepo{rows: []models.MediaAsset{stale, stuck}}
	store := &fakeDeleter{failKey: "reels/b.mp4"}

	job, err := NewPendingMediaCleanupJob(PendingMediaCleanupJobParams{
		Logger:    newTestLogger(),
		MediaRepo: repo,
		Store:     store,
	})
	require.NoError(t, err)
	job.(*pendingMediaCleanupJob).now = func() time.Time { return fixedNow }

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), repo.cutoff)
	assert.Equal(t, pendingMediaBatchSize, repo.limit)
	assert.Equal(t, []string{"reels/a.mp4"}, store.keys)
	assert.Equal(t, []uuid.UUID{stale.ID}, repo.deleted)
}

func TestPendingMediaCleanupRequiresStore(t *testing.T) {
	_, err := NewPendingMediaCleanupJob(PendingMediaCleanupJobParams{Logger: newTestLogger(), MediaRepo: &fakePendingRepo{}})
	assert.Error(t, err)
}

type fakeTotals struct {
	days   []time.Time
	totals []engagement.DailyTotal
}

func (f *fakeTotals) DailyTotals(_ context.Context, day time.Time) ([]engagement.DailyTotal, error) {
	f.days = append(f.days, day)
	return f.totals, nil
}

type fakeWarehouse struct {
	rows  []bigquery.EngagementRow
	calls int
}

func (f *fakeWarehouse) ExportEngagement(_ context.Context, rows []bigquery.EngagementRow) error {
	f.calls++
	f.rows = append(f.rows, rows...)
	return nil
}

func TestReelEngagementExportShipsYesterdayOnce(t *testing.T) {
	reel := uuid.New()
	source := &fakeTotals{totals: []engagement.DailyTotal{{ReelID: reel, Likes: 4, Comments: 2}}}
	warehouse := &fakeWarehouse{}
	job, err := NewReelEngagementExportJob(ReelEngagementExportJobParams{
		Logger:     newTestLogger(),
		Engagement: source,
		Warehouse:  warehouse,
	})
	require.NoError(t, err)
	job.(*reelEngagementExportJob).now = func() time.Time { return fixedNow }

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 1, warehouse.calls)
	require.Len(t, source.days, 1)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), source.days[0])

	require.Len(t, warehouse.rows, 1)
	row := warehouse.rows[0]
	assert.Equal(t, civil.Date{Year: 2026, Month: time.March, Day: 14}, row.Day)
	assert.Equal(t, reel.String(), row.ReelID)
	assert.EqualValues(t, 4, row.Likes)
	assert.EqualValues(t, 2, row.Comments)
}
