package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmdetailing/ssm-backend/pkg/db/dbtest"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
)

const reviewsDDL = `CREATE TABLE public_reviews (
	id TEXT PRIMARY KEY,
	author_name TEXT NOT NULL DEFAULT 'Anonim',
	message TEXT NOT NULL,
	rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	is_approved BOOLEAN NOT NULL DEFAULT 0,
	reviewed_at DATETIME,
	created_at DATETIME,
	updated_at DATETIME
)`

func TestRepositoryHistogramCountsApprovedOnly(t *testing.T) {
	repo := NewRepository(dbtest.Open(t, reviewsDDL))
	ctx := context.Background()
	for _, r := range []models.PublicReview{
		{AuthorName: "A", Message: "m", Rating: 5, IsApproved: true},
		{AuthorName: "B", Message: "m", Rating: 5, IsApproved: true},
		{AuthorName: "C", Message: "m", Rating: 4, IsApproved: true},
		{AuthorName: "D", Message: "m", Rating: 1, IsApproved: false},
	} {
		row := r
		require.NoError(t, repo.Create(ctx, &row))
	}

	hist, err := repo.ApprovedHistogram(ctx)
	require.NoError(t, err)
	got := map[int]int{}
	for _, h := range hist {
		got[h.Rating] = h.Count
	}
	assert.Equal(t, map[int]int{5: 2, 4: 1}, got)
}

func TestRepositoryDeleteRejectedBefore(t *testing.T) {
	repo := NewRepository(dbtest.Open(t, reviewsDDL))
	ctx := context.Background()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	rejectedOld := &models.PublicReview{AuthorName: "A", Message: "m", Rating: 2, ReviewedAt: &old}
	rejectedNew := &models.PublicReview{AuthorName: "B", Message: "m", Rating: 2, ReviewedAt: &recent}
	pending := &models.PublicReview{AuthorName: "C", Message: "m", Rating: 3}
	approved := &models.PublicReview{AuthorName: "D", Message: "m", Rating: 5, IsApproved: true, ReviewedAt: &old}
	for _, r := range []*models.PublicReview{rejectedOld, rejectedNew, pending, approved} {
		require.NoError(t, repo.Create(ctx, r))
	}

	n, err := repo.DeleteRejectedBefore(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindByID(ctx, rejectedOld.ID)
	assert.Error(t, err)
	_, err = repo.FindByID(ctx, pending.ID)
	assert.NoError(t, err)
}
