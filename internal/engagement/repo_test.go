package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmdetailing/ssm-backend/pkg/db/dbtest"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

func TestRepositoryLikePresence(t *testing.T) {
	conn := dbtest.Open(t, engagementDDL...)
	repo := NewRepository(conn)
	ctx := context.Background()
	reel := &models.VideoReel{Title: "r", VideoURL: "/r.mp4", Category: enums.ReelCategoryExterior, IsActive: true}
	require.NoError(t, conn.Create(reel).Error)

	inserted, err := repo.InsertLike(ctx, reel.ID, "s1")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertLike(ctx, reel.ID, "s1")
	require.NoError(t, err)
	assert.False(t, inserted)

	has, err := repo.HasLike(ctx, reel.ID, "s1")
	require.NoError(t, err)
	assert.True(t, has)

	removed, err := repo.DeleteLike(ctx, reel.ID, "s1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteLike(ctx, reel.ID, "s1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRepositoryDailyTotals(t *testing.T) {
	conn := dbtest.Open(t, engagementDDL...)
	repo := NewRepository(conn)
	ctx := context.Background()
	quiet := &models.VideoReel{Title: "q", VideoURL: "/q.mp4", Category: enums.ReelCategoryInterior, IsActive: true}
	busy := &models.VideoReel{Title: "b", VideoURL: "/b.mp4", Category: enums.ReelCategoryInterior, IsActive: true}
	require.NoError(t, conn.Create(quiet).Error)
	require.NoError(t, conn.Create(busy).Error)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	likes := []models.VideoReelLike{
		{VideoReelID: busy.ID, SessionID: "a", CreatedAt: day.Add(2 * time.Hour)},
		{VideoReelID: busy.ID, SessionID: "b", CreatedAt: day.Add(23 * time.Hour)},
		{VideoReelID: busy.ID, SessionID: "c", CreatedAt: day.Add(-time.Hour)},
	}
	require.NoError(t, conn.Create(&likes).Error)
	require.NoError(t, conn.Create(&models.VideoReelComment{
		VideoReelID: busy.ID, AuthorName: "Ion", Content: "top", SessionID: "a", CreatedAt: day.Add(time.Hour),
	}).Error)

	totals, err := repo.DailyTotals(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, totals, 2)

	byReel := map[uuid.UUID]DailyTotal{}
	for _, total := range totals {
		byReel[total.ReelID] = total
	}
	assert.Equal(t, DailyTotal{ReelID: busy.ID, Likes: 2, Comments: 1}, byReel[busy.ID])
	assert.Equal(t, DailyTotal{ReelID: quiet.ID}, byReel[quiet.ID])
}
