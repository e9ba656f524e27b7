package media

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmdetailing/ssm-backend/pkg/db/dbtest"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

const mediaAssetsDDL = `CREATE TABLE media_assets (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	gcs_key TEXT NOT NULL UNIQUE,
	file_name TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	public_url TEXT NOT NULL,
	status TEXT NOT NULL,
	uploaded_at DATETIME,
	deleted_at DATETIME,
	created_at DATETIME
)`

func TestRepositoryLifecycle(t *testing.T) {
	conn := dbtest.Open(t, mediaAssetsDDL)
	repo := NewRepository(conn)
	ctx := context.Background()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	stale := &models.MediaAsset{Kind: enums.MediaKindVideo, GCSKey: "media/video/a/a.mp4", FileName: "a.mp4", MimeType: "video/mp4",
		SizeBytes: 1, PublicURL: "u/a", Status: enums.MediaStatusPending, CreatedAt: old}
	fresh := &models.MediaAsset{Kind: enums.MediaKindVideo, GCSKey: "media/video/b/b.mp4", FileName: "b.mp4", MimeType: "video/mp4",
		SizeBytes: 1, PublicURL: "u/b", Status: enums.MediaStatusPending, CreatedAt: old.AddDate(0, 0, 10)}
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))

	pending, err := repo.ListPendingBefore(ctx, old.AddDate(0, 0, 5), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, stale.ID, pending[0].ID)

	require.NoError(t, repo.MarkUploaded(ctx, fresh.ID, old))
	found, err := repo.FindByGCSKey(ctx, fresh.GCSKey)
	require.NoError(t, err)
	assert.Equal(t, enums.MediaStatusUploaded, found.Status)
	require.NotNil(t, found.UploadedAt)

	require.NoError(t, repo.MarkDeleted(ctx, fresh.ID, old))
	require.NoError(t, repo.MarkUploaded(ctx, fresh.ID, old))
	found, err = repo.FindByGCSKey(ctx, fresh.GCSKey)
	require.NoError(t, err)
	assert.Equal(t, enums.MediaStatusDeleted, found.Status, "deleted assets never come back")
}

func TestRepositoryCountReferences(t *testing.T) {
	conn := dbtest.Open(t,
		`CREATE TABLE video_reels (id TEXT PRIMARY KEY, video_url TEXT NOT NULL, thumbnail_url TEXT)`,
		`CREATE TABLE portfolio_items (id TEXT PRIMARY KEY, before_image_url TEXT NOT NULL, after_image_url TEXT NOT NULL)`,
		`CREATE TABLE testimonials (id TEXT PRIMARY KEY, image_url TEXT)`,
	)
	repo := NewRepository(conn)
	ctx := context.Background()
	shared := "https://cdn.test/media/image/x/shared.webp"

	require.NoError(t, conn.Exec(`INSERT INTO video_reels (id, video_url, thumbnail_url) VALUES ('r1', 'https://cdn.test/v.mp4', ?)`, shared).Error)
	require.NoError(t, conn.Exec(`INSERT INTO portfolio_items (id, before_image_url, after_image_url) VALUES ('p1', ?, 'https://cdn.test/after.webp')`, shared).Error)
	require.NoError(t, conn.Exec(`INSERT INTO testimonials (id, image_url) VALUES ('t1', ?)`, shared).Error)

	n, err := repo.CountReferences(ctx, shared)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.CountReferences(ctx, "https://cdn.test/v.mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountReferences(ctx, "https://cdn.test/orphan.webp")
	require.NoError(t, err)
	assert.Zero(t, n)
}
