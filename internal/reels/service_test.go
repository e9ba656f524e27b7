package reels

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmdetailing/ssm-backend/internal/feed"
	"github.com/ssmdetailing/ssm-backend/pkg/db/dbtest"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
)

type stubLikes struct {
	liked map[uuid.UUID]bool
	calls int
}

func (s *stubLikes) LikedAmong(_ context.Context, _ string, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	s.calls++
	out := map[uuid.UUID]bool{}
	for _, id := range ids {
		if s.liked[id] {
			out[id] = true
		}
	}
	return out, nil
}

type recordingRemover struct{ urls []string }

func (r *recordingRemover) DeleteByURL(_ context.Context, rawURL string) error {
	r.urls = append(r.urls, rawURL)
	return nil
}

func newTestService(t *testing.T) (Service, *stubLikes, *recordingRemover) {
	t.Helper()
	likes := &stubLikes{liked: map[uuid.UUID]bool{}}
	remover := &recordingRemover{}
	svc, err := NewService(ServiceParams{Repo: NewRepository(dbtest.Open(t, reelsDDL)), Likes: likes, Media: remover})
	require.NoError(t, err)
	return svc, likes, remover
}

func reelRequest(title, category, videoURL string) ReelRequest {
	return ReelRequest{Title: title, VideoURL: videoURL, Category: category, Duration: 30}
}

func TestCreateOrderIndexStartsAtZero(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, reelRequest("Starlight S-Class", "starlight", "/uploads/a.mp4"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, reelRequest("Interior X5", "interior", "/uploads/b.mp4"))
	require.NoError(t, err)

	assert.Equal(t, 0, first.OrderIndex)
	assert.Equal(t, 1, second.OrderIndex)
	assert.True(t, first.IsActive)
}

func TestFeaturedCap(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	featured := true

	var ids []uuid.UUID
	for i := 0; i < MaxFeatured; i++ {
		req := reelRequest("r", "funny", "/uploads/r.mp4")
		req.IsFeatured = &featured
		created, err := svc.Create(ctx, req)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	req := reelRequest("fifth", "funny", "/uploads/f.mp4")
	req.IsFeatured = &featured
	_, err := svc.Create(ctx, req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	editReq := reelRequest("renamed", "funny", "/uploads/r.mp4")
	editReq.IsFeatured = &featured
	_, err = svc.Update(ctx, ids[0], editReq)
	assert.NoError(t, err, "editing an already featured reel is allowed")

	list, err := svc.ListFeatured(ctx)
	require.NoError(t, err)
	assert.Len(t, list, MaxFeatured)
}

func TestFeedClassifiesAndMarksLiked(t *testing.T) {
	svc, likes, _ := newTestService(t)
	ctx := context.Background()

	local, err := svc.Create(ctx, reelRequest("Local", "interior", "/uploads/local.mp4"))
	require.NoError(t, err)
	tiktok, err := svc.Create(ctx, reelRequest("TikTok", "interior", "https://www.tiktok.com/@stefanmarian66/video/123"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, reelRequest("Funny", "funny", "https://youtu.be/abcdefghijk"))
	require.NoError(t, err)
	likes.liked[tiktok.ID] = true

	out, err := svc.Feed(ctx, "interior", "session-1")
	require.NoError(t, err)
	assert.Equal(t, "interior", out.Category)
	require.Len(t, out.Slides, 2)
	assert.Equal(t, local.ID, out.Slides[0].ID)
	assert.Equal(t, feed.SourceLocal, out.Slides[0].Source.Kind)
	assert.True(t, out.Slides[0].Sequenced)
	assert.False(t, out.Slides[0].Liked)
	assert.Equal(t, feed.SourceTikTok, out.Slides[1].Source.Kind)
	assert.True(t, out.Slides[1].Liked)

	anon, err := svc.Feed(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, feed.CategoryAll, anon.Category)
	assert.Len(t, anon.Slides, 3)
	assert.Equal(t, 1, likes.calls, "no lookup without a session")
	assert.Len(t, anon.Categories, 5)

	_, err = svc.Feed(ctx, "politics", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteRemovesOwnedMedia(t *testing.T) {
	svc, _, remover := newTestService(t)
	ctx := context.Background()
	thumb := "/uploads/thumb.jpg"
	req := reelRequest("x", "exterior", "/uploads/x.mp4")
	req.ThumbnailURL = &thumb
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, []string{"/uploads/x.mp4", "/uploads/thumb.jpg"}, remover.urls)

	err = svc.Delete(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestMoveReturnsReorderedList(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a, err := svc.Create(ctx, reelRequest("a", "interior", "/a.mp4"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, reelRequest("b", "interior", "/b.mp4"))
	require.NoError(t, err)

	list, err := svc.Move(ctx, a.ID, "down")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Title)
	assert.Equal(t, "a", list[1].Title)

	_, err = svc.Move(ctx, a.ID, "sideways")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
