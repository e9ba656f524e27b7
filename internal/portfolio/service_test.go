package portfolio

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmdetailing/ssm-backend/pkg/db/dbtest"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
)

type recordingRemover struct {
	urls []string
}

func (r *recordingRemover) DeleteByURL(_ context.Context, rawURL string) error {
	r.urls = append(r.urls, rawURL)
	return nil
}

func newTestService(t *testing.T) (Service, *Repository, *recordingRemover) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t, portfolioDDL))
	remover := &recordingRemover{}
	svc, err := NewService(ServiceParams{Repo: repo, Media: remover})
	require.NoError(t, err)
	return svc, repo, remover
}

func validRequest(title string) ItemRequest {
	return ItemRequest{
		Title:          title,
		Category:       string(enums.PortfolioCategoryHeadlights),
		BeforeImageURL: "/uploads/" + title + "-b.jpg",
		AfterImageURL:  "/uploads/" + title + "-a.jpg",
	}
}

func TestCreateAssignsNextDisplayOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validRequest("golf"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validRequest("passat"))
	require.NoError(t, err)

	assert.Equal(t, 1, first.DisplayOrder)
	assert.Equal(t, 2, second.DisplayOrder)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := validRequest("golf")
	req.Category = "Spălătorie"

	_, err := svc.Create(context.Background(), req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListTreatsToateAsAll(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, validRequest("golf"))
	require.NoError(t, err)
	star := validRequest("s-class")
	star.Category = string(enums.PortfolioCategoryStarlight)
	_, err = svc.Create(ctx, star)
	require.NoError(t, err)

	all, err := svc.List(ctx, "Toate")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.List(ctx, "Plafon Înstelat")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "s-class", filtered[0].Title)

	_, err = svc.List(ctx, "altceva")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGalleryReturnsFeaturedOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	featured := true
	for i := 0; i < 8; i++ {
		req := validRequest(uuid.NewString())
		req.IsFeatured = &featured
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, validRequest("hidden"))
	require.NoError(t, err)

	gallery, err := svc.Gallery(ctx)
	require.NoError(t, err)
	assert.Len(t, gallery, GalleryLimit)
	for _, item := range gallery {
		assert.True(t, item.IsFeatured)
	}
}

func TestDeleteRemovesImages(t *testing.T) {
	svc, _, remover := newTestService(t)
	ctx := context.Background()
	item, err := svc.Create(ctx, validRequest("golf"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, item.ID))
	assert.Equal(t, []string{item.BeforeImageURL, item.AfterImageURL}, remover.urls)

	err = svc.Delete(ctx, item.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateRemovesReplacedImageOnly(t *testing.T) {
	svc, _, remover := newTestService(t)
	ctx := context.Background()
	item, err := svc.Create(ctx, validRequest("golf"))
	require.NoError(t, err)

	req := validRequest("golf")
	req.AfterImageURL = "/uploads/golf-new.jpg"
	updated, err := svc.Update(ctx, item.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "/uploads/golf-new.jpg", updated.AfterImageURL)
	assert.Equal(t, []string{item.AfterImageURL}, remover.urls)
	assert.Equal(t, item.DisplayOrder, updated.DisplayOrder)
}

func TestCategoriesStartWithAll(t *testing.T) {
	svc, _, _ := newTestService(t)
	cats := svc.Categories()
	require.Len(t, cats, 5)
	assert.Equal(t, "Toate", cats[0])
}
