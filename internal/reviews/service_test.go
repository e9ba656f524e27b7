package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmdetailing/ssm-backend/pkg/db/dbtest"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/pagination"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestService(t *testing.T) Service {
	t.Helper()
	clock := &stepClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	svc, err := NewService(NewRepository(dbtest.Open(t, reviewsDDL)), clock.now)
	require.NoError(t, err)
	return svc
}

func TestSubmitDefaultsAuthorAndStaysPending(t *testing.T) {
	svc := newTestService(t)
	review, err := svc.Submit(context.Background(), SubmitRequest{AuthorName: "   ", Message: " Foarte mulțumit ", Rating: 5})
	require.NoError(t, err)

	assert.Equal(t, DefaultAuthor, review.AuthorName)
	assert.Equal(t, "Foarte mulțumit", review.Message)
	assert.False(t, review.IsApproved)

	approved, err := svc.ListApproved(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, approved)
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitRequest{Message: "ok", Rating: 0})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Submit(ctx, SubmitRequest{Message: "ok", Rating: 6})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Submit(ctx, SubmitRequest{Message: "  ", Rating: 4})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestModerationFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, SubmitRequest{AuthorName: "Ion", Message: "Super", Rating: 5})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, SubmitRequest{AuthorName: "Ana", Message: "Bine", Rating: 4})
	require.NoError(t, err)
	third, err := svc.Submit(ctx, SubmitRequest{AuthorName: "Spam", Message: "x", Rating: 1})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	require.NotNil(t, approved.ReviewedAt)
	_, err = svc.Approve(ctx, second.ID)
	require.NoError(t, err)
	rejected, err := svc.Reject(ctx, third.ID)
	require.NoError(t, err)
	assert.False(t, rejected.IsApproved)
	assert.NotNil(t, rejected.ReviewedAt)

	list, err := svc.ListApproved(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	pendingPage, err := svc.List(ctx, StatusRejected, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, pendingPage.Items, 1)
	assert.Equal(t, third.ID, pendingPage.Items[0].ID)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, "4.5", summary.Average)

	require.NoError(t, svc.Delete(ctx, third.ID))
	err = svc.Delete(ctx, third.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestAdminListPaginates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.Submit(ctx, SubmitRequest{Message: "m", Rating: 3})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, StatusAll, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.List(ctx, StatusAll, pagination.Params{Limit: 3, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, next.Items, 2)
	assert.Empty(t, next.NextCursor)
	assert.True(t, next.Items[0].CreatedAt.Before(page.Items[2].CreatedAt))

	_, err = svc.List(ctx, StatusAll, pagination.Params{Cursor: "%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSummarize(t *testing.T) {
	empty := Summarize(nil)
	assert.Equal(t, "5.0", empty.Average)
	assert.Zero(t, empty.Count)
	require.Len(t, empty.Distribution, 5)
	assert.Equal(t, 5, empty.Distribution[0].Star)
	assert.Zero(t, empty.Distribution[0].Percent)

	s := Summarize([]RatingCount{{Rating: 5, Count: 2}, {Rating: 4, Count: 1}})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "4.7", s.Average)
	assert.Equal(t, StarCount{Star: 5, Count: 2, Percent: 67}, s.Distribution[0])
	assert.Equal(t, StarCount{Star: 4, Count: 1, Percent: 33}, s.Distribution[1])
	assert.Equal(t, StarCount{Star: 1, Count: 0, Percent: 0}, s.Distribution[4])
}
