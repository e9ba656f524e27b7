package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterToggleAndRollback(t *testing.T) {
	c := NewCounter(Counts{Likes: 3, Comments: 1})

	pending := c.ToggleLike()
	assert.Equal(t, Counts{Liked: true, Likes: 4, Comments: 1}, c.State())
	assert.Equal(t, Counts{Likes: 3, Comments: 1}, pending)

	c.Rollback(pending)
	assert.Equal(t, Counts{Likes: 3, Comments: 1}, c.State())
}

func TestCounterNeverNegative(t *testing.T) {
	c := NewCounter(Counts{Liked: true, Likes: 0})
	c.ToggleLike()
	assert.Equal(t, 0, c.State().Likes)
	assert.False(t, c.State().Liked)
}

func TestCounterConfirm(t *testing.T) {
	c := NewCounter(Counts{})
	c.ToggleLike()
	c.Confirm(Counts{Liked: true, Likes: 12, Comments: 4})
	assert.Equal(t, Counts{Liked: true, Likes: 12, Comments: 4}, c.State())
}

func TestCommentDraft(t *testing.T) {
	_, _, err := CommentDraft{Author: "Ion", Body: "   "}.Normalize()
	assert.ErrorIs(t, err, ErrEmptyComment)

	author, body, err := CommentDraft{Author: "  ", Body: " Super treabă! "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, DefaultAuthor, author)
	assert.Equal(t, "Super treabă!", body)

	list := PrependComment([]Comment{{Content: "vechi"}}, Comment{Content: "nou"})
	assert.Equal(t, "nou", list[0].Content)
	assert.Equal(t, "vechi", list[1].Content)
}
