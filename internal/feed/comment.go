package feed

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultAuthor is shown for comments submitted without a name.
const DefaultAuthor = "Anonim"

var ErrEmptyComment = errors.New("comment body is empty")

type Comment struct {
	ID         uuid.UUID `json:"id"`
	ReelID     uuid.UUID `json:"video_reel_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentDraft is the unsent comment form.
type CommentDraft struct {
	Author string
	Body   string
}

// Normalize trims both fields. An empty body is rejected before any network
// call; a blank author becomes DefaultAuthor.
func (d CommentDraft) Normalize() (author, body string, err error) {
	body = strings.TrimSpace(d.Body)
	if body == "" {
		return "", "", ErrEmptyComment
	}
	author = strings.TrimSpace(d.Author)
	if author == "" {
		author = DefaultAuthor
	}
	return author, body, nil
}

// PrependComment keeps list newest-first.
func PrependComment(list []Comment, c Comment) []Comment {
	out := make([]Comment, 0, len(list)+1)
	out = append(out, c)
	return append(out, list...)
}
