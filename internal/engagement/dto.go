package engagement

import (
	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/internal/feed"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
)

const (
	MaxAuthorLength  = 60
	MaxContentLength = 500
)

// State is the response of every like mutation.
type State struct {
	ReelID uuid.UUID `json:"reel_id"`
	feed.Counts
}

// ReelCounts are the authoritative totals of one reel.
type ReelCounts struct {
	ReelID   uuid.UUID `json:"reel_id"`
	Likes    int       `json:"likes_count"`
	Comments int       `json:"comments_count"`
}

type CommentRequest struct {
	AuthorName string `json:"author_name" validate:"max=60"`
	Content    string `json:"content" validate:"required,max=500"`
}

// CommentResult carries the stored comment and the new totals.
type CommentResult struct {
	Comment feed.Comment `json:"comment"`
	Counts  ReelCounts   `json:"counts"`
}

// DailyTotal is the per-reel activity of one day.
type DailyTotal struct {
	ReelID   uuid.UUID
	Likes    int
	Comments int
}

func commentFromModel(m models.VideoReelComment) feed.Comment {
	return feed.Comment{
		ID:         m.ID,
		ReelID:     m.VideoReelID,
		AuthorName: m.AuthorName,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}
