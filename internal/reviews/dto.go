package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
)

const (
	DefaultAuthor = "Anonim"

	DefaultWidgetLimit = 10
	MaxListLimit       = 100
	MaxAuthorLength    = 80
	MaxMessageLength   = 2000
)

// Status filters the admin list.
type Status string

const (
	StatusAll      Status = "all"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case "", StatusAll:
		return StatusAll, true
	case StatusPending, StatusApproved, StatusRejected:
		return Status(raw), true
	}
	return "", false
}

type ReviewDTO struct {
	ID         uuid.UUID  `json:"id"`
	AuthorName string     `json:"author_name"`
	Message    string     `json:"message"`
	Rating     int        `json:"rating"`
	IsApproved bool       `json:"is_approved"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type SubmitRequest struct {
	AuthorName string `json:"author_name" validate:"max=80"`
	Message    string `json:"message" validate:"required,max=2000"`
	Rating     int    `json:"rating"`
}

// StarCount is one bar of the rating distribution.
type StarCount struct {
	Star    int `json:"star"`
	Count   int `json:"count"`
	Percent int `json:"percent"`
}

// Summary aggregates approved reviews. Average is a one-decimal string.
type Summary struct {
	Count        int         `json:"count"`
	Average      string      `json:"average"`
	Distribution []StarCount `json:"distribution"`
}

func FromModel(m models.PublicReview) ReviewDTO {
	return ReviewDTO{
		ID:         m.ID,
		AuthorName: m.AuthorName,
		Message:    m.Message,
		Rating:     m.Rating,
		IsApproved: m.IsApproved,
		ReviewedAt: m.ReviewedAt,
		CreatedAt:  m.CreatedAt,
	}
}

func fromModels(rows []models.PublicReview) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
