package portfolio

import (
	"time"

	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

// ItemDTO is a before/after pair as rendered by the comparison slider.
type ItemDTO struct {
	ID             uuid.UUID               `json:"id"`
	Title          string                  `json:"title"`
	Category       enums.PortfolioCategory `json:"category"`
	BeforeImageURL string                  `json:"before_image_url"`
	AfterImageURL  string                  `json:"after_image_url"`
	DisplayOrder   int                     `json:"display_order"`
	IsFeatured     bool                    `json:"is_featured"`
	CreatedAt      time.Time               `json:"created_at"`
}

// ItemRequest is the admin create/update payload.
type ItemRequest struct {
	Title          string `json:"title" validate:"required,max=160"`
	Category       string `json:"category" validate:"required"`
	BeforeImageURL string `json:"before_image_url" validate:"required,max=1000"`
	AfterImageURL  string `json:"after_image_url" validate:"required,max=1000"`
	DisplayOrder   *int   `json:"display_order" validate:"omitempty,min=0"`
	IsFeatured     *bool  `json:"is_featured"`
}

func FromModel(m models.PortfolioItem) ItemDTO {
	return ItemDTO{
		ID:             m.ID,
		Title:          m.Title,
		Category:       m.Category,
		BeforeImageURL: m.BeforeImageURL,
		AfterImageURL:  m.AfterImageURL,
		DisplayOrder:   m.DisplayOrder,
		IsFeatured:     m.IsFeatured,
		CreatedAt:      m.CreatedAt,
	}
}

func fromModels(rows []models.PortfolioItem) []ItemDTO {
	out := make([]ItemDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
