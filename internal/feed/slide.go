package feed

import (
	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

// Reel is the reel snapshot a feed is built from.
type Reel struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	VideoURL      string             `json:"video_url"`
	ThumbnailURL  *string            `json:"thumbnail_url,omitempty"`
	TiktokURL     *string            `json:"tiktok_url,omitempty"`
	Category      enums.ReelCategory `json:"category"`
	Duration      int                `json:"duration"`
	OrderIndex    int                `json:"order_index"`
	LikesCount    int                `json:"likes_count"`
	CommentsCount int                `json:"comments_count"`
}

// Slide is one page of the vertical feed.
type Slide struct {
	Reel
	Source    Source `json:"source"`
	Sequenced bool   `json:"sequenced"`
	Liked     bool   `json:"liked"`
}

// NewSlide classifies a reel's video URL.
func NewSlide(r Reel) Slide {
	src := Classify(r.VideoURL)
	return Slide{Reel: r, Source: src, Sequenced: src.Sequenced()}
}

// NewSlides keeps the input order.
func NewSlides(reels []Reel) []Slide {
	out := make([]Slide, 0, len(reels))
	for _, r := range reels {
		out = append(out, NewSlide(r))
	}
	return out
}
