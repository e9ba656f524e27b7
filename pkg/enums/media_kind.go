package enums

import "fmt"

// MediaKind defines where the uploaded object is used.
type MediaKind string

const (
	MediaKindVideo          MediaKind = "video"
	MediaKindPortfolioImage MediaKind = "portfolio_image"
	MediaKindThumbnail      MediaKind = "thumbnail"
	MediaKindSiteImage      MediaKind = "site_image"
)

var validMediaKinds = []MediaKind{
	MediaKindVideo,
	MediaKindPortfolioImage,
	MediaKindThumbnail,
	MediaKindSiteImage,
}

// String returns the literal string for the kind.
func (m MediaKind) String() string {
	return string(m)
}

// IsValid reports whether the kind is known.
func (m MediaKind) IsValid() bool {
	for _, candidate := range validMediaKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsImage reports whether the kind holds a still image.
func (m MediaKind) IsImage() bool {
	return m == MediaKindPortfolioImage || m == MediaKindThumbnail || m == MediaKindSiteImage
}

// ParseMediaKind converts raw input into a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	for _, candidate := range validMediaKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media kind %q", value)
}
