package media

import (
	"fmt"
	"mime"
	"strings"

	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

type mimeGroup string

const (
	mimeGroupImages mimeGroup = "image/"
	mimeGroupVideos mimeGroup = "video/"
)

var mimeGroupNames = map[mimeGroup]string{
	mimeGroupImages: "imagini",
	mimeGroupVideos: "videoclipuri",
}

func groupForKind(kind enums.MediaKind) mimeGroup {
	if kind == enums.MediaKindVideo {
		return mimeGroupVideos
	}
	return mimeGroupImages
}

func sniffMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	return strings.ToLower(mediaType), nil
}

// isAllowedMime accepts any subtype of the kind's group (video/*, image/*).
func isAllowedMime(kind enums.MediaKind, mimeType string) bool {
	return strings.HasPrefix(mimeType, string(groupForKind(kind)))
}

func allowedMimeDescription(kind enums.MediaKind) string {
	return "doar " + mimeGroupNames[groupForKind(kind)]
}
