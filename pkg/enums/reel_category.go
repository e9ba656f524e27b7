package enums

import (
	"fmt"
	"strings"
)

// ReelCategory groups video reels in the public feed filter.
type ReelCategory string

const (
	ReelCategoryInterior  ReelCategory = "interior"
	ReelCategoryExterior  ReelCategory = "exterior"
	ReelCategoryStarlight ReelCategory = "starlight"
	ReelCategoryFunny     ReelCategory = "funny"
)

var validReelCategories = []ReelCategory{
	ReelCategoryInterior,
	ReelCategoryExterior,
	ReelCategoryStarlight,
	ReelCategoryFunny,
}

var reelCategoryLabels = map[ReelCategory]string{
	ReelCategoryInterior:  "Interior",
	ReelCategoryExterior:  "Exterior",
	ReelCategoryStarlight: "Starlight",
	ReelCategoryFunny:     "Amuzante",
}

// String returns the literal string for the category.
func (c ReelCategory) String() string {
	return string(c)
}

// Label returns the Romanian label shown in the filter bar.
func (c ReelCategory) Label() string {
	return reelCategoryLabels[c]
}

// IsValid reports whether the category is known.
func (c ReelCategory) IsValid() bool {
	for _, candidate := range validReelCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ReelCategories returns every category in filter order.
func ReelCategories() []ReelCategory {
	out := make([]ReelCategory, len(validReelCategories))
	copy(out, validReelCategories)
	return out
}

// ParseReelCategory converts raw input into a ReelCategory.
func ParseReelCategory(value string) (ReelCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validReelCategories {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reel category %q", value)
}
