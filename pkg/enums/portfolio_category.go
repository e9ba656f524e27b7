package enums

import (
	"fmt"
	"strings"
)

// PortfolioCategory labels a before/after portfolio item.
type PortfolioCategory string

const (
	PortfolioCategoryExterior   PortfolioCategory = "Detailing Exterior"
	PortfolioCategoryInterior   PortfolioCategory = "Detailing Interior"
	PortfolioCategoryStarlight  PortfolioCategory = "Plafon Înstelat"
	PortfolioCategoryHeadlights PortfolioCategory = "Recondiționare Faruri"
)

// PortfolioCategoryAll is the public filter value meaning "no filter".
const PortfolioCategoryAll = "Toate"

var validPortfolioCategories = []PortfolioCategory{
	PortfolioCategoryExterior,
	PortfolioCategoryInterior,
	PortfolioCategoryStarlight,
	PortfolioCategoryHeadlights,
}

func (c PortfolioCategory) String() string {
	return string(c)
}

func (c PortfolioCategory) IsValid() bool {
	for _, candidate := range validPortfolioCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// PortfolioCategories returns the admin-selectable categories.
func PortfolioCategories() []PortfolioCategory {
	out := make([]PortfolioCategory, len(validPortfolioCategories))
	copy(out, validPortfolioCategories)
	return out
}

// ParsePortfolioCategory converts raw input into a PortfolioCategory.
func ParsePortfolioCategory(value string) (PortfolioCategory, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validPortfolioCategories {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid portfolio category %q", value)
}
