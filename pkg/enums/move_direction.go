package enums

import (
	"fmt"
	"strings"
)

// MoveDirection reorders an item relative to its neighbour.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

func (d MoveDirection) IsValid() bool {
	return d == MoveUp || d == MoveDown
}

// ParseMoveDirection converts raw input into a MoveDirection.
func ParseMoveDirection(value string) (MoveDirection, error) {
	d := MoveDirection(strings.ToLower(strings.TrimSpace(value)))
	if !d.IsValid() {
		return "", fmt.Errorf("invalid move direction %q", value)
	}
	return d, nil
}
