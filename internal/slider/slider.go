// Package slider models the before/after comparison divider: pointer and
// touch dragging, clamping, and the one-time hint animation played after
// mount.
package slider

import "time"

const (
	MinPosition     = 2.0
	MaxPosition     = 98.0
	DefaultPosition = 50.0

	HintDelay  = 800 * time.Millisecond
	HintLeg    = 1200 * time.Millisecond
	HintTarget = 30.0
)

// Rect is the horizontal extent of the widget in client coordinates.
type Rect struct {
	Left  float64
	Width float64
}

// Clamp bounds p to [MinPosition, MaxPosition].
func Clamp(p float64) float64 {
	switch {
	case p < MinPosition:
		return MinPosition
	case p > MaxPosition:
		return MaxPosition
	}
	return p
}

// PositionFromPointer converts a client X coordinate into a clamped
// percentage. A zero width keeps current.
func PositionFromPointer(clientX, left, width, current float64) float64 {
	if width <= 0 {
		return current
	}
	return Clamp((clientX - left) / width * 100)
}

// Slider is one comparison widget.
type Slider struct {
	position   float64
	dragging   bool
	pointerID  int
	hintCancel bool
}

// New returns a slider at initial, clamped; zero means DefaultPosition.
func New(initial float64) *Slider {
	if initial == 0 {
		initial = DefaultPosition
	}
	return &Slider{position: Clamp(initial)}
}

func (s *Slider) Position() float64 { return s.position }

func (s *Slider) Dragging() bool { return s.dragging }

// Begin starts a drag session for pointerID. Moves are tracked even when the
// pointer leaves the widget bounds until End.
func (s *Slider) Begin(pointerID int) {
	s.dragging = true
	s.pointerID = pointerID
	s.hintCancel = true
}

// Move updates the position while pointerID is dragging. Moves from any
// other pointer are ignored. It reports whether the position was updated.
func (s *Slider) Move(pointerID int, clientX float64, rect Rect) bool {
	if !s.dragging || pointerID != s.pointerID {
		return false
	}
	s.position = PositionFromPointer(clientX, rect.Left, rect.Width, s.position)
	return true
}

// End stops the drag when pointerID owns it and reports whether it did.
func (s *Slider) End(pointerID int) bool {
	if !s.dragging || pointerID != s.pointerID {
		return false
	}
	s.dragging = false
	s.pointerID = 0
	return true
}

// Touch handles a touch move: it sets the position directly without a drag
// session.
func (s *Slider) Touch(clientX float64, rect Rect) {
	s.hintCancel = true
	s.position = PositionFromPointer(clientX, rect.Left, rect.Width, s.position)
}

// Click jumps to the clicked position when no drag is running.
func (s *Slider) Click(clientX float64, rect Rect) {
	if s.dragging {
		return
	}
	s.Touch(clientX, rect)
}

// HintCancelled reports whether user input has stopped the hint for good.
func (s *Slider) HintCancelled() bool { return s.hintCancel }

// Tick advances the hint animation to elapsed time since mount and applies
// the hint position while it runs. It reports whether the hint is running.
func (s *Slider) Tick(elapsed time.Duration) bool {
	if s.hintCancel {
		return false
	}
	pos, running := HintAt(elapsed)
	if running {
		s.position = pos
	}
	return running
}

// HintAt returns the divider position of the hint animation elapsed after
// mount: 50 to 30 and back, two eased legs. running is false before the
// delay and after the second leg ends.
func HintAt(elapsed time.Duration) (position float64, running bool) {
	if elapsed < HintDelay {
		return DefaultPosition, false
	}
	t := elapsed - HintDelay
	if t < HintLeg {
		return lerp(DefaultPosition, HintTarget, EaseInOutQuad(progress(t))), true
	}
	t -= HintLeg
	if t < HintLeg {
		return lerp(HintTarget, DefaultPosition, EaseInOutQuad(progress(t))), true
	}
	return DefaultPosition, false
}

// EaseInOutQuad maps t in [0,1] onto the quadratic ease-in-out curve.
func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func progress(t time.Duration) float64 {
	p := float64(t) / float64(HintLeg)
	if p > 1 {
		return 1
	}
	return p
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
