// Package feed models the vertical reel feed: which slide is active, what the
// client must do to its media elements, and the optimistic engagement state
// shown next to each slide. Nothing here touches a real media element; the
// player returns Effect values that a client applies in order.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

const (
	DefaultThreshold   = 0.6
	DefaultHintTimeout = 5 * time.Second

	// CategoryAll disables the category filter.
	CategoryAll = "all"
)

// EffectKind is an instruction for one media element.
type EffectKind string

const (
	EffectPause     EffectKind = "pause"
	EffectReset     EffectKind = "reset"
	EffectMute      EffectKind = "mute"
	EffectUnmute    EffectKind = "unmute"
	EffectPlay      EffectKind = "play"
	EffectScrollTop EffectKind = "scroll_top"
)

// Effect targets the slide at Index. ScrollTop carries Index -1.
type Effect struct {
	Kind  EffectKind `json:"kind"`
	Index int        `json:"index"`
}

// VisibilityEntry is one observer report: the visible fraction of a slide.
type VisibilityEntry struct {
	Index int
	Ratio float64
}

type Options struct {
	Threshold   float64
	HintTimeout time.Duration
	Now         func() time.Time
}

// Player owns the single active index of a feed.
type Player struct {
	all    []Slide
	slides []Slide

	active int
	// armed forces the next qualifying frame to run a transition even when
	// the candidate equals the active index (after a category switch).
	armed   bool
	playing bool
	muted   bool

	threshold     float64
	hintTimeout   time.Duration
	mountedAt     time.Time
	hintDismissed bool
	now           func() time.Time
}

// NewPlayer builds a player over reels that are already active-only and
// ordered by order_index.
func NewPlayer(reels []Reel, opts Options) *Player {
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = DefaultThreshold
	}
	if opts.HintTimeout <= 0 {
		opts.HintTimeout = DefaultHintTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	all := NewSlides(reels)
	return &Player{
		all:         all,
		slides:      all,
		active:      -1,
		muted:       true,
		threshold:   opts.Threshold,
		hintTimeout: opts.HintTimeout,
		mountedAt:   opts.Now(),
		now:         opts.Now,
	}
}

// Slides returns the slides currently shown.
func (p *Player) Slides() []Slide {
	out := make([]Slide, len(p.slides))
	copy(out, p.slides)
	return out
}

// Active returns the active index, -1 before the first activation.
func (p *Player) Active() int { return p.active }

// Playing reports whether the active slide is playing.
func (p *Player) Playing() bool { return p.playing }

// Muted returns the remembered mute preference.
func (p *Player) Muted() bool { return p.muted }

// SelectCategory filters the full list. Pause effects reference the slides
// shown before the switch.
func (p *Player) SelectCategory(category string) ([]Effect, error) {
	filter := strings.ToLower(strings.TrimSpace(category))
	var want enums.ReelCategory
	if filter != "" && filter != CategoryAll {
		parsed, err := enums.ParseReelCategory(filter)
		if err != nil {
			return nil, fmt.Errorf("select category: %w", err)
		}
		want = parsed
	}

	effects := p.pauseAll()

	if want == "" {
		p.slides = p.all
	} else {
		filtered := make([]Slide, 0, len(p.all))
		for _, s := range p.all {
			if s.Category == want {
				filtered = append(filtered, s)
			}
		}
		p.slides = filtered
	}

	p.active = 0
	p.armed = true
	p.playing = false
	return append(effects, Effect{Kind: EffectScrollTop, Index: -1}), nil
}

// ObserveFrame resolves one observer frame to at most one transition.
func (p *Player) ObserveFrame(entries []VisibilityEntry) []Effect {
	candidate := -1
	best := 0.0
	for _, e := range entries {
		if e.Index < 0 || e.Index >= len(p.slides) || e.Ratio < p.threshold {
			continue
		}
		if candidate == -1 || e.Ratio > best || (e.Ratio == best && e.Index < candidate) {
			candidate, best = e.Index, e.Ratio
		}
	}
	if candidate == -1 {
		return nil
	}
	if candidate == p.active && !p.armed {
		return nil
	}

	effects := Transition(p.slides, p.active, candidate)
	p.active = candidate
	p.armed = false
	p.playing = p.slides[candidate].Sequenced
	return effects
}

// Transition lists the effects that make next the only playing slide. Every
// other sequenced slide, prev first, is paused, rewound and muted. next is
// rewound, muted and played; its mute preference is applied only after
// PlaybackStarted.
func Transition(slides []Slide, prev, next int) []Effect {
	var effects []Effect
	silence := func(i int) {
		effects = append(effects,
			Effect{Kind: EffectPause, Index: i},
			Effect{Kind: EffectReset, Index: i},
			Effect{Kind: EffectMute, Index: i},
		)
	}
	if prev >= 0 && prev < len(slides) && prev != next && slides[prev].Sequenced {
		silence(prev)
	}
	for i, s := range slides {
		if i == next || i == prev || !s.Sequenced {
			continue
		}
		silence(i)
	}
	if next >= 0 && next < len(slides) && slides[next].Sequenced {
		effects = append(effects,
			Effect{Kind: EffectReset, Index: next},
			Effect{Kind: EffectMute, Index: next},
			Effect{Kind: EffectPlay, Index: next},
		)
	}
	return effects
}

// PlaybackStarted applies the remembered preference once the active slide is
// actually playing. Reports for any other index are stale and ignored.
func (p *Player) PlaybackStarted(index int) []Effect {
	if index != p.active || !p.isSequenced(index) {
		return nil
	}
	p.playing = true
	if p.muted {
		return nil
	}
	return []Effect{{Kind: EffectUnmute, Index: index}}
}

// PlaybackFailed leaves the slide active but paused.
func (p *Player) PlaybackFailed(index int) {
	if index == p.active {
		p.playing = false
	}
}

// TogglePlay flips play/pause on the active sequenced slide.
func (p *Player) TogglePlay() []Effect {
	if !p.isSequenced(p.active) {
		return nil
	}
	p.hintDismissed = true
	if p.playing {
		p.playing = false
		return []Effect{{Kind: EffectPause, Index: p.active}}
	}
	p.playing = true
	return []Effect{{Kind: EffectPlay, Index: p.active}}
}

// ToggleMute flips the preference and applies it to every sequenced slide.
func (p *Player) ToggleMute() []Effect {
	p.muted = !p.muted
	p.hintDismissed = true
	kind := EffectUnmute
	if p.muted {
		kind = EffectMute
	}
	var effects []Effect
	for i, s := range p.slides {
		if s.Sequenced {
			effects = append(effects, Effect{Kind: kind, Index: i})
		}
	}
	return effects
}

// HintVisible reports whether the unmute hint is still shown at now.
func (p *Player) HintVisible(now time.Time) bool {
	if p.hintDismissed || !p.muted {
		return false
	}
	return now.Sub(p.mountedAt) < p.hintTimeout
}

// Close pauses every slide.
func (p *Player) Close() []Effect {
	p.playing = false
	p.armed = false
	return p.pauseAll()
}

func (p *Player) pauseAll() []Effect {
	var effects []Effect
	for i, s := range p.slides {
		if s.Sequenced {
			effects = append(effects, Effect{Kind: EffectPause, Index: i})
		}
	}
	return effects
}

func (p *Player) isSequenced(index int) bool {
	return index >= 0 && index < len(p.slides) && p.slides[index].Sequenced
}
