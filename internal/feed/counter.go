package feed

// Counts is the engagement state shown next to a slide.
type Counts struct {
	Liked    bool `json:"liked"`
	Likes    int  `json:"likes_count"`
	Comments int  `json:"comments_count"`
}

// Counter holds optimistic like state for one slide.
type Counter struct {
	state Counts
}

func NewCounter(initial Counts) *Counter {
	return &Counter{state: clamp(initial)}
}

func (c *Counter) State() Counts { return c.state }

// ToggleLike flips liked and moves the count by exactly one. The returned
// snapshot is the last known-good state, to be passed to Rollback if the
// write fails.
func (c *Counter) ToggleLike() (pending Counts) {
	pending = c.state
	if c.state.Liked {
		c.state.Liked = false
		c.state.Likes--
	} else {
		c.state.Liked = true
		c.state.Likes++
	}
	c.state = clamp(c.state)
	return pending
}

// Confirm replaces local state with the server's authoritative counts.
func (c *Counter) Confirm(authoritative Counts) {
	c.state = clamp(authoritative)
}

func (c *Counter) Rollback(pending Counts) {
	c.state = clamp(pending)
}

func clamp(c Counts) Counts {
	if c.Likes < 0 {
		c.Likes = 0
	}
	if c.Comments < 0 {
		c.Comments = 0
	}
	return c
}
