package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
)

const defaultWatcherBuffer = 16

var (
	// ErrTooManyStreams is returned when a watcher would exceed the per-owner
	// or process-wide cap.
	ErrTooManyStreams = errors.New("too many engagement streams")
	ErrHubClosed      = errors.New("engagement hub closed")
)

// HubOptions bounds concurrent watchers. Zero means unlimited.
type HubOptions struct {
	MaxPerOwner int
	MaxTotal    int
	// Buffer is the per-watcher queue; events beyond it are dropped for that
	// watcher only.
	Buffer int
}

// Hub holds a single subscription to Channel for the process and fans the
// decoded events out to in-memory watchers. The subscription is opened by
// the first watcher and reopened by the next one if the broker ends it.
type Hub struct {
	broker Broker
	opts   HubOptions

	mu       sync.Mutex
	sub      Subscription
	watchers map[*watcher]struct{}
	owners   map[string]int
	closed   bool
}

type watcher struct {
	owner  string
	wanted map[uuid.UUID]struct{}
	ch     chan Event
}

func (w *watcher) wants(id uuid.UUID) bool {
	if len(w.wanted) == 0 {
		return true
	}
	_, ok := w.wanted[id]
	return ok
}

func NewHub(broker Broker, opts HubOptions) *Hub {
	if opts.Buffer <= 0 {
		opts.Buffer = defaultWatcherBuffer
	}
	return &Hub{
		broker:   broker,
		opts:     opts,
		watchers: make(map[*watcher]struct{}),
		owners:   make(map[string]int),
	}
}

// Watch streams events for the given reels (all reels when ids is empty)
// until ctx is done. owner is the key the per-owner cap counts against,
// usually the client IP.
func (h *Hub) Watch(ctx context.Context, owner string, ids []uuid.UUID) (<-chan Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.closed:
		return nil, ErrHubClosed
	case h.opts.MaxTotal > 0 && len(h.watchers) >= h.opts.MaxTotal:
		return nil, ErrTooManyStreams
	case h.opts.MaxPerOwner > 0 && h.owners[owner] >= h.opts.MaxPerOwner:
		return nil, ErrTooManyStreams
	}

	if h.sub == nil {
		sub, err := h.broker.Subscribe(context.WithoutCancel(ctx), Channel)
		if err != nil {
			return nil, err
		}
		h.sub = sub
		go h.pump(sub)
	}

	w := &watcher{owner: owner, wanted: make(map[uuid.UUID]struct{}, len(ids)), ch: make(chan Event, h.opts.Buffer)}
	for _, id := range ids {
		w.wanted[id] = struct{}{}
	}
	h.watchers[w] = struct{}{}
	h.owners[owner]++

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		h.removeLocked(w)
		h.mu.Unlock()
	}()
	return w.ch, nil
}

// Watchers reports how many streams are registered.
func (h *Hub) Watchers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

// Close ends the shared subscription and every watcher.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return h.resetLocked()
}

func (h *Hub) pump(sub Subscription) {
	for raw := range sub.Messages() {
		var evt Event
		if err := json.Unmarshal([]byte(raw), &evt); err != nil {
			continue
		}
		h.dispatch(evt)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sub == sub {
		_ = h.resetLocked()
	}
}

func (h *Hub) dispatch(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers {
		if !w.wants(evt.ReelID) {
			continue
		}
		select {
		case w.ch <- evt:
		default:
		}
	}
}

// resetLocked drops the subscription and closes every watcher so clients
// reconnect and resubscribe.
func (h *Hub) resetLocked() error {
	var err error
	if h.sub != nil {
		err = h.sub.Close()
		h.sub = nil
	}
	for w := range h.watchers {
		h.removeLocked(w)
	}
	return err
}

func (h *Hub) removeLocked(w *watcher) {
	if _, ok := h.watchers[w]; !ok {
		return
	}
	delete(h.watchers, w)
	if h.owners[w.owner]--; h.owners[w.owner] <= 0 {
		delete(h.owners, w.owner)
	}
	close(w.ch)
}
