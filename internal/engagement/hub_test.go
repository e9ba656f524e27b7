package engagement

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBroker struct {
	mu         sync.Mutex
	subscribes int
	subs       []*closingSubscription
}

type closingSubscription struct {
	ch   chan string
	once sync.Once
}

func (s *closingSubscription) Messages() <-chan string { return s.ch }

func (s *closingSubscription) Close() error {
	s.once.Do(func() { close(s.ch) })
	return nil
}

func (b *countingBroker) Publish(context.Context, string, any) error { return nil }

func (b *countingBroker) Subscribe(context.Context, string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribes++
	sub := &closingSubscription{ch: make(chan string, 16)}
	b.subs = append(b.subs, sub)
	return sub, nil
}

func (b *countingBroker) last() *closingSubscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subs[len(b.subs)-1]
}

func (b *countingBroker) subscribeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribes
}

func send(t *testing.T, sub *closingSubscription, evt Event) {
	t.Helper()
	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	sub.ch <- string(raw)
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "stream closed")
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestHubSharesOneSubscription(t *testing.T) {
	broker := &countingBroker{}
	hub := NewHub(broker, HubOptions{})
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reel := uuid.New()

	const watchers = 25
	streams := make([]<-chan Event, watchers)
	var wg sync.WaitGroup
	for i := range watchers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, err := hub.Watch(ctx, "owner", nil)
			assert.NoError(t, err)
			streams[i] = ch
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, broker.subscribeCount())
	assert.Equal(t, watchers, hub.Watchers())

	send(t, broker.last(), Event{Type: EventUpdated, ReelID: reel, Likes: 2})
	for _, ch := range streams {
		assert.Equal(t, reel, receive(t, ch).ReelID)
	}
}

func TestHubFiltersByReel(t *testing.T) {
	broker := &countingBroker{}
	hub := NewHub(broker, HubOptions{})
	defer hub.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watched := uuid.New()
	events, err := hub.Watch(ctx, "a", []uuid.UUID{watched})
	require.NoError(t, err)

	sub := broker.last()
	send(t, sub, Event{Type: EventUpdated, ReelID: uuid.New(), Likes: 9})
	send(t, sub, Event{Type: EventUpdated, ReelID: watched, Likes: 4})

	evt := receive(t, events)
	assert.Equal(t, watched, evt.ReelID)
	assert.Equal(t, 4, evt.Likes)
}

func TestHubCapsStreamsPerOwnerAndTotal(t *testing.T) {
	hub := NewHub(&countingBroker{}, HubOptions{MaxPerOwner: 2, MaxTotal: 3})
	defer hub.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := hub.Watch(ctx, "198.51.100.7", nil)
	require.NoError(t, err)
	_, err = hub.Watch(ctx, "198.51.100.7", nil)
	require.NoError(t, err)
	_, err = hub.Watch(ctx, "198.51.100.7", nil)
	assert.ErrorIs(t, err, ErrTooManyStreams)

	_, err = hub.Watch(ctx, "203.0.113.1", nil)
	require.NoError(t, err)
	_, err = hub.Watch(ctx, "203.0.113.2", nil)
	assert.ErrorIs(t, err, ErrTooManyStreams)
}

func TestHubReleasesSlotWhenWatcherLeaves(t *testing.T) {
	hub := NewHub(&countingBroker{}, HubOptions{MaxPerOwner: 1})
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := hub.Watch(ctx, "owner", nil)
	require.NoError(t, err)
	cancel()
	for range events {
	}

	again, err := hub.Watch(context.Background(), "owner", nil)
	require.NoError(t, err)
	assert.NotNil(t, again)
}

func TestHubResubscribesAfterBrokerEndsSubscription(t *testing.T) {
	broker := &countingBroker{}
	hub := NewHub(broker, HubOptions{})
	defer hub.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := hub.Watch(ctx, "owner", nil)
	require.NoError(t, err)
	require.NoError(t, broker.last().Close())
	for range events {
	}

	_, err = hub.Watch(ctx, "owner", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, broker.subscribeCount())
}

func TestHubDropsEventsForSlowWatcher(t *testing.T) {
	broker := &countingBroker{}
	hub := NewHub(broker, HubOptions{Buffer: 1})
	defer hub.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slow, err := hub.Watch(ctx, "slow", nil)
	require.NoError(t, err)
	fast, err := hub.Watch(ctx, "fast", nil)
	require.NoError(t, err)

	sub := broker.last()
	first, second := uuid.New(), uuid.New()
	send(t, sub, Event{Type: EventUpdated, ReelID: first})
	assert.Equal(t, first, receive(t, fast).ReelID)
	send(t, sub, Event{Type: EventUpdated, ReelID: second})
	assert.Equal(t, second, receive(t, fast).ReelID)

	assert.Equal(t, first, receive(t, slow).ReelID)
	select {
	case evt := <-slow:
		t.Fatalf("unexpected buffered event %v", evt.ReelID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubClosedRejectsWatchers(t *testing.T) {
	hub := NewHub(&countingBroker{}, HubOptions{})
	require.NoError(t, hub.Close())
	_, err := hub.Watch(context.Background(), "owner", nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}
