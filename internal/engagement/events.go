package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// Channel carries engagement.updated events between API instances.
	Channel = "ssm:reels:engagement"

	EventUpdated = "engagement.updated"
)

// Event is published after every like or comment mutation.
type Event struct {
	Type     string    `json:"type"`
	Action   string    `json:"action"`
	ReelID   uuid.UUID `json:"reel_id"`
	Likes    int       `json:"likes_count"`
	Comments int       `json:"comments_count"`
	At       time.Time `json:"at"`
}

// Broker fans events out to subscribers.
type Broker interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription delivers raw payloads until Close.
type Subscription interface {
	Messages() <-chan string
	Close() error
}

type redisPubSub interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channels ...string) (*goredis.PubSub, error)
}

type redisBroker struct {
	client redisPubSub
}

// NewRedisBroker adapts the redis client to Broker.
func NewRedisBroker(client redisPubSub) Broker {
	return &redisBroker{client: client}
}

func (b *redisBroker) Publish(ctx context.Context, channel string, payload any) error {
	return b.client.Publish(ctx, channel, payload)
}

func (b *redisBroker) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	ps, err := b.client.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}
	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			out <- msg.Payload
		}
	}()
	return &redisSubscription{ps: ps, out: out}, nil
}

type redisSubscription struct {
	ps  *goredis.PubSub
	out chan string
}

func (s *redisSubscription) Messages() <-chan string { return s.out }

// Close stops the subscription and drains pending payloads so the relay
// goroutine can exit.
func (s *redisSubscription) Close() error {
	err := s.ps.Close()
	go func() {
		for range s.out {
		}
	}()
	return err
}
