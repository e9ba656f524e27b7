package consumer

import (
	"context"
	"errors"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

const objectDeleteEvent = "OBJECT_DELETE"

type deletionRepository interface {
	FindByGCSKey(ctx context.Context, gcsKey string) (*models.MediaAsset, error)
	MarkDeleted(ctx context.Context, id uuid.UUID, deletedAt time.Time) error
}

// DeletionConsumer marks assets deleted when their object disappears from
// the bucket, including removals made outside this service.
type DeletionConsumer struct {
	repo         deletionRepository
	subscription receiver
	logg         *logger.Logger
	now          func() time.Time
}

func NewDeletionConsumer(repo deletionRepository, subscription *pubsub.Subscriber, logg *logger.Logger) (*DeletionConsumer, error) {
	if repo == nil {
		return nil, errors.New("media repository is required")
	}
	if subscription == nil {
		return nil, errors.New("media deletion subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &DeletionConsumer{repo: repo, subscription: subscription, logg: logg, now: time.Now}, nil
}

func (c *DeletionConsumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *DeletionConsumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	asset, logCtx, done := lookupAsset(ctx, c.logg, c.repo, msg, objectDeleteEvent)
	if asset == nil {
		return done
	}
	if !asset.Status.CanTransitionTo(enums.MediaStatusDeleted) {
		c.logg.Info(logCtx, "media already marked deleted")
		return ack
	}
	if err := c.repo.MarkDeleted(ctx, asset.ID, c.now().UTC()); err != nil {
		return handleDBError(logCtx, c.logg, err)
	}
	c.logg.Info(logCtx, "processed media deletion event")
	return ack
}
