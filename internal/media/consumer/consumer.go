// Package consumer applies GCS object notifications delivered over Pub/Sub
// to media_assets rows.
package consumer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

const (
	objectFinalizeEvent  = "OBJECT_FINALIZE"
	payloadFormatJSONAPI = "JSON_API_V1"
)

type repository interface {
	FindByGCSKey(ctx context.Context, gcsKey string) (*models.MediaAsset, error)
	MarkUploaded(ctx context.Context, id uuid.UUID, uploadedAt time.Time) error
}

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// Consumer marks pending assets uploaded on OBJECT_FINALIZE.
type Consumer struct {
	repo         repository
	subscription receiver
	logg         *logger.Logger
	now          func() time.Time
}

func NewConsumer(repo repository, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, errors.New("media repository is required")
	}
	if subscription == nil {
		return nil, errors.New("media subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{repo: repo, subscription: subscription, logg: logg, now: time.Now}, nil
}

// Run processes messages until the context is canceled or the subscription errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	nack bool
}

var ack = processResult{}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	asset, logCtx, done := lookupAsset(ctx, c.logg, c.repo, msg, objectFinalizeEvent)
	if asset == nil {
		return done
	}
	if !asset.Status.CanTransitionTo(enums.MediaStatusUploaded) {
		c.logg.Info(logCtx, "media status already handled")
		return ack
	}
	if err := c.repo.MarkUploaded(ctx, asset.ID, c.now().UTC()); err != nil {
		return handleDBError(logCtx, c.logg, err)
	}
	c.logg.Info(logCtx, "media marked as uploaded")
	return ack
}

type finder interface {
	FindByGCSKey(ctx context.Context, gcsKey string) (*models.MediaAsset, error)
}

// lookupAsset validates a notification and loads its row. A nil asset means
// the message is finished and result says how to settle it.
func lookupAsset(ctx context.Context, logg *logger.Logger, repo finder, msg *pubsub.Message, wantEvent string) (*models.MediaAsset, context.Context, processResult) {
	attrs := parseAttributes(msg.Attributes)
	logCtx := logg.WithFields(ctx, buildLogFields(msg.ID, attrs, nil))
	if attrs.EventType != wantEvent {
		logg.Debug(logCtx, "skipping unrelated event")
		return nil, logCtx, ack
	}
	if attrs.PayloadFormat != payloadFormatJSONAPI {
		logg.Warn(logCtx, "unsupported payload format")
		return nil, logCtx, ack
	}

	payload, err := decodePayload(msg.Data)
	if err != nil {
		logg.Error(logCtx, "failed to decode payload", err)
		return nil, logCtx, ack
	}
	var gcs gcsPayload
	if err := json.Unmarshal(payload, &gcs); err != nil {
		fields := buildLogFields(msg.ID, attrs, nil)
		fields["payload_preview"] = previewBytes(payload, 800)
		fields["payload_len"] = len(payload)
		logg.Error(logg.WithFields(ctx, fields), "failed to unmarshal payload", err)
		return nil, logCtx, ack
	}

	logCtx = logg.WithFields(ctx, buildLogFields(msg.ID, attrs, &gcs))
	if strings.TrimSpace(gcs.Name) == "" {
		logg.Error(logCtx, "payload missing gcs object name", fmt.Errorf("empty name"))
		return nil, logCtx, ack
	}
	if attrs.ObjectID != "" && attrs.ObjectID != gcs.Name {
		logg.Warn(logCtx, "attribute object_id differs from payload name")
	}

	asset, err := repo.FindByGCSKey(logCtx, gcs.Name)
	if err != nil {
		if db.IsNotFound(err) {
			logg.Warn(logCtx, "media row not found")
			return nil, logCtx, ack
		}
		return nil, logCtx, handleDBError(logCtx, logg, err)
	}
	return asset, logg.WithField(logCtx, "media_id", asset.ID.String()), ack
}

func handleDBError(ctx context.Context, logg *logger.Logger, err error) processResult {
	logg.Error(ctx, "media persistence error", err)
	return processResult{nack: isTransientDBError(err)}
}

func buildLogFields(messageID string, attrs gcsAttributes, payload *gcsPayload) map[string]any {
	fields := map[string]any{
		"message_id": messageID,
		"event_type": attrs.EventType,
		"bucket":     firstNonEmpty(attrs.BucketID, gcsBucket(payload)),
	}
	if payload != nil {
		fields["gcs_key"] = payload.Name
	}
	return fields
}

func gcsBucket(p *gcsPayload) string {
	if p == nil {
		return ""
	}
	return p.Bucket
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseAttributes(attrs map[string]string) gcsAttributes {
	return gcsAttributes{
		EventType:     attrs["eventType"],
		BucketID:      attrs["bucketId"],
		ObjectID:      attrs["objectId"],
		PayloadFormat: attrs["payloadFormat"],
	}
}

type gcsAttributes struct {
	EventType     string
	BucketID      string
	ObjectID      string
	PayloadFormat string
}

type gcsPayload struct {
	Name        string `json:"name"`
	Bucket      string `json:"bucket"`
	ContentType string `json:"contentType"`
	Size        string `json:"size"`
}

func decodePayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("payload empty")
	}
	if decoded, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
		return decoded, nil
	}
	return data, nil
}

func isTransientDBError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func previewBytes(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}
