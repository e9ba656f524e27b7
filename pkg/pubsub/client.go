// Package pubsub connects the media worker to the Cloud Storage notification
// subscriptions (OBJECT_FINALIZE and OBJECT_DELETE).
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"go.uber.org/multierr"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

type subscriptionKind string

const (
	kindFinalize subscriptionKind = "finalize"
	kindDeletion subscriptionKind = "deletion"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoSubscriptions   = errors.New("no media subscription configured")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

type Client struct {
	client    *pubsub.Client
	projectID string
	names     map[subscriptionKind]string
	receive   pubsub.ReceiveSettings
}

// NewClient connects and checks that every configured subscription exists.
// At least one subscription must be configured.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	names := configuredNames(projectID, cfg)
	if len(names) == 0 {
		return nil, errNoSubscriptions
	}

	ps, err := pubsub.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{
		client:    ps,
		projectID: projectID,
		names:     names,
		receive:   receiveSettings(cfg),
	}
	if err := c.Ping(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	if logg != nil {
		fields := map[string]any{"max_outstanding": c.receive.MaxOutstandingMessages}
		for kind, name := range names {
			fields["subscription_"+string(kind)] = name
		}
		logg.Info(logg.WithFields(ctx, fields), "pubsub subscriptions verified")
	}
	return c, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	if js := strings.TrimSpace(gcp.CredentialsJSON); js != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(js))}
	}
	if path := strings.TrimSpace(gcp.ApplicationCredentials); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	return nil
}

func receiveSettings(cfg config.PubSubConfig) pubsub.ReceiveSettings {
	rs := pubsub.DefaultReceiveSettings
	if cfg.MaxOutstandingMessages > 0 {
		rs.MaxOutstandingMessages = cfg.MaxOutstandingMessages
	}
	if cfg.ReceiveGoroutines > 0 {
		rs.NumGoroutines = cfg.ReceiveGoroutines
	}
	return rs
}

func configuredNames(projectID string, cfg config.PubSubConfig) map[subscriptionKind]string {
	out := map[subscriptionKind]string{}
	for kind, raw := range map[subscriptionKind]string{
		kindFinalize: cfg.MediaSubscription,
		kindDeletion: cfg.MediaDeletionSubscription,
	} {
		if name := resourceName(projectID, raw); name != "" {
			out[kind] = name
		}
	}
	return out
}

// resourceName expands a bare subscription id to its full resource path.
func resourceName(projectID, name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ""
	case strings.HasPrefix(name, "projects/") && strings.Contains(name, "/subscriptions/"):
		return name
	case projectID == "":
		return ""
	}
	return "projects/" + projectID + "/subscriptions/" + name
}

func (c *Client) subscriber(kind subscriptionKind) *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	name, ok := c.names[kind]
	if !ok {
		return nil
	}
	sub := c.client.Subscriber(name)
	sub.ReceiveSettings = c.receive
	return sub
}

// MediaSubscription receives OBJECT_FINALIZE notifications, or nil when not
// configured.
func (c *Client) MediaSubscription() *pubsub.Subscriber { return c.subscriber(kindFinalize) }

// MediaDeletionSubscription receives OBJECT_DELETE notifications, or nil when
// not configured.
func (c *Client) MediaDeletionSubscription() *pubsub.Subscriber { return c.subscriber(kindDeletion) }

// Ping reports every configured subscription that is missing or unreadable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	var errs error
	for kind, name := range c.names {
		_, err := c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: name})
		switch {
		case err == nil:
		case status.Code(err) == codes.NotFound:
			errs = multierr.Append(errs, fmt.Errorf("%s subscription %q does not exist", kind, name))
		default:
			errs = multierr.Append(errs, fmt.Errorf("checking %s subscription %q: %w", kind, name, err))
		}
	}
	return errs
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
