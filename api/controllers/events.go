package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/api/middleware"
	"github.com/ssmdetailing/ssm-backend/api/responses"
	"github.com/ssmdetailing/ssm-backend/api/validators"
	"github.com/ssmdetailing/ssm-backend/internal/engagement"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

const streamHeartbeat = 25 * time.Second

// StreamGauge tracks open engagement streams.
type StreamGauge interface {
	StreamOpened()
	StreamClosed()
}

// EventSource hands out engagement event streams keyed by the caller.
type EventSource interface {
	Watch(ctx context.Context, owner string, ids []uuid.UUID) (<-chan engagement.Event, error)
}

// ReelEvents streams engagement.updated events as server-sent events,
// filtered by ?ids= when given. The stream ends when the client goes away.
func ReelEvents(source EventSource, gauge StreamGauge, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if source == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event stream unavailable"))
			return
		}
		ids, err := validators.ParseQueryUUIDs(r, "ids", engagement.MaxBatchIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		events, err := source.Watch(ctx, middleware.ClientIP(r), ids)
		switch {
		case errors.Is(err, engagement.ErrTooManyStreams):
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(streamHeartbeat.Seconds())))
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Prea multe conexiuni deschise. Incearca din nou mai tarziu."))
			return
		case err != nil:
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe engagement events"))
			return
		}

		rc := http.NewResponseController(w)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			if logg != nil {
				logg.Warn(ctx, "reel_events.flush_unsupported")
			}
			return
		}

		if gauge != nil {
			gauge.StreamOpened()
			defer gauge.StreamClosed()
		}

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			case evt, ok := <-events:
				if !ok {
					return
				}
				payload, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", engagement.EventUpdated, payload); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
