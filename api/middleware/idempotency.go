package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ssmdetailing/ssm-backend/api/responses"
	"github.com/ssmdetailing/ssm-backend/api/validators"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/identity"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	pkgredis "github.com/ssmdetailing/ssm-backend/pkg/redis"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from a stored record.
	ReplayedHeader = "Idempotent-Replayed"

	publicIdempotencyTTL = 24 * time.Hour
	adminIdempotencyTTL  = time.Hour
	// inFlightTTL bounds how long a crashed request can hold its key.
	inFlightTTL = 30 * time.Second

	maxIdempotencyKeyLen = 128
)

type idempotencyRule struct {
	method string
	route  string
	ttl    time.Duration
	// required rejects requests without an Idempotency-Key header.
	required bool
}

var idempotencyRules = []idempotencyRule{
	// public writes: the key is optional so plain form posts still work
	{method: http.MethodPost, route: "/api/v1/reviews", ttl: publicIdempotencyTTL},
	{method: http.MethodPost, route: "/api/v1/reels/{reelId}/comments", ttl: publicIdempotencyTTL},

	{method: http.MethodPost, route: "/api/admin/v1/services", ttl: adminIdempotencyTTL, required: true},
	{method: http.MethodPost, route: "/api/admin/v1/faqs", ttl: adminIdempotencyTTL, required: true},
	{method: http.MethodPost, route: "/api/admin/v1/testimonials", ttl: adminIdempotencyTTL, required: true},
	{method: http.MethodPost, route: "/api/admin/v1/portfolio", ttl: adminIdempotencyTTL, required: true},
	{method: http.MethodPost, route: "/api/admin/v1/reels", ttl: adminIdempotencyTTL, required: true},
	{method: http.MethodPost, route: "/api/admin/v1/reels/{id}/move", ttl: adminIdempotencyTTL},
}

type recordState string

const (
	statePending recordState = "pending"
	stateDone    recordState = "done"
)

type idempotencyRecord struct {
	State       recordState `json:"state"`
	RequestHash string      `json:"request_hash"`
	Status      int         `json:"status,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Body        []byte      `json:"body,omitempty"`
}

// Idempotency stores the first response per (caller, route, key) and
// replays it for retries. A key is reserved before the handler runs, so a
// concurrent duplicate gets 409 instead of executing twice. 5xx responses
// release the key.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRule(r.Method, requestPath(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			fail := func(err error) { responses.WriteError(ctx, logg, w, err) }

			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			switch {
			case clientKey == "" && rule.required:
				fail(pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			case clientKey == "":
				next.ServeHTTP(w, r)
				return
			case len(clientKey) > maxIdempotencyKeyLen:
				fail(pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header too long"))
				return
			}

			body, err := validators.BufferBody(w, r)
			if err != nil {
				fail(err)
				return
			}

			hash := requestHash(r, body)
			key := store.IdempotencyKey(callerScope(r), clientKey)

			pending, _ := json.Marshal(idempotencyRecord{State: statePending, RequestHash: hash})
			reserved, err := store.SetNX(ctx, key, string(pending), inFlightTTL)
			if err != nil {
				fail(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replayOrReject(ctx, store, key, hash, w, fail)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			status := capture.statusCode()

			if status >= http.StatusInternalServerError {
				if err := store.Del(ctx, key); err != nil && logg != nil {
					logg.Error(ctx, "release idempotency key", err)
				}
				return
			}
			done, _ := json.Marshal(idempotencyRecord{
				State:       stateDone,
				RequestHash: hash,
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			})
			if err := store.Set(ctx, key, string(done), rule.ttl); err != nil && logg != nil {
				logg.Error(ctx, "persist idempotency record", err)
			}
		})
	}
}

func replayOrReject(ctx context.Context, store pkgredis.IdempotencyStore, key, hash string, w http.ResponseWriter, fail func(error)) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// the holder finished with a 5xx or its reservation expired
		fail(pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key was interrupted, retry"))
		return
	}
	if err != nil {
		fail(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}

	var rec idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		fail(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case rec.RequestHash != hash:
		fail(pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case rec.State == statePending:
		fail(pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is still in progress"))
	default:
		if rec.ContentType != "" {
			w.Header().Set("Content-Type", rec.ContentType)
		}
		w.Header().Set(ReplayedHeader, "true")
		w.WriteHeader(rec.Status)
		_, _ = w.Write(rec.Body)
	}
}

// callerScope keeps keys from different admins or visitors apart.
func callerScope(r *http.Request) string {
	return strings.Join([]string{
		UserIDFromContext(r.Context()),
		identity.IDFromContext(r.Context()),
	}, "|")
}

func requestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method + " " + requestPath(r) + "\n"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// requestPath is matched instead of the chi route pattern: the middleware is
// mounted on a sub-router, so the pattern is still incomplete when it runs.
func requestPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	if path := strings.TrimRight(r.URL.Path, "/"); path != "" {
		return path
	}
	return "/"
}

func matchRule(method, path string) (idempotencyRule, bool) {
	for _, rule := range idempotencyRules {
		if rule.method == method && routeMatches(rule.route, path) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

// routeMatches compares segment by segment; {param} segments match any
// non-empty value.
func routeMatches(route, path string) bool {
	want := strings.Split(route, "/")
	got := strings.Split(path, "/")
	if len(got) != len(want) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if got[i] != seg {
			return false
		}
	}
	return true
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
