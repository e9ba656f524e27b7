package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ssmdetailing/ssm-backend/api/responses"
	"github.com/ssmdetailing/ssm-backend/api/validators"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/identity"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// RateLimitPolicy defines fixed-window limits for one traffic surface. The
// IP counter always applies; the subject counter is keyed by whatever the
// wrapping middleware extracts (login email, visitor session).
type RateLimitPolicy struct {
	name         string
	window       time.Duration
	ipLimit      int
	subjectLimit int
	// freshIPLimit replaces the subject counter for visitors whose session
	// was minted on this very request.
	freshIPLimit int
}

// NewRateLimitPolicy builds a policy with the supplied window and limits.
func NewRateLimitPolicy(name string, window time.Duration, ipLimit, subjectLimit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:         strings.ToLower(strings.TrimSpace(name)),
		window:       window,
		ipLimit:      ipLimit,
		subjectLimit: subjectLimit,
	}
}

// WithFreshSessionIPLimit caps requests per IP that arrive without an
// established visitor session.
func (p RateLimitPolicy) WithFreshSessionIPLimit(limit int) RateLimitPolicy {
	p.freshIPLimit = limit
	return p
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.subjectLimit > 0 || p.freshIPLimit > 0)
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "default"
	}
	return p.name
}

func (p RateLimitPolicy) key(scope, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("rl:%s:%s:%s", scope, p.normalizedName(), value)
}

// subjectFunc returns the hashed subject for the request, or "" to skip the
// subject counter.
type subjectFunc func(w http.ResponseWriter, r *http.Request) (string, error)

type limiter struct {
	policy       RateLimitPolicy
	store        rateLimiterStore
	logg         *logger.Logger
	subjectScope string
	subject      subjectFunc
	// fresh reports requests whose subject cannot have built up a count yet.
	fresh func(*http.Request) bool
}

// AuthRateLimit enforces per-IP and per-email counters for the admin login.
func AuthRateLimit(policy RateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return limiter{policy: policy, store: store, logg: logg, subjectScope: "email", subject: emailSubject}.middleware
}

// PublicRateLimit enforces per-IP and per-visitor-session counters for
// anonymous writes (likes, comments, reviews). A request that arrives with
// no session gets the policy's fresh-session IP limit instead of a session
// counter, since its id was just minted.
func PublicRateLimit(policy RateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return limiter{
		policy:       policy,
		store:        store,
		logg:         logg,
		subjectScope: "session",
		subject:      sessionSubject,
		fresh:        freshSession,
	}.middleware
}

func (l limiter) middleware(next http.Handler) http.Handler {
	if !l.policy.enabled() || l.store == nil {
		return next
	}
	policy := l.policy

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := ClientIP(r)

		if !l.check(ctx, w, "ip", ip, policy.ipLimit, map[string]any{"ip": ip}) {
			return
		}

		if l.fresh != nil && l.fresh(r) {
			if !l.check(ctx, w, "fresh_ip", ip, policy.freshIPLimit, map[string]any{"ip": ip}) {
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if policy.subjectLimit > 0 && l.subject != nil {
			hash, err := l.subject(w, r)
			if err != nil {
				responses.WriteError(ctx, l.logg, w, err)
				return
			}
			if !l.check(ctx, w, l.subjectScope, hash, policy.subjectLimit, map[string]any{l.subjectScope + "_hash": hash}) {
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// check counts one hit against scope/value and writes the rejection when the
// limit is exceeded. A zero limit or empty value skips the counter.
func (l limiter) check(ctx context.Context, w http.ResponseWriter, scope, value string, limit int, extra map[string]any) bool {
	if limit <= 0 {
		return true
	}
	key := l.policy.key(scope, value)
	if key == "" {
		return true
	}
	count, err := l.store.IncrWithTTL(ctx, key, l.policy.window)
	if err != nil {
		responses.WriteError(ctx, l.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if count <= int64(limit) {
		return true
	}
	respondRateLimited(ctx, l.logg, w, l.policy, scope, extra, count, limit)
	return false
}

func emailSubject(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := validators.BufferBody(w, r)
	if err != nil {
		return "", err
	}

	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return "", nil
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return "", nil
	}
	return hashValue(email), nil
}

func sessionSubject(_ http.ResponseWriter, r *http.Request) (string, error) {
	id := identity.IDFromContext(r.Context())
	if id == "" {
		return "", nil
	}
	return hashValue(id), nil
}

func freshSession(r *http.Request) bool {
	sess, ok := identity.FromContext(r.Context())
	return !ok || sess.Fresh
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy RateLimitPolicy, scope string, extra map[string]any, count int64, limit int) {
	if logg != nil {
		fields := map[string]any{
			"scope":          scope,
			"policy":         policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		for k, v := range extra {
			fields[k] = v
		}
		logg.Warn(logg.WithFields(ctx, fields), "rate_limit.blocked")
	}
	w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Prea multe cereri. Incearca din nou mai tarziu."))
}

// ClientIP is the TCP peer. Forwarding headers are only honoured by RealIP,
// which rewrites RemoteAddr when the peer is a trusted proxy.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
