// Package identity mints and verifies the anonymous visitor session ids used
// for reel likes and comments. The id travels as the subject of an HS256 JWT
// so a client cannot pick another browser's id.
package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	idPrefix     = "session_"
	suffixLength = 9
	base36       = "0123456789abcdefghijklmnopqrstuvwxyz"

	// Audience keeps visitor tokens from being accepted as admin tokens and
	// the other way round.
	Audience = "ssm-visitor"
)

var (
	ErrMalformed    = errors.New("malformed session token")
	ErrBadSignature = errors.New("session signature mismatch")

	idPattern     = regexp.MustCompile(`^session_[0-9]{1,16}_[0-9a-z]{9}$`)
	signingMethod = jwt.SigningMethodHS256
)

// Signer mints session ids and signs them with a server secret. Tokens carry
// no expiry; the cookie max age bounds how long a browser keeps one.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner builds a Signer. The secret must be non-empty.
func NewSigner(secret string) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	return &Signer{secret: []byte(secret), now: time.Now}, nil
}

// NewID returns a fresh session_<unix-ms>_<9 base36 chars> id.
func (s *Signer) NewID() (string, error) {
	suffix := make([]byte, suffixLength)
	max := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate session id: %w", err)
		}
		suffix[i] = base36[n.Int64()]
	}
	return fmt.Sprintf("%s%d_%s", idPrefix, s.now().UnixMilli(), suffix), nil
}

// Sign returns the token for id.
func (s *Signer) Sign(id string) (string, error) {
	if !ValidID(id) {
		return "", ErrMalformed
	}
	claims := jwt.RegisteredClaims{
		Subject:  id,
		Audience: jwt.ClaimStrings{Audience},
		IssuedAt: jwt.NewNumericDate(s.now()),
	}
	token, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return token, nil
}

// Issue mints an id and returns it together with its signed token.
func (s *Signer) Issue() (id, token string, err error) {
	id, err = s.NewID()
	if err != nil {
		return "", "", err
	}
	token, err = s.Sign(id)
	if err != nil {
		return "", "", err
	}
	return id, token, nil
}

// Verify checks a token and returns the session id it carries.
func (s *Signer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", fmt.Errorf("%w: %v", ErrBadSignature, err)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !ValidID(claims.Subject) {
		return "", fmt.Errorf("%w: subject is not a session id", ErrMalformed)
	}
	return claims.Subject, nil
}

// ValidID reports whether id has the session_<ms>_<suffix> shape.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

type ctxKey struct{}

// Session is the verified visitor identity attached to a request.
type Session struct {
	ID    string
	Token string
	// Fresh is true when the id was minted for this request.
	Fresh bool
}

// WithSession stores the session on ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by the middleware.
func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.ID != ""
}

// IDFromContext is a shorthand for handlers that only need the id.
func IDFromContext(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.ID
}
