package middleware

import (
	"net/http"
	"strings"

	"github.com/ssmdetailing/ssm-backend/api/responses"
	"github.com/ssmdetailing/ssm-backend/pkg/config"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/identity"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

const SessionHeader = "X-Session-Id"

// Session resolves the anonymous visitor identity. A signed token is read
// from the X-Session-Id header, then the session cookie; anything missing or
// forged is replaced by a freshly minted id that is set as a cookie and
// echoed on the response.
func Session(signer *identity.Signer, cfg config.SessionConfig, secureCookie bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := sessionFromRequest(r, signer, cfg.CookieName)
			if !ok {
				id, token, err := signer.Issue()
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue session"))
					return
				}
				sess = identity.Session{ID: id, Token: token, Fresh: true}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Domain:   cfg.CookieDomain,
					MaxAge:   int(cfg.CookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, sess.Token)

			ctx := identity.WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sess.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(r *http.Request, signer *identity.Signer, cookieName string) (identity.Session, bool) {
	candidates := []string{strings.TrimSpace(r.Header.Get(SessionHeader))}
	if c, err := r.Cookie(cookieName); err == nil {
		candidates = append(candidates, strings.TrimSpace(c.Value))
	}
	for _, token := range candidates {
		if token == "" {
			continue
		}
		if id, err := signer.Verify(token); err == nil {
			return identity.Session{ID: id, Token: token}, true
		}
	}
	return identity.Session{}, false
}
