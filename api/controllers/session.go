package controllers

import (
	"net/http"

	"github.com/ssmdetailing/ssm-backend/api/responses"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/identity"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	Fresh     bool   `json:"fresh"`
}

// PublicSession returns the visitor identity resolved by the session
// middleware. Clients persist the token and replay it in X-Session-Id.
func PublicSession(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := identity.FromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session context missing"))
			return
		}
		responses.WriteSuccess(w, sessionResponse{SessionID: sess.ID, Token: sess.Token, Fresh: sess.Fresh})
	}
}

func sessionID(r *http.Request) (string, error) {
	id := identity.IDFromContext(r.Context())
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "session context missing")
	}
	return id, nil
}
