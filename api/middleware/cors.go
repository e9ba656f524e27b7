package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"https://ssmdetailing.ro",
	"https://www.ssmdetailing.ro",
}

// CORS applies the site origin policy; extra origins come from SSM_CORS_ORIGINS.
func CORS(extra []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   corsOrigins(extra),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-SSM-Token", "X-Session-Id", "Idempotency-Key", "X-Requested-With", "Last-Event-ID"},
		ExposedHeaders:   []string{"X-SSM-Token", "X-Session-Id", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

func corsOrigins(extra []string) []string {
	seen := make(map[string]struct{}, len(defaultCORSOrigins)+len(extra))
	out := make([]string, 0, len(defaultCORSOrigins)+len(extra))
	for _, origin := range append(append([]string{}, defaultCORSOrigins...), extra...) {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		out = append(out, origin)
	}
	return out
}
