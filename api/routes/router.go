package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssmdetailing/ssm-backend/api/controllers"
	"github.com/ssmdetailing/ssm-backend/api/middleware"
	"github.com/ssmdetailing/ssm-backend/internal/auth"
	"github.com/ssmdetailing/ssm-backend/internal/content"
	"github.com/ssmdetailing/ssm-backend/internal/engagement"
	"github.com/ssmdetailing/ssm-backend/internal/media"
	"github.com/ssmdetailing/ssm-backend/internal/portfolio"
	"github.com/ssmdetailing/ssm-backend/internal/reels"
	"github.com/ssmdetailing/ssm-backend/internal/reviews"
	"github.com/ssmdetailing/ssm-backend/pkg/auth/session"
	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	"github.com/ssmdetailing/ssm-backend/pkg/identity"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	"github.com/ssmdetailing/ssm-backend/pkg/metrics"
	pkgredis "github.com/ssmdetailing/ssm-backend/pkg/redis"
)

// RedisStore is the slice of the Redis client the HTTP layer uses for
// idempotency records and rate-limit counters.
type RedisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Dependencies carries everything NewRouter mounts. Nil services answer
// INTERNAL_ERROR from their handlers instead of panicking.
type Dependencies struct {
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Signer   *identity.Signer
	Pingers  map[string]controllers.Pinger

	Auth       auth.Service
	Content    content.Service
	Portfolio  portfolio.Service
	Reviews    reviews.Service
	Reels      reels.Service
	Engagement engagement.Service
	Media      media.Service
	SEO        controllers.SEODocuments
	Events     controllers.EventSource

	HTTPMetrics       *metrics.HTTPMetrics
	EngagementMetrics *metrics.EngagementMetrics
	Gatherer          prometheus.Gatherer

	// Uploads serves locally stored objects when the local storage driver
	// is active; nil otherwise.
	Uploads http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	// validated by config.Load
	trustedProxies, _ := cfg.App.TrustedProxyPrefixes()

	r := chi.NewRouter()
	r.Use(
		middleware.RealIP(trustedProxies),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	likePolicy := middleware.NewRateLimitPolicy(
		"like",
		cfg.PublicRateLimit.LikeWindow,
		cfg.PublicRateLimit.LikeIPLimit,
		cfg.PublicRateLimit.LikeSessionLimit,
	).WithFreshSessionIPLimit(cfg.PublicRateLimit.FreshSessionIPLimit)
	commentPolicy := middleware.NewRateLimitPolicy(
		"comment",
		cfg.PublicRateLimit.CommentWindow,
		cfg.PublicRateLimit.CommentIPLimit,
		cfg.PublicRateLimit.CommentSessionLimit,
	).WithFreshSessionIPLimit(cfg.PublicRateLimit.FreshSessionIPLimit)
	reviewPolicy := middleware.NewRateLimitPolicy(
		"review",
		cfg.PublicRateLimit.ReviewWindow,
		cfg.PublicRateLimit.ReviewIPLimit,
		cfg.PublicRateLimit.ReviewSessionLimit,
	).WithFreshSessionIPLimit(cfg.PublicRateLimit.FreshSessionIPLimit)
	likeLimit := middleware.PublicRateLimit(likePolicy, deps.Redis, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Pingers, logg))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}
	r.Get("/sitemap.xml", controllers.Sitemap(deps.SEO, logg))
	if deps.Uploads != nil {
		prefix := "/" + strings.Trim(cfg.Storage.LocalBaseURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, deps.Uploads))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(deps.Signer, cfg.Session, cfg.App.IsProd(), logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/session", controllers.PublicSession(logg))

		r.Get("/site", controllers.SiteBundle(deps.Content, logg))
		r.Get("/site/schema", controllers.SiteSchema(deps.SEO, logg))

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", controllers.PortfolioList(deps.Portfolio, logg))
			r.Get("/gallery", controllers.PortfolioGallery(deps.Portfolio, logg))
			r.Get("/categories", controllers.PortfolioCategories(deps.Portfolio, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", controllers.ReviewsList(deps.Reviews, logg))
			r.Get("/summary", controllers.ReviewsSummary(deps.Reviews, logg))
			r.Get("/schema", controllers.ReviewsSchema(deps.SEO, logg))
			r.With(middleware.PublicRateLimit(reviewPolicy, deps.Redis, logg)).
				Post("/", controllers.ReviewsSubmit(deps.Reviews, logg))
		})

		r.Route("/reels", func(r chi.Router) {
			r.Get("/", controllers.ReelsList(deps.Reels, logg))
			r.Get("/featured", controllers.ReelsFeatured(deps.Reels, logg))
			r.Get("/feed", controllers.ReelsFeed(deps.Reels, logg))
			r.Get("/liked", controllers.ReelsLiked(deps.Engagement, logg))
			r.Get("/counts", controllers.ReelsCounts(deps.Engagement, logg))
			if cfg.FeatureFlags.ReelEvents {
				r.Get("/events", controllers.ReelEvents(deps.Events, deps.EngagementMetrics, logg))
			}

			r.Route("/{reelId}", func(r chi.Router) {
				r.With(likeLimit).Post("/like/toggle", controllers.ReelLikeToggle(deps.Engagement, logg))
				r.With(likeLimit).Put("/like", controllers.ReelLike(deps.Engagement, logg))
				r.With(likeLimit).Delete("/like", controllers.ReelUnlike(deps.Engagement, logg))
				r.Get("/comments", controllers.ReelCommentsList(deps.Engagement, logg))
				r.With(middleware.PublicRateLimit(commentPolicy, deps.Redis, logg)).
					Post("/comments", controllers.ReelCommentsAdd(deps.Engagement, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/auth/login", controllers.AdminAuthLogin(deps.Auth, logg))
		r.Post("/auth/logout", controllers.AdminAuthLogout(deps.Auth, logg))
		r.Post("/auth/refresh", controllers.AdminAuthRefresh(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Use(middleware.Idempotency(deps.Redis, logg))
			mountAdmin(r, cfg, logg, deps)
		})
	})

	return r
}

func mountAdmin(r chi.Router, cfg *config.Config, logg *logger.Logger, deps Dependencies) {
	r.Get("/auth/me", controllers.AdminAuthMe(deps.Auth, logg))

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", controllers.AdminSettingsGet(deps.Content, logg))
		r.Put("/", controllers.AdminSettingsUpdate(deps.Content, logg))
		r.Post("/location", controllers.AdminSettingsLocation(deps.Content, logg))
	})
	r.Get("/places/autocomplete", controllers.AdminPlacesAutocomplete(deps.Content, logg))

	r.Route("/services", func(r chi.Router) {
		r.Get("/", controllers.AdminServicesList(deps.Content, logg))
		r.Post("/", controllers.AdminServicesCreate(deps.Content, logg))
		r.Put("/{id}", controllers.AdminServicesUpdate(deps.Content, logg))
		r.Delete("/{id}", controllers.AdminServicesDelete(deps.Content, logg))
	})
	r.Route("/faqs", func(r chi.Router) {
		r.Get("/", controllers.AdminFAQsList(deps.Content, logg))
		r.Post("/", controllers.AdminFAQsCreate(deps.Content, logg))
		r.Put("/{id}", controllers.AdminFAQsUpdate(deps.Content, logg))
		r.Delete("/{id}", controllers.AdminFAQsDelete(deps.Content, logg))
	})
	r.Route("/testimonials", func(r chi.Router) {
		r.Get("/", controllers.AdminTestimonialsList(deps.Content, logg))
		r.Post("/", controllers.AdminTestimonialsCreate(deps.Content, logg))
		r.Put("/{id}", controllers.AdminTestimonialsUpdate(deps.Content, logg))
		r.Delete("/{id}", controllers.AdminTestimonialsDelete(deps.Content, logg))
	})

	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", controllers.PortfolioList(deps.Portfolio, logg))
		r.Post("/", controllers.AdminPortfolioCreate(deps.Portfolio, logg))
		r.Put("/{id}", controllers.AdminPortfolioUpdate(deps.Portfolio, logg))
		r.Delete("/{id}", controllers.AdminPortfolioDelete(deps.Portfolio, logg))
	})

	r.Route("/reels", func(r chi.Router) {
		r.Get("/", controllers.AdminReelsList(deps.Reels, logg))
		r.Post("/", controllers.AdminReelsCreate(deps.Reels, logg))
		r.Put("/{reelId}", controllers.AdminReelsUpdate(deps.Reels, logg))
		r.Delete("/{reelId}", controllers.AdminReelsDelete(deps.Reels, logg))
		r.Post("/{reelId}/move", controllers.AdminReelsMove(deps.Reels, logg))
		r.Delete("/{reelId}/comments/{commentId}", controllers.AdminReelCommentDelete(deps.Engagement, logg))
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", controllers.AdminReviewsList(deps.Reviews, logg))
		r.Post("/{id}/approve", controllers.AdminReviewsApprove(deps.Reviews, logg))
		r.Post("/{id}/reject", controllers.AdminReviewsReject(deps.Reviews, logg))
		r.Delete("/{id}", controllers.AdminReviewsDelete(deps.Reviews, logg))
	})

	r.Route("/media", func(r chi.Router) {
		r.Post("/videos", controllers.AdminMediaUploadVideo(deps.Media, cfg.Media, logg))
		r.Post("/images", controllers.AdminMediaUploadImage(deps.Media, cfg.Media, logg))
	})
}
