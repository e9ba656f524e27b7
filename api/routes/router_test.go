package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmdetailing/ssm-backend/api/controllers"
	"github.com/ssmdetailing/ssm-backend/api/middleware"
	"github.com/ssmdetailing/ssm-backend/internal/portfolio"
	"github.com/ssmdetailing/ssm-backend/internal/reels"
	pkgAuth "github.com/ssmdetailing/ssm-backend/pkg/auth"
	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	"github.com/ssmdetailing/ssm-backend/pkg/identity"
	"github.com/ssmdetailing/ssm-backend/pkg/metrics"
	pkgseo "github.com/ssmdetailing/ssm-backend/pkg/seo"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct{ known map[string]bool }

func (s stubSessions) HasSession(_ context.Context, accessID string) (bool, error) {
	return s.known[accessID], nil
}

type stubPortfolio struct {
	portfolio.Service
	category string
}

func (s *stubPortfolio) List(_ context.Context, category string) ([]portfolio.ItemDTO, error) {
	s.category = category
	return []portfolio.ItemDTO{}, nil
}

type stubReels struct {
	reels.Service
	sessionID string
}

func (s *stubReels) Feed(_ context.Context, category, sessionID string) (reels.Feed, error) {
	s.sessionID = sessionID
	return reels.Feed{Category: category}, nil
}

func (s *stubReels) List(context.Context) ([]reels.ReelDTO, error) {
	return []reels.ReelDTO{}, nil
}

type stubSEO struct{}

func (stubSEO) Sitemap() ([]byte, error) { return []byte("<urlset></urlset>"), nil }

func (stubSEO) Business(context.Context) pkgseo.LocalBusiness { return pkgseo.LocalBusiness{} }

func (stubSEO) Reviews(context.Context) (pkgseo.LocalBusiness, error) {
	return pkgseo.LocalBusiness{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:          config.AppConfig{Env: "test"},
		JWT:          config.JWTConfig{Secret: "router-secret", Issuer: "ssm-test", ExpirationMinutes: 10},
		Session:      config.SessionConfig{Secret: "session-secret", CookieName: "reels_session_id", CookieMaxAge: time.Hour},
		FeatureFlags: config.FeatureFlagsConfig{ReelEvents: true},
	}
}

type fixture struct {
	handler   http.Handler
	cfg       *config.Config
	signer    *identity.Signer
	portfolio *stubPortfolio
	reels     *stubReels
	sessions  stubSessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	signer, err := identity.NewSigner(cfg.Session.Secret)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	f := &fixture{
		cfg:       cfg,
		signer:    signer,
		portfolio: &stubPortfolio{},
		reels:     &stubReels{},
		sessions:  stubSessions{known: map[string]bool{}},
	}
	f.handler = NewRouter(cfg, nil, Dependencies{
		Sessions:    f.sessions,
		Signer:      signer,
		Pingers:     map[string]controllers.Pinger{"db": stubPinger{}},
		Portfolio:   f.portfolio,
		Reels:       f.reels,
		SEO:         stubSEO{},
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Gatherer:    reg,
	})
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) adminToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	jti := uuid.NewString()
	token, err := pkgAuth.MintAccessToken(f.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    jti,
	})
	require.NoError(t, err)
	f.sessions.known[jti] = true
	return token
}

func TestHealthRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-SSM-Env"))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicRoutesIssueSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/portfolio?category=interior", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "interior", f.portfolio.category)

	token := rec.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, token)
	id, err := f.signer.Verify(token)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "reels_session_id", cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reels/feed", nil)
	req.Header.Set(middleware.SessionHeader, token)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, f.reels.sessionID)
	assert.Equal(t, token, rec.Header().Get(middleware.SessionHeader))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/admin/v1/reels", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/reels", nil)
	req.Header.Set("Authorization", "Bearer "+f.adminToken(t, enums.UserRoleAdmin))
	rec = f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRejectRevokedSession(t *testing.T) {
	f := newFixture(t)
	token := f.adminToken(t, enums.UserRoleAdmin)
	for k := range f.sessions.known {
		f.sessions.known[k] = false
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/reels", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminCreateValidatesBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/reels", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+f.adminToken(t, enums.UserRoleAdmin))
	rec := f.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInfraRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<urlset>")

	f.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	rec = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/health/live")
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNilServiceAnswersInternalError(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
}
