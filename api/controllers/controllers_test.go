package controllers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmdetailing/ssm-backend/internal/auth"
	"github.com/ssmdetailing/ssm-backend/internal/engagement"
	"github.com/ssmdetailing/ssm-backend/internal/feed"
	"github.com/ssmdetailing/ssm-backend/internal/media"
	"github.com/ssmdetailing/ssm-backend/internal/reviews"
	"github.com/ssmdetailing/ssm-backend/internal/users"
	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/identity"
	pkgseo "github.com/ssmdetailing/ssm-backend/pkg/seo"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func withSession(r *http.Request, id string) *http.Request {
	return r.WithContext(identity.WithSession(r.Context(), identity.Session{ID: id, Token: id + ".sig"}))
}

type fakeEngagement struct {
	engagement.Service
	toggled  []string
	counts   []engagement.ReelCounts
	liked    []uuid.UUID
	toggleFn func(reelID uuid.UUID, sessionID string) (engagement.State, error)
}

func (f *fakeEngagement) Toggle(_ context.Context, reelID uuid.UUID, sessionID string) (engagement.State, error) {
	f.toggled = append(f.toggled, sessionID)
	if f.toggleFn != nil {
		return f.toggleFn(reelID, sessionID)
	}
	return engagement.State{ReelID: reelID, Counts: feed.Counts{Likes: 1, Liked: true}}, nil
}

func (f *fakeEngagement) Counts(_ context.Context, ids []uuid.UUID) ([]engagement.ReelCounts, error) {
	return f.counts, nil
}

func (f *fakeEngagement) LikedBy(_ context.Context, _ string) ([]uuid.UUID, error) {
	return f.liked, nil
}

func TestReelLikeToggleUsesSessionAndReelParam(t *testing.T) {
	svc := &fakeEngagement{}
	router := chi.NewRouter()
	router.Post("/reels/{reelId}/like/toggle", ReelLikeToggle(svc, nil))

	reelID := uuid.New()
	req := withSession(httptest.NewRequest(http.MethodPost, "/reels/"+reelID.String()+"/like/toggle", nil), "visitor-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"visitor-1"}, svc.toggled)

	var state engagement.State
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec.Body).Data, &state))
	assert.Equal(t, reelID, state.ReelID)
	assert.True(t, state.Liked)
}

func TestReelLikeToggleMapsNotFound(t *testing.T) {
	svc := &fakeEngagement{toggleFn: func(uuid.UUID, string) (engagement.State, error) {
		return engagement.State{}, pkgerrors.New(pkgerrors.CodeNotFound, "reel not found")
	}}
	router := chi.NewRouter()
	router.Post("/reels/{reelId}/like/toggle", ReelLikeToggle(svc, nil))

	req := withSession(httptest.NewRequest(http.MethodPost, "/reels/"+uuid.NewString()+"/like/toggle", nil), "visitor-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec.Body)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(pkgerrors.CodeNotFound), env.Error.Code)
}

func TestReelLikeRejectsBadID(t *testing.T) {
	router := chi.NewRouter()
	router.Put("/reels/{reelId}/like", ReelLike(&fakeEngagement{}, nil))

	req := withSession(httptest.NewRequest(http.MethodPut, "/reels/not-a-uuid/like", nil), "visitor-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReelsCountsRequiresIDs(t *testing.T) {
	handler := ReelsCounts(&fakeEngagement{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reels/counts", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := uuid.New()
	svc := &fakeEngagement{counts: []engagement.ReelCounts{{ReelID: id, Likes: 3, Comments: 1}}}
	rec = httptest.NewRecorder()
	ReelsCounts(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reels/counts?ids="+id.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var counts []engagement.ReelCounts
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec.Body).Data, &counts))
	assert.Equal(t, svc.counts, counts)
}

func TestReelsLikedReturnsEmptyArray(t *testing.T) {
	req := withSession(httptest.NewRequest(http.MethodGet, "/reels/liked", nil), "visitor-1")
	rec := httptest.NewRecorder()
	ReelsLiked(&fakeEngagement{}, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec.Body).Data))
}

func TestPublicSessionEchoesIdentity(t *testing.T) {
	req := withSession(httptest.NewRequest(http.MethodGet, "/session", nil), "abc")
	rec := httptest.NewRecorder()
	PublicSession(nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body sessionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec.Body).Data, &body))
	assert.Equal(t, "abc", body.SessionID)
	assert.Equal(t, "abc.sig", body.Token)

	rec = httptest.NewRecorder()
	PublicSession(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type fakeReviews struct {
	reviews.Service
	submitted []reviews.SubmitRequest
	limit     int
}

func (f *fakeReviews) Submit(_ context.Context, req reviews.SubmitRequest) (reviews.ReviewDTO, error) {
	f.submitted = append(f.submitted, req)
	return reviews.ReviewDTO{ID: uuid.New(), Message: req.Message, Rating: req.Rating}, nil
}

func (f *fakeReviews) ListApproved(_ context.Context, limit int) ([]reviews.ReviewDTO, error) {
	f.limit = limit
	return []reviews.ReviewDTO{}, nil
}

func TestReviewsSubmit(t *testing.T) {
	svc := &fakeReviews{}
	body := `{"author_name":"Ion","message":"Foarte mulțumit","rating":5}`
	rec := httptest.NewRecorder()
	ReviewsSubmit(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, 5, svc.submitted[0].Rating)
}

func TestReviewsSubmitRejectsMissingMessage(t *testing.T) {
	svc := &fakeReviews{}
	rec := httptest.NewRecorder()
	ReviewsSubmit(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(`{"rating":5}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.submitted)
}

func TestReviewsListLimit(t *testing.T) {
	svc := &fakeReviews{}
	rec := httptest.NewRecorder()
	ReviewsList(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reviews.DefaultWidgetLimit, svc.limit)

	rec = httptest.NewRecorder()
	ReviewsList(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews?limit=500", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeAuth struct {
	auth.Service
	refreshAccess string
}

func (f *fakeAuth) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if req.Password != "correct horse battery" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900, User: &users.UserDTO{Email: req.Email}}, nil
}

func (f *fakeAuth) Refresh(_ context.Context, accessToken, refreshToken string) (*auth.RefreshResponse, error) {
	f.refreshAccess = accessToken
	return &auth.RefreshResponse{AccessToken: "access-2", RefreshToken: refreshToken + "-2"}, nil
}

func TestAdminAuthLoginSetsRefreshHeader(t *testing.T) {
	body := `{"email":"admin@ssm.ro","password":"correct horse battery"}`
	rec := httptest.NewRecorder()
	AdminAuthLogin(&fakeAuth{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "refresh", rec.Header().Get(RefreshTokenHeader))

	body = `{"email":"admin@ssm.ro","password":"nope"}`
	rec = httptest.NewRecorder()
	AdminAuthLogin(&fakeAuth{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get(RefreshTokenHeader))
}

func TestAdminAuthRefreshReadsBearer(t *testing.T) {
	svc := &fakeAuth{}
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"r1"}`))
	req.Header.Set("Authorization", "Bearer expired-access")
	rec := httptest.NewRecorder()
	AdminAuthRefresh(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expired-access", svc.refreshAccess)
	assert.Equal(t, "r1-2", rec.Header().Get(RefreshTokenHeader))

	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"r1"}`))
	rec = httptest.NewRecorder()
	AdminAuthRefresh(svc, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("down")}}, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type fakeSEO struct{}

func (fakeSEO) Sitemap() ([]byte, error) { return []byte(`<?xml version="1.0"?><urlset></urlset>`), nil }

func (fakeSEO) Business(context.Context) pkgseo.LocalBusiness {
	return pkgseo.LocalBusiness{Context: "https://schema.org", Type: "AutoRepair", Name: "SSM Detailing"}
}

func (fakeSEO) Reviews(context.Context) (pkgseo.LocalBusiness, error) {
	return pkgseo.LocalBusiness{}, pkgerrors.New(pkgerrors.CodeDependency, "reviews unavailable")
}

func TestSEODocuments(t *testing.T) {
	rec := httptest.NewRecorder()
	Sitemap(fakeSEO{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, rec.Body.String(), "<urlset>")

	rec = httptest.NewRecorder()
	SiteSchema(fakeSEO{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/ld+json")
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "SSM Detailing", doc["name"])

	rec = httptest.NewRecorder()
	ReviewsSchema(fakeSEO{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/schema", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type fakeMedia struct {
	media.Service
	kind     enums.MediaKind
	received []byte
	name     string
}

func (f *fakeMedia) UploadImage(_ context.Context, kind enums.MediaKind, in media.UploadInput) (*media.Asset, error) {
	f.kind = kind
	f.name = in.FileName
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.received = body
	return &media.Asset{ID: uuid.New(), Kind: kind, MimeType: in.MimeType, SizeBytes: in.SizeBytes}, nil
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestAdminMediaUploadImage(t *testing.T) {
	svc := &fakeMedia{}
	cfg := config.MediaConfig{MaxImageMB: 1, MaxVideoMB: 1}
	body, contentType := multipartBody(t, map[string]string{"kind": "thumbnail"}, "poză.jpg", []byte("jpeg-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/media/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	AdminMediaUploadImage(svc, cfg, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, enums.MediaKindThumbnail, svc.kind)
	assert.Equal(t, "poză.jpg", svc.name)
	assert.Equal(t, []byte("jpeg-bytes"), svc.received)
}

func TestAdminMediaUploadImageRejectsVideoKind(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{"kind": "video"}, "a.jpg", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/media/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	AdminMediaUploadImage(&fakeMedia{}, config.MediaConfig{MaxImageMB: 1}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminMediaUploadTooLarge(t *testing.T) {
	content := bytes.Repeat([]byte("a"), 3<<20)
	body, contentType := multipartBody(t, nil, "big.jpg", content)
	req := httptest.NewRequest(http.MethodPost, "/media/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	AdminMediaUploadImage(&fakeMedia{}, config.MediaConfig{MaxImageMB: 1}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

type chanSubscription struct {
	ch   chan string
	once sync.Once
}

func (s *chanSubscription) Messages() <-chan string { return s.ch }

func (s *chanSubscription) Close() error {
	s.once.Do(func() { close(s.ch) })
	return nil
}

type chanBroker struct {
	subscribed chan *chanSubscription
}

func (b *chanBroker) Publish(context.Context, string, any) error { return nil }

func (b *chanBroker) Subscribe(context.Context, string) (engagement.Subscription, error) {
	sub := &chanSubscription{ch: make(chan string, 4)}
	b.subscribed <- sub
	return sub, nil
}

type countingGauge struct {
	mu     sync.Mutex
	opened int
}

func (g *countingGauge) StreamOpened() {
	g.mu.Lock()
	g.opened++
	g.mu.Unlock()
}

func (g *countingGauge) StreamClosed() {}

func TestReelEventsStreamsFilteredEvents(t *testing.T) {
	broker := &chanBroker{subscribed: make(chan *chanSubscription, 1)}
	hub := engagement.NewHub(broker, engagement.HubOptions{})
	defer hub.Close()
	gauge := &countingGauge{}
	srv := httptest.NewServer(ReelEvents(hub, gauge, nil))
	defer srv.Close()

	wanted := uuid.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?ids="+wanted.String(), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sub := <-broker.subscribed
	other, _ := json.Marshal(engagement.Event{Type: engagement.EventUpdated, ReelID: uuid.New(), Likes: 9})
	match, _ := json.Marshal(engagement.Event{Type: engagement.EventUpdated, ReelID: wanted, Likes: 4})
	sub.ch <- string(other)
	sub.ch <- string(match)

	reader := bufio.NewReader(resp.Body)
	var dataLine string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			dataLine = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}

	var evt engagement.Event
	require.NoError(t, json.Unmarshal([]byte(dataLine), &evt))
	assert.Equal(t, wanted, evt.ReelID)
	assert.Equal(t, 4, evt.Likes)

	gauge.mu.Lock()
	assert.Equal(t, 1, gauge.opened)
	gauge.mu.Unlock()
}

func TestReelEventsRejectsStreamsOverPerClientCap(t *testing.T) {
	broker := &chanBroker{subscribed: make(chan *chanSubscription, 1)}
	hub := engagement.NewHub(broker, engagement.HubOptions{MaxPerOwner: 1})
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := hub.Watch(ctx, "203.0.113.9", nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/reels/events", nil)
	req.RemoteAddr = "203.0.113.9:5000"
	rec := httptest.NewRecorder()
	ReelEvents(hub, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, hub.Watchers())

	req = httptest.NewRequest(http.MethodGet, "/reels/events", nil)
	req.RemoteAddr = "198.51.100.1:5000"
	reqCtx, stop := context.WithCancel(context.Background())
	stop()
	rec = httptest.NewRecorder()
	ReelEvents(hub, nil, nil).ServeHTTP(rec, req.WithContext(reqCtx))
	assert.Equal(t, http.StatusOK, rec.Code)
}
