package content

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmdetailing/ssm-backend/pkg/db/dbtest"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/maps"
)

type memoryCache struct {
	values map[string]string
	sets   int
	dels   int
	failOn error
}

func newMemoryCache() *memoryCache { return &memoryCache{values: map[string]string{}} }

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	if c.failOn != nil {
		return "", c.failOn
	}
	v, ok := c.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if c.failOn != nil {
		return c.failOn
	}
	c.sets++
	c.values[key] = fmt.Sprintf("%s", value)
	return nil
}

func (c *memoryCache) Del(_ context.Context, keys ...string) error {
	c.dels++
	for _, k := range keys {
		delete(c.values, k)
	}
	return c.failOn
}

func (c *memoryCache) CacheKey(name string) string { return "ssm:cache:" + name }

// brokenRepo fails every read.
type brokenRepo struct{ *Repository }

var errDBDown = errors.New("db down")

func (brokenRepo) GetSettings(context.Context) (*models.SiteSettings, error) { return nil, errDBDown }
func (brokenRepo) ListServices(context.Context, bool) ([]models.Service, error) {
	return nil, errDBDown
}
func (brokenRepo) ListFAQs(context.Context, bool) ([]models.FAQItem, error) { return nil, errDBDown }
func (brokenRepo) ListTestimonials(context.Context, bool) ([]models.Testimonial, error) {
	return nil, errDBDown
}

type stubPlaces struct {
	details *maps.PlaceDetails
	gotReq  maps.AutocompleteRequest
}

func (p *stubPlaces) Autocomplete(_ context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error) {
	p.gotReq = req
	return []maps.AutocompleteSuggestion{{PlaceID: "abc", Description: "Mărculești, Ialomița"}}, nil
}

func (p *stubPlaces) ResolvePlace(context.Context, string) (*maps.PlaceDetails, error) {
	return p.details, nil
}

func newTestService(t *testing.T, cache Cache, places Places) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t, contentDDL...))
	svc, err := NewService(ServiceParams{Repo: repo, Cache: cache, Places: places, CacheTTL: time.Minute})
	require.NoError(t, err)
	return svc, repo
}

func TestBundleFallsBackToDefaultsWhenEmpty(t *testing.T) {
	cache := newMemoryCache()
	svc, _ := newTestService(t, cache, nil)

	bundle := svc.Bundle(context.Background())

	assert.Equal(t, DefaultSettings().HeroTitle, bundle.Settings.HeroTitle)
	assert.Len(t, bundle.Services, 4)
	assert.Len(t, bundle.Testimonials, 3)
	assert.Len(t, bundle.FAQs, 4)
	assert.Equal(t, []string{PartSettings, PartServices, PartTestimonials, PartFAQs}, bundle.Fallback)
	assert.Equal(t, "https://wa.me/40726521578", bundle.Contact.WhatsAppLink)
	assert.Equal(t, "tel:+40726521578", bundle.Contact.TelLink)
	assert.Zero(t, cache.sets, "degraded bundles are not cached")
}

func TestBundleSurvivesDatabaseFailure(t *testing.T) {
	repo := NewRepository(dbtest.Open(t, contentDDL...))
	svc, err := NewService(ServiceParams{Repo: brokenRepo{repo}})
	require.NoError(t, err)

	bundle := svc.Bundle(context.Background())
	assert.Len(t, bundle.Services, 4)
	assert.Len(t, bundle.Fallback, 4)
}

func TestBundleCachedAndInvalidatedOnWrite(t *testing.T) {
	cache := newMemoryCache()
	svc, repo := newTestService(t, cache, nil)
	ctx := context.Background()

	_, err := svc.UpdateSettings(ctx, UpdateSettingsRequest{HeroTitle: strPtr("SSM Detailing")})
	require.NoError(t, err)
	_, err = svc.CreateService(ctx, ServiceRequest{Title: "Plafon Starlight", Description: "Stele", Icon: "Star", Features: []string{" fibră ", ""}})
	require.NoError(t, err)
	require.NoError(t, repo.CreateTestimonial(ctx, &models.Testimonial{Name: "Ion", Content: "Super", Rating: 5, IsActive: true}))
	_, err = svc.CreateFAQ(ctx, FAQRequest{Question: "Cât durează?", Answer: "O zi"})
	require.NoError(t, err)

	first := svc.Bundle(ctx)
	require.Empty(t, first.Fallback)
	assert.Equal(t, "SSM Detailing", first.Settings.HeroTitle)
	require.Len(t, first.Services, 1)
	assert.Equal(t, []string{"fibră"}, first.Services[0].Features)
	assert.Equal(t, 1, cache.sets)

	require.NoError(t, repo.CreateService(ctx, &models.Service{Title: "Direct", IsActive: true, DisplayOrder: 9}))
	cached := svc.Bundle(ctx)
	assert.Len(t, cached.Services, 1, "served from cache")

	_, err = svc.CreateService(ctx, ServiceRequest{Title: "Faruri", Description: "Polimerizare", Icon: "Lightbulb"})
	require.NoError(t, err)
	fresh := svc.Bundle(ctx)
	assert.Len(t, fresh.Services, 3)
}

func TestBundleIgnoresCacheErrors(t *testing.T) {
	cache := newMemoryCache()
	cache.failOn = errors.New("redis down")
	svc, _ := newTestService(t, cache, nil)

	bundle := svc.Bundle(context.Background())
	assert.Len(t, bundle.FAQs, 4)
}

func TestCreateFAQUsesCountAsOrder(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	first, err := svc.CreateFAQ(ctx, FAQRequest{Question: "Unu", Answer: "1"})
	require.NoError(t, err)
	second, err := svc.CreateFAQ(ctx, FAQRequest{Question: "Doi", Answer: "2"})
	require.NoError(t, err)

	assert.Equal(t, 0, first.DisplayOrder)
	assert.Equal(t, 1, second.DisplayOrder)
	assert.True(t, second.IsActive)
}

func TestUpdateAndDeleteMissingRowsReturnNotFound(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.UpdateService(ctx, uuid.New(), ServiceRequest{Title: "x", Description: "y", Icon: "z"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = svc.DeleteTestimonial(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestTestimonialRatingValidated(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	_, err := svc.CreateTestimonial(context.Background(), TestimonialRequest{Name: "Ana", Content: "Bun", Rating: 0})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestResolveLocationStoresPlace(t *testing.T) {
	places := &stubPlaces{details: &maps.PlaceDetails{
		PlaceID:          "ChIJ-marculesti",
		FormattedAddress: "Mărculești 927172, România",
		Location:         maps.LatLng{Latitude: 44.56, Longitude: 27.51},
	}}
	cache := newMemoryCache()
	svc, _ := newTestService(t, cache, places)
	ctx := context.Background()

	settings, err := svc.ResolveLocation(ctx, "ChIJ-marculesti")
	require.NoError(t, err)
	require.NotNil(t, settings.PlaceID)
	assert.Equal(t, "ChIJ-marculesti", *settings.PlaceID)
	assert.InDelta(t, 44.56, *settings.GeoLat, 1e-9)
	assert.Equal(t, "Mărculești 927172, România", settings.ContactAddress)
	assert.Equal(t, DefaultSettings().HeroTitle, settings.HeroTitle)
	assert.Equal(t, 1, cache.dels)

	suggestions, err := svc.Autocomplete(ctx, "  Mărc ")
	require.NoError(t, err)
	assert.Len(t, suggestions, 1)
	assert.Equal(t, "Mărc", places.gotReq.Input)
}

func TestLocationWithoutPlacesClient(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	_, err := svc.Autocomplete(context.Background(), "Mărculești")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestContactForFallsBackToPhoneForWhatsApp(t *testing.T) {
	links := ContactFor(SettingsDTO{ContactPhone: "0726 521 578", ContactEmail: "contact@ssmdetailing.ro"})
	assert.Equal(t, "https://wa.me/40726521578", links.WhatsAppLink)
	assert.Equal(t, "mailto:contact@ssmdetailing.ro", links.MailtoLink)
}

func strPtr(s string) *string { return &s }
