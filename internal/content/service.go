package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	dbtypes "github.com/ssmdetailing/ssm-backend/pkg/db/types"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	"github.com/ssmdetailing/ssm-backend/pkg/maps"
	"github.com/ssmdetailing/ssm-backend/pkg/phone"
)

const (
	bundleCacheName = "site_bundle"

	PartSettings     = "settings"
	PartServices     = "services"
	PartTestimonials = "testimonials"
	PartFAQs         = "faqs"
)

// Service exposes the landing page content and its admin editing surface.
type Service interface {
	Bundle(ctx context.Context) Bundle
	Invalidate(ctx context.Context)

	GetSettings(ctx context.Context) (SettingsDTO, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsDTO, error)

	ListServices(ctx context.Context) ([]ServiceDTO, error)
	CreateService(ctx context.Context, req ServiceRequest) (ServiceDTO, error)
	UpdateService(ctx context.Context, id uuid.UUID, req ServiceRequest) (ServiceDTO, error)
	DeleteService(ctx context.Context, id uuid.UUID) error

	ListFAQs(ctx context.Context) ([]FAQDTO, error)
	CreateFAQ(ctx context.Context, req FAQRequest) (FAQDTO, error)
	UpdateFAQ(ctx context.Context, id uuid.UUID, req FAQRequest) (FAQDTO, error)
	DeleteFAQ(ctx context.Context, id uuid.UUID) error

	ListTestimonials(ctx context.Context) ([]TestimonialDTO, error)
	CreateTestimonial(ctx context.Context, req TestimonialRequest) (TestimonialDTO, error)
	UpdateTestimonial(ctx context.Context, id uuid.UUID, req TestimonialRequest) (TestimonialDTO, error)
	DeleteTestimonial(ctx context.Context, id uuid.UUID) error

	Autocomplete(ctx context.Context, input string) ([]maps.AutocompleteSuggestion, error)
	ResolveLocation(ctx context.Context, placeID string) (SettingsDTO, error)
}

type repository interface {
	GetSettings(ctx context.Context) (*models.SiteSettings, error)
	SaveSettings(ctx context.Context, settings *models.SiteSettings) error

	ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error)
	FindService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	CreateService(ctx context.Context, svc *models.Service) error
	UpdateService(ctx context.Context, svc *models.Service) error
	DeleteService(ctx context.Context, id uuid.UUID) error

	ListFAQs(ctx context.Context, activeOnly bool) ([]models.FAQItem, error)
	FindFAQ(ctx context.Context, id uuid.UUID) (*models.FAQItem, error)
	CountFAQs(ctx context.Context) (int, error)
	CreateFAQ(ctx context.Context, faq *models.FAQItem) error
	UpdateFAQ(ctx context.Context, faq *models.FAQItem) error
	DeleteFAQ(ctx context.Context, id uuid.UUID) error

	ListTestimonials(ctx context.Context, activeOnly bool) ([]models.Testimonial, error)
	FindTestimonial(ctx context.Context, id uuid.UUID) (*models.Testimonial, error)
	CreateTestimonial(ctx context.Context, t *models.Testimonial) error
	UpdateTestimonial(ctx context.Context, t *models.Testimonial) error
	DeleteTestimonial(ctx context.Context, id uuid.UUID) error
}

// Cache is the subset of the redis client used for the bundle.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(name string) string
}

// Places resolves business addresses.
type Places interface {
	Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error)
	ResolvePlace(ctx context.Context, placeID string) (*maps.PlaceDetails, error)
}

type ServiceParams struct {
	Repo     repository
	Cache    Cache
	Places   Places
	Logger   *logger.Logger
	CacheTTL time.Duration
}

type service struct {
	repo   repository
	cache  Cache
	places Places
	logg   *logger.Logger
	ttl    time.Duration
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("content repository is required")
	}
	return &service{
		repo:   params.Repo,
		cache:  params.Cache,
		places: params.Places,
		logg:   params.Logger,
		ttl:    params.CacheTTL,
	}, nil
}

// Bundle never fails: unreadable parts are replaced by defaults and only a
// complete bundle is cached.
func (s *service) Bundle(ctx context.Context) Bundle {
	if cached, ok := s.cachedBundle(ctx); ok {
		return cached
	}

	var (
		bundle   Bundle
		mu       sync.Mutex
		fallback []string
	)
	markFallback := func(part string, err error) {
		mu.Lock()
		fallback = append(fallback, part)
		mu.Unlock()
		if err != nil {
			s.warn(ctx, part, err)
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		row, err := s.repo.GetSettings(ctx)
		if err != nil {
			if db.IsNotFound(err) {
				err = nil
			}
			bundle.Settings = DefaultSettings()
			markFallback(PartSettings, err)
			return nil
		}
		bundle.Settings = settingsFromModel(row)
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ListServices(ctx, true)
		if err != nil || len(rows) == 0 {
			bundle.Services = DefaultServices()
			markFallback(PartServices, err)
			return nil
		}
		bundle.Services = mapSlice(rows, serviceFromModel)
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ListTestimonials(ctx, true)
		if err != nil || len(rows) == 0 {
			bundle.Testimonials = DefaultTestimonials()
			markFallback(PartTestimonials, err)
			return nil
		}
		bundle.Testimonials = mapSlice(rows, testimonialFromModel)
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ListFAQs(ctx, true)
		if err != nil || len(rows) == 0 {
			bundle.FAQs = DefaultFAQs()
			markFallback(PartFAQs, err)
			return nil
		}
		bundle.FAQs = mapSlice(rows, faqFromModel)
		return nil
	})
	_ = g.Wait()

	bundle.Contact = ContactFor(bundle.Settings)
	bundle.Fallback = sortedParts(fallback)
	if len(bundle.Fallback) == 0 {
		s.storeBundle(ctx, bundle)
	}
	return bundle
}

// ContactFor derives display and link forms of the contact details.
func ContactFor(settings SettingsDTO) ContactLinks {
	whatsapp := settings.WhatsappNumber
	if whatsapp == "" {
		whatsapp = settings.ContactPhone
	}
	links := ContactLinks{
		DisplayPhone: phone.Display(settings.ContactPhone),
		TelLink:      phone.TelLink(settings.ContactPhone),
		WhatsAppLink: phone.WhatsAppLink(whatsapp),
		Email:        settings.ContactEmail,
	}
	if settings.ContactEmail != "" {
		links.MailtoLink = "mailto:" + settings.ContactEmail
	}
	return links
}

func sortedParts(parts []string) []string {
	if len(parts) == 0 {
		return nil
	}
	order := []string{PartSettings, PartServices, PartTestimonials, PartFAQs}
	out := make([]string, 0, len(parts))
	for _, p := range order {
		for _, got := range parts {
			if got == p {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func (s *service) cachedBundle(ctx context.Context) (Bundle, bool) {
	if s.cache == nil {
		return Bundle{}, false
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(bundleCacheName))
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.warn(ctx, "cache_read", err)
		}
		return Bundle{}, false
	}
	var bundle Bundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		s.warn(ctx, "cache_decode", err)
		return Bundle{}, false
	}
	return bundle, true
}

func (s *service) storeBundle(ctx context.Context, bundle Bundle) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(bundle)
	if err != nil {
		s.warn(ctx, "cache_encode", err)
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey(bundleCacheName), payload, s.ttl); err != nil {
		s.warn(ctx, "cache_write", err)
	}
}

// Invalidate drops the cached bundle; failures are logged only.
func (s *service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.CacheKey(bundleCacheName)); err != nil {
		s.warn(ctx, "cache_invalidate", err)
	}
}

func (s *service) warn(ctx context.Context, part string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"part": part, "error": err.Error()})
	s.logg.Warn(ctx, "content degraded")
}

func (s *service) GetSettings(ctx context.Context) (SettingsDTO, error) {
	row, err := s.repo.GetSettings(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			return DefaultSettings(), nil
		}
		return SettingsDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load settings")
	}
	return settingsFromModel(row), nil
}

// loadOrSeedSettings returns the stored row or a new unsaved one carrying
// the defaults.
func (s *service) loadOrSeedSettings(ctx context.Context) (*models.SiteSettings, error) {
	row, err := s.repo.GetSettings(ctx)
	if err == nil {
		return row, nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load settings")
	}
	d := DefaultSettings()
	return &models.SiteSettings{
		HeroEyebrow:       d.HeroEyebrow,
		HeroTitle:         d.HeroTitle,
		HeroSubtitle:      d.HeroSubtitle,
		HeroCTAPrimary:    d.HeroCTAPrimary,
		HeroCTASecondary:  d.HeroCTASecondary,
		AboutEyebrow:      d.AboutEyebrow,
		AboutTitle:        d.AboutTitle,
		AboutIntro:        d.AboutIntro,
		AboutWhatWeDo:     dbtypes.StringList(d.AboutWhatWeDo),
		AboutWhatWeDontDo: dbtypes.StringList(d.AboutWhatWeDontDo),
		AboutMotto:        d.AboutMotto,
		ContactPhone:      d.ContactPhone,
		ContactEmail:      d.ContactEmail,
		ContactAddress:    d.ContactAddress,
		WhatsappNumber:    d.WhatsappNumber,
		FacebookURL:       d.FacebookURL,
		InstagramURL:      d.InstagramURL,
		TiktokURL:         d.TiktokURL,
		FooterTagline:     d.FooterTagline,
		FooterDescription: d.FooterDescription,
	}, nil
}

func (s *service) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsDTO, error) {
	row, err := s.loadOrSeedSettings(ctx)
	if err != nil {
		return SettingsDTO{}, err
	}
	applyString(&row.HeroEyebrow, req.HeroEyebrow)
	applyString(&row.HeroTitle, req.HeroTitle)
	applyString(&row.HeroSubtitle, req.HeroSubtitle)
	applyString(&row.HeroCTAPrimary, req.HeroCTAPrimary)
	applyString(&row.HeroCTASecondary, req.HeroCTASecondary)
	applyString(&row.AboutEyebrow, req.AboutEyebrow)
	applyString(&row.AboutTitle, req.AboutTitle)
	applyString(&row.AboutIntro, req.AboutIntro)
	applyList(&row.AboutWhatWeDo, req.AboutWhatWeDo)
	applyList(&row.AboutWhatWeDontDo, req.AboutWhatWeDontDo)
	applyString(&row.AboutMotto, req.AboutMotto)
	applyString(&row.ContactPhone, req.ContactPhone)
	applyString(&row.ContactEmail, req.ContactEmail)
	applyString(&row.ContactAddress, req.ContactAddress)
	applyString(&row.WhatsappNumber, req.WhatsappNumber)
	applyString(&row.FacebookURL, req.FacebookURL)
	applyString(&row.InstagramURL, req.InstagramURL)
	applyString(&row.TiktokURL, req.TiktokURL)
	applyString(&row.FooterTagline, req.FooterTagline)
	applyString(&row.FooterDescription, req.FooterDescription)

	if err := s.repo.SaveSettings(ctx, row); err != nil {
		return SettingsDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save settings")
	}
	s.Invalidate(ctx)
	return settingsFromModel(row), nil
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func applyList(dst *dbtypes.StringList, v *[]string) {
	if v != nil {
		*dst = cleanList(*v)
	}
}

func cleanList(in []string) dbtypes.StringList {
	out := make(dbtypes.StringList, 0, len(in))
	for _, item := range in {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (s *service) ListServices(ctx context.Context) ([]ServiceDTO, error) {
	rows, err := s.repo.ListServices(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list services")
	}
	return mapSlice(rows, serviceFromModel), nil
}

func (s *service) CreateService(ctx context.Context, req ServiceRequest) (ServiceDTO, error) {
	row := &models.Service{IsActive: true}
	applyServiceRequest(row, req)
	if err := s.repo.CreateService(ctx, row); err != nil {
		return ServiceDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create service")
	}
	s.Invalidate(ctx)
	return serviceFromModel(*row), nil
}

func (s *service) UpdateService(ctx context.Context, id uuid.UUID, req ServiceRequest) (ServiceDTO, error) {
	row, err := s.repo.FindService(ctx, id)
	if err != nil {
		return ServiceDTO{}, notFoundOr(err, "service", "load service")
	}
	applyServiceRequest(row, req)
	if err := s.repo.UpdateService(ctx, row); err != nil {
		return ServiceDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update service")
	}
	s.Invalidate(ctx)
	return serviceFromModel(*row), nil
}

func (s *service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return notFoundOr(err, "service", "delete service")
	}
	s.Invalidate(ctx)
	return nil
}

func applyServiceRequest(row *models.Service, req ServiceRequest) {
	row.Title = strings.TrimSpace(req.Title)
	row.Description = strings.TrimSpace(req.Description)
	row.Icon = strings.TrimSpace(req.Icon)
	row.Features = cleanList(req.Features)
	row.Price = trimmedPtr(req.Price)
	row.Duration = trimmedPtr(req.Duration)
	if req.DisplayOrder != nil {
		row.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		row.IsActive = *req.IsActive
	}
}

func (s *service) ListFAQs(ctx context.Context) ([]FAQDTO, error) {
	rows, err := s.repo.ListFAQs(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list faqs")
	}
	return mapSlice(rows, faqFromModel), nil
}

func (s *service) CreateFAQ(ctx context.Context, req FAQRequest) (FAQDTO, error) {
	row := &models.FAQItem{IsActive: true}
	applyFAQRequest(row, req)
	if req.DisplayOrder == nil {
		count, err := s.repo.CountFAQs(ctx)
		if err != nil {
			return FAQDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count faqs")
		}
		row.DisplayOrder = count
	}
	if err := s.repo.CreateFAQ(ctx, row); err != nil {
		return FAQDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create faq")
	}
	s.Invalidate(ctx)
	return faqFromModel(*row), nil
}

func (s *service) UpdateFAQ(ctx context.Context, id uuid.UUID, req FAQRequest) (FAQDTO, error) {
	row, err := s.repo.FindFAQ(ctx, id)
	if err != nil {
		return FAQDTO{}, notFoundOr(err, "faq", "load faq")
	}
	applyFAQRequest(row, req)
	if err := s.repo.UpdateFAQ(ctx, row); err != nil {
		return FAQDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update faq")
	}
	s.Invalidate(ctx)
	return faqFromModel(*row), nil
}

func (s *service) DeleteFAQ(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteFAQ(ctx, id); err != nil {
		return notFoundOr(err, "faq", "delete faq")
	}
	s.Invalidate(ctx)
	return nil
}

func applyFAQRequest(row *models.FAQItem, req FAQRequest) {
	row.Question = strings.TrimSpace(req.Question)
	row.Answer = strings.TrimSpace(req.Answer)
	if req.DisplayOrder != nil {
		row.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		row.IsActive = *req.IsActive
	}
}

func (s *service) ListTestimonials(ctx context.Context) ([]TestimonialDTO, error) {
	rows, err := s.repo.ListTestimonials(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list testimonials")
	}
	return mapSlice(rows, testimonialFromModel), nil
}

func (s *service) CreateTestimonial(ctx context.Context, req TestimonialRequest) (TestimonialDTO, error) {
	row := &models.Testimonial{IsActive: true}
	if err := applyTestimonialRequest(row, req); err != nil {
		return TestimonialDTO{}, err
	}
	if err := s.repo.CreateTestimonial(ctx, row); err != nil {
		return TestimonialDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create testimonial")
	}
	s.Invalidate(ctx)
	return testimonialFromModel(*row), nil
}

func (s *service) UpdateTestimonial(ctx context.Context, id uuid.UUID, req TestimonialRequest) (TestimonialDTO, error) {
	row, err := s.repo.FindTestimonial(ctx, id)
	if err != nil {
		return TestimonialDTO{}, notFoundOr(err, "testimonial", "load testimonial")
	}
	if err := applyTestimonialRequest(row, req); err != nil {
		return TestimonialDTO{}, err
	}
	if err := s.repo.UpdateTestimonial(ctx, row); err != nil {
		return TestimonialDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update testimonial")
	}
	s.Invalidate(ctx)
	return testimonialFromModel(*row), nil
}

func (s *service) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteTestimonial(ctx, id); err != nil {
		return notFoundOr(err, "testimonial", "delete testimonial")
	}
	s.Invalidate(ctx)
	return nil
}

func applyTestimonialRequest(row *models.Testimonial, req TestimonialRequest) error {
	if req.Rating < 1 || req.Rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	row.Name = strings.TrimSpace(req.Name)
	row.Role = strings.TrimSpace(req.Role)
	row.Content = strings.TrimSpace(req.Content)
	row.Rating = req.Rating
	row.ImageURL = trimmedPtr(req.ImageURL)
	if req.DisplayOrder != nil {
		row.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		row.IsActive = *req.IsActive
	}
	return nil
}

func (s *service) Autocomplete(ctx context.Context, input string) ([]maps.AutocompleteSuggestion, error) {
	if s.places == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "places lookup is not configured")
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "input is required")
	}
	return s.places.Autocomplete(ctx, maps.AutocompleteRequest{Input: input})
}

// ResolveLocation stores the place id, coordinates and formatted address
// on the settings row.
func (s *service) ResolveLocation(ctx context.Context, placeID string) (SettingsDTO, error) {
	if s.places == nil {
		return SettingsDTO{}, pkgerrors.New(pkgerrors.CodeDependency, "places lookup is not configured")
	}
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return SettingsDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "place_id is required")
	}
	details, err := s.places.ResolvePlace(ctx, placeID)
	if err != nil {
		return SettingsDTO{}, err
	}

	row, err := s.loadOrSeedSettings(ctx)
	if err != nil {
		return SettingsDTO{}, err
	}
	id := details.PlaceID
	if id == "" {
		id = placeID
	}
	lat, lng := details.Location.Latitude, details.Location.Longitude
	row.PlaceID = &id
	row.GeoLat = &lat
	row.GeoLng = &lng
	if addr := strings.TrimSpace(details.FormattedAddress); addr != "" {
		row.ContactAddress = addr
	}
	if err := s.repo.SaveSettings(ctx, row); err != nil {
		return SettingsDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save settings location")
	}
	s.Invalidate(ctx)
	return settingsFromModel(row), nil
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func notFoundOr(err error, entity, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
