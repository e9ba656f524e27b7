// Package seo assembles the sitemap and JSON-LD documents from live content
// and approved reviews.
package seo

import (
	"context"
	"strings"
	"time"

	"github.com/ssmdetailing/ssm-backend/internal/content"
	"github.com/ssmdetailing/ssm-backend/internal/reviews"
	"github.com/ssmdetailing/ssm-backend/pkg/phone"
	pkgseo "github.com/ssmdetailing/ssm-backend/pkg/seo"
)

const (
	businessName  = "SSM Detailing"
	alternateName = "SSM Detailing Mărculești"
	description   = "Servicii profesionale de detailing auto în Mărculești, Ialomița. Oferim detailing interior și exterior, plafoane starlight, recondiționare faruri."
	priceRange    = "$$"
	catalogName   = "Servicii Detailing Auto"

	locality = "Mărculești"
	region   = "Ialomița"
	country  = "RO"
)

type bundleSource interface {
	Bundle(ctx context.Context) content.Bundle
}

type reviewSource interface {
	Summary(ctx context.Context) (reviews.Summary, error)
	ListApproved(ctx context.Context, limit int) ([]reviews.ReviewDTO, error)
}

type Service struct {
	content bundleSource
	reviews reviewSource
	baseURL string
	now     func() time.Time
}

func NewService(contentSvc bundleSource, reviewSvc reviewSource, baseURL string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{content: contentSvc, reviews: reviewSvc, baseURL: strings.TrimRight(baseURL, "/"), now: now}
}

func (s *Service) Sitemap() ([]byte, error) {
	return pkgseo.Sitemap(s.baseURL, pkgseo.Pages, s.now())
}

func (s *Service) organizationID() string {
	return s.baseURL + "/#organization"
}

// Business builds the LocalBusiness document. Review aggregates are omitted
// when the reviews store is unavailable or empty.
func (s *Service) Business(ctx context.Context) pkgseo.LocalBusiness {
	bundle := s.content.Bundle(ctx)
	settings := bundle.Settings

	biz := pkgseo.NewLocalBusiness(s.organizationID(), businessName)
	biz.AlternateName = alternateName
	biz.Description = description
	biz.URL = s.baseURL
	biz.Image = s.baseURL + "/og-image.svg"
	biz.PriceRange = priceRange
	if n := phone.WhatsApp(settings.ContactPhone); n != "" {
		biz.Telephone = "+" + n
	}
	biz.Email = settings.ContactEmail
	biz.Address = pkgseo.NewAddress(settings.ContactAddress, locality, region, country)
	if settings.GeoLat != nil && settings.GeoLng != nil {
		biz.Geo = pkgseo.NewGeo(*settings.GeoLat, *settings.GeoLng)
	}
	biz.OpeningHours = []pkgseo.OpeningHours{
		pkgseo.NewOpeningHours("09:00", "18:00", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"),
		pkgseo.NewOpeningHours("09:00", "14:00", "Saturday"),
	}
	for _, link := range []string{settings.InstagramURL, settings.FacebookURL, settings.TiktokURL} {
		if strings.TrimSpace(link) != "" {
			biz.SameAs = append(biz.SameAs, link)
		}
	}
	if len(bundle.Services) > 0 {
		catalog := &pkgseo.OfferCatalog{Type: "OfferCatalog", Name: catalogName}
		for _, svc := range bundle.Services {
			catalog.Items = append(catalog.Items, pkgseo.NewOffer(svc.Title, svc.Description))
		}
		biz.OfferCatalog = catalog
	}
	if summary, err := s.reviews.Summary(ctx); err == nil {
		biz.AggregateRating = pkgseo.NewAggregateRating(summary.Average, summary.Count)
	}
	return biz
}

// Reviews builds the review page document: aggregate plus each approved review.
func (s *Service) Reviews(ctx context.Context) (pkgseo.LocalBusiness, error) {
	doc := pkgseo.NewLocalBusiness(s.organizationID(), businessName)
	summary, err := s.reviews.Summary(ctx)
	if err != nil {
		return doc, err
	}
	doc.AggregateRating = pkgseo.NewAggregateRating(summary.Average, summary.Count)

	approved, err := s.reviews.ListApproved(ctx, reviews.MaxListLimit)
	if err != nil {
		return doc, err
	}
	for _, r := range approved {
		doc.Reviews = append(doc.Reviews, pkgseo.NewReview(r.AuthorName, r.Message, r.Rating, r.CreatedAt.UTC().Format(time.DateOnly)))
	}
	return doc, nil
}
