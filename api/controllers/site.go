package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ssmdetailing/ssm-backend/api/responses"
	"github.com/ssmdetailing/ssm-backend/internal/content"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	pkgseo "github.com/ssmdetailing/ssm-backend/pkg/seo"
)

// SEODocuments renders the sitemap and JSON-LD documents.
type SEODocuments interface {
	Sitemap() ([]byte, error)
	Business(ctx context.Context) pkgseo.LocalBusiness
	Reviews(ctx context.Context) (pkgseo.LocalBusiness, error)
}

// SiteBundle serves everything the public pages render. The bundle always
// succeeds; missing sections fall back to defaults and set Degraded.
func SiteBundle(svc content.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=60")
		responses.WriteSuccess(w, svc.Bundle(r.Context()))
	}
}

func SiteSchema(svc SEODocuments, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seo service unavailable"))
			return
		}
		writeJSONLD(w, svc.Business(r.Context()))
	}
}

func ReviewsSchema(svc SEODocuments, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seo service unavailable"))
			return
		}
		doc, err := svc.Reviews(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeJSONLD(w, doc)
	}
}

func Sitemap(svc SEODocuments, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seo service unavailable"))
			return
		}
		body, err := svc.Sitemap()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render sitemap"))
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// JSON-LD is embedded verbatim into a script tag, so it is not wrapped in
// the data envelope.
func writeJSONLD(w http.ResponseWriter, doc any) {
	w.Header().Set("Content-Type", "application/ld+json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(doc)
}
