package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/ssmdetailing/ssm-backend/api/responses"
	"github.com/ssmdetailing/ssm-backend/internal/media"
	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

const (
	uploadField = "file"
	// multipartMemory is held in memory; larger parts spill to temp files.
	multipartMemory = 8 << 20
	// multipartOverhead leaves room for boundaries and the kind field.
	multipartOverhead = 1 << 20
)

// AdminMediaUploadVideo accepts a multipart "file" part and stores it as a reel video.
func AdminMediaUploadVideo(svc media.Service, cfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		file, header, cleanup, err := readUpload(w, r, cfg.MaxVideoBytes())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		asset, err := svc.UploadVideo(r.Context(), uploadInput(file, header))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, asset)
	}
}

// AdminMediaUploadImage stores an image resized for its kind (form field
// "kind", default portfolio_image).
func AdminMediaUploadImage(svc media.Service, cfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		file, header, cleanup, err := readUpload(w, r, cfg.MaxImageBytes())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		kind := enums.MediaKindPortfolioImage
		if raw := strings.TrimSpace(r.FormValue("kind")); raw != "" {
			parsed, err := enums.ParseMediaKind(raw)
			if err != nil || !parsed.IsImage() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid kind").
					WithDetails(map[string]any{"field": "kind"}))
				return
			}
			kind = parsed
		}

		asset, err := svc.UploadImage(r.Context(), kind, uploadInput(file, header))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, asset)
	}
}

func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, nil, pkgerrors.New(pkgerrors.CodeTooLarge, "fișierul depășește dimensiunea maximă permisă")
		}
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		_ = r.MultipartForm.RemoveAll()
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required").
			WithDetails(map[string]any{"field": uploadField})
	}
	cleanup := func() {
		_ = file.Close()
		_ = r.MultipartForm.RemoveAll()
	}
	return file, header, cleanup, nil
}

func uploadInput(file multipart.File, header *multipart.FileHeader) media.UploadInput {
	return media.UploadInput{
		FileName:  header.Filename,
		MimeType:  header.Header.Get("Content-Type"),
		SizeBytes: header.Size,
		Body:      file,
	}
}
