package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

type assetRepository interface {
	Create(ctx context.Context, asset *models.MediaAsset) error
	FindByGCSKey(ctx context.Context, gcsKey string) (*models.MediaAsset, error)
	MarkDeleted(ctx context.Context, id uuid.UUID, at time.Time) error
	CountReferences(ctx context.Context, publicURL string) (int64, error)
}

type objectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(rawURL string) (string, bool)
}

// Service uploads media for the admin editors and removes owned objects.
type Service interface {
	UploadVideo(ctx context.Context, in UploadInput) (*Asset, error)
	UploadImage(ctx context.Context, kind enums.MediaKind, in UploadInput) (*Asset, error)
	DeleteByURL(ctx context.Context, rawURL string) error
}

// UploadInput is one multipart file.
type UploadInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
	Body      io.Reader
}

// Asset is returned to the admin UI after an upload.
type Asset struct {
	ID        uuid.UUID         `json:"id"`
	Kind      enums.MediaKind   `json:"kind"`
	URL       string            `json:"url"`
	MimeType  string            `json:"mime_type"`
	SizeBytes int64             `json:"size_bytes"`
	Status    enums.MediaStatus `json:"status"`
}

type ServiceParams struct {
	Repo   assetRepository
	Store  objectStore
	Config config.MediaConfig
	// AwaitFinalize keeps new rows pending until the storage notification
	// confirms the object (GCS). The local driver confirms synchronously.
	AwaitFinalize bool
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	repo          assetRepository
	store         objectStore
	cfg           config.MediaConfig
	awaitFinalize bool
	logg          *logger.Logger
	now           func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:          params.Repo,
		store:         params.Store,
		cfg:           params.Config,
		awaitFinalize: params.AwaitFinalize,
		logg:          params.Logger,
		now:           now,
	}, nil
}

func (s *service) UploadVideo(ctx context.Context, in UploadInput) (*Asset, error) {
	mimeType, err := s.check(enums.MediaKindVideo, in, s.cfg.MaxVideoBytes())
	if err != nil {
		return nil, err
	}
	body := io.LimitReader(in.Body, in.SizeBytes)
	return s.persist(ctx, enums.MediaKindVideo, in.FileName, mimeType, body, in.SizeBytes)
}

func (s *service) UploadImage(ctx context.Context, kind enums.MediaKind, in UploadInput) (*Asset, error) {
	if !kind.IsImage() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}
	if _, err := s.check(kind, in, s.cfg.MaxImageBytes()); err != nil {
		return nil, err
	}

	limits := imageLimits{maxWidth: s.cfg.ImageMaxWidth, maxHeight: s.cfg.ImageMaxHeight, quality: s.cfg.ImageQuality}
	if kind == enums.MediaKindThumbnail {
		limits.maxWidth, limits.maxHeight = s.cfg.ThumbnailWidth, 0
	}
	encoded, err := processImage(io.LimitReader(in.Body, s.cfg.MaxImageBytes()), limits)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnsupported, err, "imaginea nu a putut fi procesată")
	}
	name := withExtension(sanitizeFileName(in.FileName), ".jpg")
	return s.persist(ctx, kind, name, "image/jpeg", bytes.NewReader(encoded), int64(len(encoded)))
}

func (s *service) check(kind enums.MediaKind, in UploadInput, maxBytes int64) (string, error) {
	if in.Body == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	mimeType, err := sniffMimeType(in.MimeType)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnsupported, err, "tip de fișier invalid")
	}
	if !isAllowedMime(kind, mimeType) {
		return "", pkgerrors.New(pkgerrors.CodeUnsupported, "sunt acceptate "+allowedMimeDescription(kind))
	}
	if in.SizeBytes <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "fișierul este gol")
	}
	if in.SizeBytes > maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeTooLarge, fmt.Sprintf("fișierul depășește %d MB", maxBytes>>20))
	}
	return mimeType, nil
}

func (s *service) persist(ctx context.Context, kind enums.MediaKind, fileName, mimeType string, body io.Reader, size int64) (*Asset, error) {
	id := uuid.New()
	key := buildGCSKey(kind, id, fileName)
	if err := s.store.Put(ctx, key, mimeType, body, size); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload object")
	}

	row := &models.MediaAsset{
		ID:        id,
		Kind:      kind,
		GCSKey:    key,
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: size,
		PublicURL: s.store.PublicURL(key),
		Status:    enums.MediaStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if !s.awaitFinalize {
		at := s.now().UTC()
		row.Status = enums.MediaStatusUploaded
		row.UploadedAt = &at
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil && s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "gcs_key", key), "remove orphaned object", delErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist media row")
	}
	return &Asset{
		ID:        row.ID,
		Kind:      row.Kind,
		URL:       row.PublicURL,
		MimeType:  row.MimeType,
		SizeBytes: row.SizeBytes,
		Status:    row.Status,
	}, nil
}

// DeleteByURL removes an object this service owns once no reel, portfolio
// item or testimonial references it any more. Foreign URLs (TikTok, YouTube,
// other CDNs) and empty values are ignored.
func (s *service) DeleteByURL(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}
	key, owned := s.store.KeyFromURL(rawURL)
	if !owned {
		return nil
	}
	refs, err := s.repo.CountReferences(ctx, rawURL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count media references")
	}
	if refs > 0 {
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "url", rawURL), "media.delete_skipped_shared")
		}
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
	}
	row, err := s.repo.FindByGCSKey(ctx, key)
	if err != nil {
		if db.IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load media row")
	}
	if err := s.repo.MarkDeleted(ctx, row.ID, s.now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark media deleted")
	}
	return nil
}
