// Package storage selects the object store backing uploaded media.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	"github.com/ssmdetailing/ssm-backend/pkg/storage/gcs"
	"github.com/ssmdetailing/ssm-backend/pkg/storage/local"
)

// Storage is the object store surface used by the media service.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	// KeyFromURL reports whether rawURL points at an object this store owns.
	KeyFromURL(rawURL string) (string, bool)
	Ping(ctx context.Context) error
}

// New builds the driver named by SSM_STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverGCS:
		return gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	case config.StorageDriverLocal:
		return local.New(cfg.Storage.LocalDir, cfg.Storage.LocalBaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
