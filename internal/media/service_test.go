package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
)

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) PublicURL(key string) string { return "https://cdn.test/" + key }

func (m *memoryStore) KeyFromURL(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, "https://cdn.test/") {
		return "", false
	}
	return strings.TrimPrefix(rawURL, "https://cdn.test/"), true
}

type memoryAssets struct {
	rows    map[string]*models.MediaAsset
	deleted []uuid.UUID
	refs    map[string]int64
}

func (m *memoryAssets) CountReferences(_ context.Context, publicURL string) (int64, error) {
	return m.refs[publicURL], nil
}

func (m *memoryAssets) Create(_ context.Context, asset *models.MediaAsset) error {
	m.rows[asset.GCSKey] = asset
	return nil
}

func (m *memoryAssets) FindByGCSKey(_ context.Context, key string) (*models.MediaAsset, error) {
	row, ok := m.rows[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (m *memoryAssets) MarkDeleted(_ context.Context, id uuid.UUID, _ time.Time) error {
	m.deleted = append(m.deleted, id)
	return nil
}

var testMediaConfig = config.MediaConfig{
	MaxVideoMB:     1,
	MaxImageMB:     1,
	ImageMaxWidth:  40,
	ImageMaxHeight: 40,
	ImageQuality:   80,
	ThumbnailWidth: 20,
}

func newTestService(t *testing.T, awaitFinalize bool) (Service, *memoryStore, *memoryAssets) {
	t.Helper()
	store := newMemoryStore()
	assets := &memoryAssets{rows: map[string]*models.MediaAsset{}}
	svc, err := NewService(ServiceParams{Repo: assets, Store: store, Config: testMediaConfig, AwaitFinalize: awaitFinalize})
	require.NoError(t, err)
	return svc, store, assets
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadVideoStoresPendingAsset(t *testing.T) {
	svc, store, assets := newTestService(t, true)
	body := []byte("fake-mp4")

	asset, err := svc.UploadVideo(context.Background(), UploadInput{
		FileName: "Plafon Înstelat.MP4", MimeType: "video/mp4", SizeBytes: int64(len(body)), Body: bytes.NewReader(body),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.MediaStatusPending, asset.Status)
	assert.True(t, strings.HasSuffix(asset.URL, "/plafon-instelat.mp4"), asset.URL)

	key, _ := store.KeyFromURL(asset.URL)
	assert.Equal(t, body, store.objects[key])
	assert.Equal(t, "video/mp4", store.types[key])
	assert.Contains(t, assets.rows, key)
}

func TestUploadVideoRejectsWrongTypeAndSize(t *testing.T) {
	svc, _, _ := newTestService(t, false)
	ctx := context.Background()

	_, err := svc.UploadVideo(ctx, UploadInput{FileName: "a.png", MimeType: "image/png", SizeBytes: 3, Body: strings.NewReader("abc")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnsupported))

	_, err = svc.UploadVideo(ctx, UploadInput{FileName: "a.mp4", MimeType: "video/mp4", SizeBytes: 2 << 20, Body: strings.NewReader("abc")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTooLarge))
}

func TestUploadImageResizesAndReencodes(t *testing.T) {
	svc, store, _ := newTestService(t, false)
	raw := pngBytes(t, 100, 50)

	asset, err := svc.UploadImage(context.Background(), enums.MediaKindPortfolioImage, UploadInput{
		FileName: "Înainte.png", MimeType: "image/png", SizeBytes: int64(len(raw)), Body: bytes.NewReader(raw),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.MediaStatusUploaded, asset.Status)
	assert.Equal(t, "image/jpeg", asset.MimeType)
	assert.True(t, strings.HasSuffix(asset.URL, "/inainte.jpg"), asset.URL)

	key, _ := store.KeyFromURL(asset.URL)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(store.objects[key]))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestUploadThumbnailUsesThumbnailWidth(t *testing.T) {
	svc, store, _ := newTestService(t, false)
	raw := pngBytes(t, 60, 120)

	asset, err := svc.UploadImage(context.Background(), enums.MediaKindThumbnail, UploadInput{
		FileName: "thumb.png", MimeType: "image/png", SizeBytes: int64(len(raw)), Body: bytes.NewReader(raw),
	})
	require.NoError(t, err)
	key, _ := store.KeyFromURL(asset.URL)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(store.objects[key]))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 40, cfg.Height)
}

func TestUploadImageRejectsUndecodableBody(t *testing.T) {
	svc, store, _ := newTestService(t, false)
	_, err := svc.UploadImage(context.Background(), enums.MediaKindPortfolioImage, UploadInput{
		FileName: "x.png", MimeType: "image/png", SizeBytes: 4, Body: strings.NewReader("nope"),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnsupported))
	assert.Empty(t, store.objects)

	_, err = svc.UploadImage(context.Background(), enums.MediaKindVideo, UploadInput{MimeType: "image/png", SizeBytes: 1, Body: strings.NewReader("x")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteByURLOnlyTouchesOwnedObjects(t *testing.T) {
	svc, store, assets := newTestService(t, false)
	ctx := context.Background()
	body := []byte("clip")
	asset, err := svc.UploadVideo(ctx, UploadInput{FileName: "c.mp4", MimeType: "video/mp4", SizeBytes: 4, Body: bytes.NewReader(body)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByURL(ctx, "https://www.tiktok.com/@ssm/video/1"))
	require.NoError(t, svc.DeleteByURL(ctx, ""))
	assert.Len(t, store.objects, 1)

	require.NoError(t, svc.DeleteByURL(ctx, asset.URL))
	assert.Empty(t, store.objects)
	assert.Equal(t, []uuid.UUID{asset.ID}, assets.deleted)
}

func TestDeleteByURLKeepsSharedObjects(t *testing.T) {
	svc, store, assets := newTestService(t, false)
	ctx := context.Background()
	asset, err := svc.UploadVideo(ctx, UploadInput{FileName: "c.mp4", MimeType: "video/mp4", SizeBytes: 4, Body: strings.NewReader("clip")})
	require.NoError(t, err)

	assets.refs = map[string]int64{asset.URL: 1}
	require.NoError(t, svc.DeleteByURL(ctx, asset.URL))
	assert.Len(t, store.objects, 1)
	assert.Empty(t, assets.deleted)

	assets.refs = nil
	require.NoError(t, svc.DeleteByURL(ctx, asset.URL))
	assert.Empty(t, store.objects)
	assert.Equal(t, []uuid.UUID{asset.ID}, assets.deleted)
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"Plafon Înstelat.mp4":     "plafon-instelat.mp4",
		"../../etc/passwd":        "passwd",
		`C:\Users\ion\Față.JPG`:   "fata.jpg",
		"  __.hidden  ":           "hidden",
		"recondiționare faruri!!": "reconditionare-faruri",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFileName(in), in)
	}
	assert.Equal(t, "", sanitizeFileName(""))
}
