// Package gcs stores media objects in a Google Cloud Storage bucket through
// the JSON API. Requests are authorized by an oauth2 token source resolved
// from SSM_GCP_CREDENTIALS_JSON, a credentials file, or the metadata server.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

const (
	apiEndpoint   = "https://storage.googleapis.com"
	readWrite     = "https://www.googleapis.com/auth/devstorage.read_write"
	pingTimeout   = 5 * time.Second
	uploadTimeout = 5 * time.Minute
	errBodyLimit  = 2048
)

// Client talks to the GCS JSON API for a single bucket.
type Client struct {
	http       *http.Client
	bucket     string
	publicBase string
	endpoint   string
}

func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}
	ts, err := tokenSource(ctx, gcp)
	if err != nil {
		return nil, err
	}

	c := newClient(authorized(ts), cfg.BucketName, cfg.PublicBaseURL, apiEndpoint)
	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return c, nil
}

func newClient(hc *http.Client, bucket, publicBase, endpoint string) *Client {
	return &Client{
		http:       hc,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		endpoint:   strings.TrimRight(endpoint, "/"),
	}
}

// tokenSource prefers inline JSON, then a credentials file, then application
// default credentials (which covers the GCE/Cloud Run metadata server).
func tokenSource(ctx context.Context, gcp config.GCPConfig) (oauth2.TokenSource, error) {
	var raw []byte
	switch {
	case gcp.CredentialsJSON != "":
		raw = []byte(gcp.CredentialsJSON)
	case gcp.ApplicationCredentials != "":
		b, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		raw = b
	default:
		creds, err := google.FindDefaultCredentials(ctx, readWrite)
		if err != nil {
			return nil, fmt.Errorf("gcs default credentials: %w", err)
		}
		return creds.TokenSource, nil
	}

	creds, err := google.CredentialsFromJSON(ctx, raw, readWrite)
	if err != nil {
		return nil, fmt.Errorf("parsing gcs credentials: %w", err)
	}
	return creds.TokenSource, nil
}

func authorized(ts oauth2.TokenSource) *http.Client {
	return &http.Client{
		Timeout: uploadTimeout,
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
			Base:   http.DefaultTransport,
		},
	}
}

func (c *Client) Close() error {
	if c != nil && c.http != nil {
		c.http.CloseIdleConnections()
	}
	return nil
}

// Ping lists at most one object, which needs storage.objects.list on the bucket.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.http == nil {
		return errors.New("gcs client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, c.objectsURL("storage")+"?maxResults=1", nil, nil)
	if err != nil {
		return fmt.Errorf("gcs ping: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return statusError("gcs ping", resp)
	}
	return nil
}

// Put uploads body as key with a simple media upload.
func (c *Client) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	u := c.objectsURL("upload/storage") + "?uploadType=media&name=" + url.QueryEscape(key)
	resp, err := c.do(ctx, http.MethodPost, u, body, func(req *http.Request) {
		req.Header.Set("Content-Type", contentType)
		if size > 0 {
			req.ContentLength = size
		}
	})
	if err != nil {
		return fmt.Errorf("gcs upload %s: %w", key, err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return statusError("gcs upload", resp)
	}
	return nil
}

// Delete removes key. Missing objects are not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.objectsURL("storage")+"/"+url.PathEscape(key), nil, nil)
	if err != nil {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	defer drain(resp)
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	}
	return statusError("gcs delete", resp)
}

// PublicURL returns the public object URL for key.
func (c *Client) PublicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.publicPrefix() + strings.Join(segments, "/")
}

// KeyFromURL returns the object key when rawURL points into this bucket.
func (c *Client) KeyFromURL(rawURL string) (string, bool) {
	rest, ok := strings.CutPrefix(rawURL, c.publicPrefix())
	if !ok {
		return "", false
	}
	key, err := url.PathUnescape(rest)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

func (c *Client) publicPrefix() string {
	return c.publicBase + "/" + c.bucket + "/"
}

func (c *Client) objectsURL(api string) string {
	return fmt.Sprintf("%s/%s/v1/b/%s/o", c.endpoint, api, url.PathEscape(c.bucket))
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader, prepare func(*http.Request)) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if prepare != nil {
		prepare(req)
	}
	return c.http.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errBodyLimit))
	_ = resp.Body.Close()
}

func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	if msg := strings.TrimSpace(string(b)); msg != "" {
		return fmt.Errorf("%s: %s: %s", op, resp.Status, msg)
	}
	return fmt.Errorf("%s: %s", op, resp.Status)
}
