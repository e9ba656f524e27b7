package gcs

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/ssmdetailing/ssm-backend/pkg/config"
)

func testClient(srv *httptest.Server) *Client {
	hc := &http.Client{Transport: &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}),
		Base:   srv.Client().Transport,
	}}
	return newClient(hc, "ssm-media", "https://storage.googleapis.com/", srv.URL)
}

func TestPutUploadsObject(t *testing.T) {
	var gotName, gotType, gotBody, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload/storage/v1/b/ssm-media/o", r.URL.Path)
		gotName = r.URL.Query().Get("name")
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := testClient(srv).Put(context.Background(), "media/video/abc/clip.mp4", "video/mp4", strings.NewReader("bytes"), 5)
	require.NoError(t, err)
	assert.Equal(t, "media/video/abc/clip.mp4", gotName)
	assert.Equal(t, "video/mp4", gotType)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "bytes", gotBody)
}

func TestPutSurfacesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	err := testClient(srv).Put(context.Background(), "k", "image/jpeg", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestDeleteIgnoresMissingObjects(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		if strings.Contains(r.URL.Path, "gone") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := testClient(srv)
	require.NoError(t, c.Delete(context.Background(), "media/thumbnail/a/b.jpg"))
	require.NoError(t, c.Delete(context.Background(), "gone"))
	assert.Equal(t, "/storage/v1/b/ssm-media/o/media%2Fthumbnail%2Fa%2Fb.jpg", paths[0])
}

func TestPingListsOneObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage/v1/b/ssm-media/o", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("maxResults"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	require.NoError(t, testClient(srv).Ping(context.Background()))
}

func TestPingReportsDeniedBucket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	err := testClient(srv).Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPublicURLAndKeyFromURL(t *testing.T) {
	c := newClient(nil, "ssm-media", "https://storage.googleapis.com", apiEndpoint)
	u := c.PublicURL("media/portfolio_image/id/masina alba.jpg")
	assert.Equal(t, "https://storage.googleapis.com/ssm-media/media/portfolio_image/id/masina%20alba.jpg", u)

	key, ok := c.KeyFromURL(u)
	require.True(t, ok)
	assert.Equal(t, "media/portfolio_image/id/masina alba.jpg", key)

	_, ok = c.KeyFromURL("https://www.tiktok.com/@ssm/video/1")
	assert.False(t, ok)
	_, ok = c.KeyFromURL("https://storage.googleapis.com/other-bucket/x.jpg")
	assert.False(t, ok)
}

func TestServiceAccountCredentialsExchangeJWT(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.Form.Get("grant_type"))
		assert.Len(t, strings.Split(r.Form.Get("assertion"), "."), 3)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "sa-token", "token_type": "Bearer", "expires_in": 3600})
	}))
	defer srv.Close()

	creds, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"client_email": "uploader@ssm.iam.gserviceaccount.com",
		"private_key":  string(pemKey),
		"token_uri":    srv.URL,
	})
	require.NoError(t, err)

	ts, err := tokenSource(context.Background(), config.GCPConfig{CredentialsJSON: string(creds)})
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "sa-token", tok.AccessToken)
}

func TestTokenSourceRejectsBadCredentials(t *testing.T) {
	_, err := tokenSource(context.Background(), config.GCPConfig{CredentialsJSON: "{not json"})
	assert.Error(t, err)

	_, err = tokenSource(context.Background(), config.GCPConfig{ApplicationCredentials: "/nonexistent/creds.json"})
	assert.Error(t, err)
}

func TestNewClientRequiresBucket(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCSConfig{}, config.GCPConfig{}, nil)
	assert.Error(t, err)
}
