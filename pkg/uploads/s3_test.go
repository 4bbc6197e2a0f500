package uploads

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/etm-murmansk/site/pkg/config"
	"github.com/etm-murmansk/site/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ observability.Pinger = (*S3Store)(nil)

type capturedPut struct {
	method      string
	path        string
	contentType string
	body        []byte
}

func fakeS3(t *testing.T) (*httptest.Server, func() []capturedPut) {
	t.Helper()
	var (
		mu   sync.Mutex
		puts []capturedPut
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts = append(puts, capturedPut{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedPut {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedPut(nil), puts...)
	}
}

func TestS3Store_Put(t *testing.T) {
	srv, captured := fakeS3(t)

	cfg := config.Default().Upload
	cfg.Backend = "s3"
	cfg.S3Endpoint = srv.URL
	cfg.S3Bucket = "site-media"
	cfg.S3AccessKey = "access"
	cfg.S3SecretKey = "secret"
	cfg.S3PathStyle = true
	cfg.S3KeyPrefix = "uploads/"

	store, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	require.IsType(t, &S3Store{}, store)

	err = store.Put(context.Background(), "2026-02/img_a.png", bytes.NewReader(pngBytes), int64(len(pngBytes)), "image/png")
	require.NoError(t, err)

	puts := captured()
	require.Len(t, puts, 1)
	assert.Equal(t, http.MethodPut, puts[0].method)
	assert.Equal(t, "/site-media/uploads/2026-02/img_a.png", puts[0].path)
	assert.Equal(t, "image/png", puts[0].contentType)
	assert.True(t, bytes.Contains(puts[0].body, pngBytes[:8]))
}

func TestS3Store_HealthCheck(t *testing.T) {
	newStore := func(t *testing.T, endpoint string) *S3Store {
		cfg := config.Default().Upload
		cfg.S3Endpoint = endpoint
		cfg.S3Bucket = "site-media"
		cfg.S3AccessKey = "access"
		cfg.S3SecretKey = "secret"
		cfg.S3PathStyle = true
		store, err := NewS3Store(context.Background(), cfg)
		require.NoError(t, err)
		return store
	}

	srv, captured := fakeS3(t)
	require.NoError(t, newStore(t, srv.URL).HealthCheck(context.Background()))
	puts := captured()
	require.Len(t, puts, 1)
	assert.Equal(t, http.MethodHead, puts[0].method)
	assert.Equal(t, "/site-media", puts[0].path)

	missing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer missing.Close()
	err := newStore(t, missing.URL).HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 health check failed")
}

func TestNewStore_Filesystem(t *testing.T) {
	cfg := config.Default().Upload
	cfg.Dir = t.TempDir()

	store, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileSystemStore{}, store)

	cfg.Backend = "ftp"
	_, err = NewStore(context.Background(), cfg)
	assert.Error(t, err)
}
