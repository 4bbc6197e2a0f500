package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) (*Client, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	opts = append([]Option{withSleeper(rec.sleep), WithLogger(quietLogger())}, opts...)
	c, err := New(baseURL, opts...)
	require.NoError(t, err)
	return c, rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNew_ValidatesBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)

	c, err := New("https://etm-murmansk.ru/api")
	require.NoError(t, err)
	assert.Equal(t, "https://etm-murmansk.ru/api/projects?limit=5", c.url("projects", map[string][]string{"limit": {"5"}}))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Внутренняя ошибка сервера"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "total": 0, "limit": 100, "offset": 0})
	}))
	defer srv.Close()

	c, rec := newTestClient(t, srv.URL+"/api/")
	page, err := c.List(context.Background(), Projects, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream"})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, WithRetries(1, 10*time.Millisecond))
	err := c.Delete(context.Background(), Projects, "4")
	require.Error(t, err)
	assert.Equal(t, KindServer, KindOf(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_NoRetryOnClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, KindUnauthorized},
		{"not found", http.StatusNotFound, KindNotFound},
		{"validation", http.StatusUnprocessableEntity, KindOther},
		{"bad request", http.StatusBadRequest, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				writeJSON(w, tt.status, map[string]string{"error": "нет"})
			}))
			defer srv.Close()

			c, rec := newTestClient(t, srv.URL)
			_, err := c.Create(context.Background(), Partners, map[string]string{"name": "x"})
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "нет", apiErr.Message)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
			assert.Empty(t, rec.delays)
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, rec := newTestClient(t, url)
	_, err := c.List(context.Background(), Projects, ListOptions{})
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Len(t, rec.delays, DefaultRetries)
}

func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	store := NewMemoryTokenStore()
	require.NoError(t, store.Save(Session{Token: "abc123"}))
	c, _ := newTestClient(t, srv.URL, WithTokenStore(store))

	require.NoError(t, c.Update(context.Background(), Projects, "7", map[string]any{"title": "ТЭЦ"}))
	assert.Equal(t, "Bearer abc123", got)
}

func TestClient_CacheAndInvalidation(t *testing.T) {
	var projectCalls, partnerCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects":
			atomic.AddInt32(&projectCalls, 1)
			writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "total": 0})
		case r.Method == http.MethodGet && r.URL.Path == "/api/partners":
			atomic.AddInt32(&partnerCalls, 1)
			writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "total": 0})
		case r.Method == http.MethodPost:
			writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": "9"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c, _ := newTestClient(t, srv.URL+"/api", WithCache(16, time.Minute))

	for i := 0; i < 3; i++ {
		_, err := c.List(ctx, Projects, ListOptions{Limit: 10})
		require.NoError(t, err)
		_, err = c.List(ctx, Partners, ListOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&projectCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&partnerCalls))

	_, err := c.List(ctx, Projects, ListOptions{Limit: 10, NoCache: true})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&projectCalls))

	id, err := c.Create(ctx, Projects, map[string]any{"title": "Подстанция"})
	require.NoError(t, err)
	assert.Equal(t, "9", id)

	_, err = c.List(ctx, Projects, ListOptions{Limit: 10})
	require.NoError(t, err)
	_, err = c.List(ctx, Partners, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&projectCalls), "projects cache is dropped after a write")
	assert.Equal(t, int32(1), atomic.LoadInt32(&partnerCalls), "other collections stay cached")
}

func TestClient_CacheExpires(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusOK, map[string]any{"id": "1", "title": "Проект"})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, WithCache(4, 20*time.Millisecond))
	var rec struct {
		Title string `json:"title"`
	}
	_, err := c.Get(context.Background(), Projects, "1", &rec)
	require.NoError(t, err)
	assert.Equal(t, "Проект", rec.Title)

	assert.Eventually(t, func() bool {
		_, err := c.Get(context.Background(), Projects, "1", nil)
		return err == nil && atomic.LoadInt32(&calls) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestClient_EmptyID(t *testing.T) {
	c, _ := newTestClient(t, "http://localhost")
	assert.Error(t, c.Delete(context.Background(), Projects, ""))
	assert.Error(t, c.Update(context.Background(), Projects, "", nil))
	_, err := c.Get(context.Background(), Projects, "", nil)
	assert.Error(t, err)
}

func TestClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		writeJSON(w, http.StatusCreated, UploadResult{
			Success:  true,
			URL:      "uploads/2026-10/img_1.png",
			Filename: "img_1.png",
			Size:     int64(len(data)),
			MIME:     "image/png",
		})
		assert.Equal(t, "logo.png", hdr.Filename)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	res, err := c.Upload(context.Background(), "logo.png", stringsReader("\x89PNG fake"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/2026-10/img_1.png", res.URL)
	assert.Equal(t, int64(9), res.Size)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{401, KindUnauthorized},
		{404, KindNotFound},
		{500, KindServer},
		{503, KindServer},
		{400, KindOther},
		{429, KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, statusError(tt.status, "").Kind)
		})
	}
	assert.Equal(t, "HTTP 404: Not Found", statusError(404, "").Error())
	assert.Equal(t, "HTTP 404: Проект не найден", statusError(404, "Проект не найден").Error())
}
