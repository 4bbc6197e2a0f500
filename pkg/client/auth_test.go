package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}

// fakeAPI answers the auth routes for a single valid token
type fakeAPI struct {
	token      string
	logoutHits int
	checkHits  int
	failCheck  int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authorized := r.Header.Get("Authorization") == "Bearer "+f.token
	switch r.URL.Path {
	case "/api/auth/login":
		if strings.Contains(readAll(r), `"password":"correct"`) {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":    true,
				"token":      f.token,
				"expires_at": "2026-10-16T10:00:00Z",
				"login":      "admin",
			})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Неверный логин или пароль"})
	case "/api/auth/logout":
		f.logoutHits++
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Выход выполнен"})
	case "/api/auth/check":
		f.checkHits++
		if f.failCheck > 0 {
			w.WriteHeader(f.failCheck)
			w.Write([]byte("<html>bad gateway</html>"))
			return
		}
		if !authorized {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Токен недействителен"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "admin_id": 1})
	default:
		http.NotFound(w, r)
	}
}

func readAll(r *http.Request) string {
	data, _ := io.ReadAll(r.Body)
	return string(data)
}

func TestLogin_StoresSession(t *testing.T) {
	api := &fakeAPI{token: strings.Repeat("ab", 32)}
	srv := httptest.NewServer(api)
	defer srv.Close()

	store := NewMemoryTokenStore()
	c, _ := newTestClient(t, srv.URL+"/api/", WithTokenStore(store))

	s, err := c.Login(context.Background(), "admin", "correct")
	require.NoError(t, err)
	assert.Equal(t, api.token, s.Token)
	assert.Equal(t, "admin", s.Login)
	assert.Equal(t, time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC), s.ExpiresAt.UTC())

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, s, stored)
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{token: "t"})
	defer srv.Close()

	store := NewMemoryTokenStore()
	c, rec := newTestClient(t, srv.URL+"/api/", WithTokenStore(store))

	_, err := c.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Contains(t, err.Error(), "Неверный логин или пароль")
	assert.Empty(t, rec.delays)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCheckSession(t *testing.T) {
	api := &fakeAPI{token: "good"}
	srv := httptest.NewServer(api)
	defer srv.Close()
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		c, _ := newTestClient(t, srv.URL+"/api/")
		ok, err := c.CheckSession(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("valid", func(t *testing.T) {
		store := NewMemoryTokenStore()
		require.NoError(t, store.Save(Session{Token: "good"}))
		c, _ := newTestClient(t, srv.URL+"/api/", WithTokenStore(store))

		ok, err := c.CheckSession(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		_, err = store.Load()
		assert.NoError(t, err)
	})

	t.Run("rejected token is cleared", func(t *testing.T) {
		store := NewMemoryTokenStore()
		require.NoError(t, store.Save(Session{Token: "stale"}))
		c, _ := newTestClient(t, srv.URL+"/api/", WithTokenStore(store))

		ok, err := c.CheckSession(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		_, err = store.Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("non-json failure keeps the session", func(t *testing.T) {
		api.failCheck = http.StatusBadGateway
		defer func() { api.failCheck = 0 }()

		store := NewMemoryTokenStore()
		require.NoError(t, store.Save(Session{Token: "good"}))
		c, rec := newTestClient(t, srv.URL+"/api/", WithTokenStore(store))

		ok, err := c.CheckSession(ctx)
		assert.Error(t, err)
		assert.False(t, ok)
		assert.Empty(t, rec.delays)
		_, err = store.Load()
		assert.NoError(t, err)
	})

	t.Run("network failure keeps the session", func(t *testing.T) {
		down := httptest.NewServer(http.NotFoundHandler())
		url := down.URL
		down.Close()

		store := NewMemoryTokenStore()
		require.NoError(t, store.Save(Session{Token: "good"}))
		c, _ := newTestClient(t, url, WithTokenStore(store))

		ok, err := c.CheckSession(ctx)
		assert.Equal(t, KindNetwork, KindOf(err))
		assert.False(t, ok)
		_, err = store.Load()
		assert.NoError(t, err)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes and clears", func(t *testing.T) {
		api := &fakeAPI{token: "good"}
		srv := httptest.NewServer(api)
		defer srv.Close()

		store := NewMemoryTokenStore()
		require.NoError(t, store.Save(Session{Token: "good"}))
		c, _ := newTestClient(t, srv.URL+"/api/", WithTokenStore(store))

		require.NoError(t, c.Logout(ctx))
		assert.Equal(t, 1, api.logoutHits)
		_, err := store.Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("server unreachable", func(t *testing.T) {
		down := httptest.NewServer(http.NotFoundHandler())
		url := down.URL
		down.Close()

		store := NewMemoryTokenStore()
		require.NoError(t, store.Save(Session{Token: "good"}))
		c, rec := newTestClient(t, url, WithTokenStore(store))

		require.NoError(t, c.Logout(ctx))
		assert.Empty(t, rec.delays)
		_, err := store.Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("without a session", func(t *testing.T) {
		api := &fakeAPI{token: "good"}
		srv := httptest.NewServer(api)
		defer srv.Close()

		c, _ := newTestClient(t, srv.URL+"/api/")
		require.NoError(t, c.Logout(ctx))
		assert.Zero(t, api.logoutHits)
	})
}
