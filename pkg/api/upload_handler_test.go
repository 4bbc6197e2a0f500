package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etm-murmansk/site/pkg/uploads"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(method, path, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return httptest.NewRequest(method, path, reader)
}

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.srv.ServeHTTP(rr, req)
	return rr
}

func uploadRequest(t *testing.T, token, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(uploads.FormField, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUpload_StoresImage(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	gif := append([]byte("GIF89a"), make([]byte, 32)...)
	rr := serve(env, uploadRequest(t, token, "logo.gif", gif))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body := decodeBody(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "image/gif", body["mime"])
	assert.Equal(t, float64(len(gif)), body["size"])

	filename := body["filename"].(string)
	url := body["url"].(string)
	assert.Regexp(t, `^img_.+\.gif$`, filename)
	assert.Regexp(t, `^uploads/\d{4}-\d{2}/img_.+\.gif$`, url)

	subdir := strings.TrimSuffix(strings.TrimPrefix(url, "uploads/"), "/"+filename)
	stored, err := os.ReadFile(filepath.Join(env.uploadDir, subdir, filename))
	require.NoError(t, err)
	assert.Equal(t, gif, stored)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.UploadsTotal.WithLabelValues(uploads.OutcomeStored)))
}

func TestUpload_Rejections(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := serve(env, uploadRequest(t, token, "notes.txt", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Недопустимый формат файла. Разрешены: jpg, jpeg, png, gif, webp, svg", errorMessage(t, rr))

	rr = serve(env, uploadRequest(t, token, "photo.jpg", []byte("plain text pretending")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Недопустимый тип файла", errorMessage(t, rr))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr = serve(env, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Файл не загружен", errorMessage(t, rr))
}
