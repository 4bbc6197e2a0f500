package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/etm-murmansk/site/pkg/apperr"
	"github.com/etm-murmansk/site/pkg/httputil"
	"github.com/etm-murmansk/site/pkg/observability"
)

// maxLoginPeek bounds how much of the login body is buffered to find the login
const maxLoginPeek = 64 << 10

// LoginLimiter counts login attempts per key
type LoginLimiter interface {
	// Allow records an attempt and reports whether it may proceed. On a
	// backend error it returns true together with the error.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset forgets the attempts recorded for key
	Reset(ctx context.Context, key string) error
}

// LoginKey builds the limiter key for a login and client address
func LoginKey(login, ip string) string {
	return strings.ToLower(strings.TrimSpace(login)) + "|" + ip
}

// LoginLimit rejects login requests with 429 once the limiter refuses the
// (login, IP) pair. retryAfter is advertised in the Retry-After header.
func LoginLimit(limiter LoginLimiter, retryAfter time.Duration) httputil.Middleware {
	retrySeconds := strconv.Itoa(int(math.Ceil(retryAfter.Seconds())))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := observability.FromContext(ctx)
			key := LoginKey(peekLogin(r), httputil.ClientIP(r))

			allowed, err := limiter.Allow(ctx, key)
			if err != nil {
				logger.WithError(err).Warn("login limiter unavailable, allowing attempt")
			}
			if !allowed {
				logger.WithField("ip", httputil.ClientIP(r)).Warn("login attempts throttled")
				w.Header().Set("Retry-After", retrySeconds)
				httputil.WriteAppError(w, r, apperr.New(apperr.KindTooManyRequests, apperr.MsgTooManyRequests))
				return
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			if sw.status == http.StatusOK {
				if err := limiter.Reset(ctx, key); err != nil {
					logger.WithError(err).Warn("failed to reset login limiter")
				}
			}
		})
	}
}

// peekLogin reads the login field from a JSON body and restores the body for
// the next handler. Anything unparsable counts as an empty login.
func peekLogin(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxLoginPeek))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), r.Body))
	if err != nil {
		return ""
	}

	var body struct {
		Login interface{} `json:"login"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	login, _ := body.Login.(string)
	return login
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}
