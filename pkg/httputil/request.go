package httputil

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

var bearerPattern = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

// PathVar returns a mux path variable, empty when absent
func PathVar(r *http.Request, key string) string {
	return mux.Vars(r)[key]
}

// PathInt64 parses an integer path variable
func PathInt64(r *http.Request, key string) (int64, bool) {
	val, err := strconv.ParseInt(PathVar(r, key), 10, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// QueryInt parses an integer query parameter. Missing or non-numeric values
// yield defaultVal.
func QueryInt(r *http.Request, key string, defaultVal int) int {
	str := r.URL.Query().Get(key)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	return val
}

// QueryString extracts a string query parameter
func QueryString(r *http.Request, key string, defaultVal string) string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is case-insensitive. Returns "" when absent or malformed.
func BearerToken(r *http.Request) string {
	m := bearerPattern.FindStringSubmatch(r.Header.Get("Authorization"))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ClientIP returns the remote address without the port
func ClientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i > 0 {
		addr = addr[:i]
	}
	return strings.Trim(addr, "[]")
}
