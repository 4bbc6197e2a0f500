package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/etm-murmansk/site/pkg/apperr"
	"github.com/etm-murmansk/site/pkg/observability"
)

// ContentTypeJSON is set on every API response
const ContentTypeJSON = "application/json; charset=utf-8"

// ErrorResponse is the error envelope
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by successful writes
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

// WriteErrorMessage writes a JSON error response with a custom message
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteMessage writes {"success": true, "message": message}
func WriteMessage(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, MessageResponse{Success: true, Message: message})
}

// WriteAppError converts err into the error envelope. Internal errors are
// logged with the request id and answered with a generic message.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusOf(apperr.KindOf(err))
	if status >= http.StatusInternalServerError {
		observability.FromContext(r.Context()).
			WithError(err).
			WithField("path", r.URL.Path).
			Error("request failed")
	}
	WriteErrorMessage(w, status, apperr.PublicMessage(err))
}

// WriteNoContent writes a successful response with no content (204 No Content)
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
