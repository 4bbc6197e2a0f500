// Package apperr defines the error taxonomy shared by the API, the auth
// service and the content handlers, and its mapping to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	// KindBadRequest covers malformed input: bad JSON, missing credentials, rejected uploads.
	KindBadRequest Kind = "bad_request"
	// KindValidation covers field rules on a well-formed payload.
	KindValidation Kind = "validation"
	// KindInvalidCredentials is returned by login on an unknown login or a wrong password.
	KindInvalidCredentials Kind = "invalid_credentials"
	// KindUnauthenticated covers missing, unknown or expired bearer tokens.
	KindUnauthenticated  Kind = "unauthenticated"
	KindNotFound         Kind = "not_found"
	KindMethodNotAllowed Kind = "method_not_allowed"
	KindTooManyRequests  Kind = "too_many_requests"
	// KindInternal covers storage and filesystem failures. The message sent to
	// clients never includes the wrapped error.
	KindInternal Kind = "internal"
)

// Default client-facing messages.
const (
	MsgAuthRequired      = "Требуется авторизация"
	MsgTokenInvalid      = "Токен недействителен"
	MsgInvalidCredential = "Неверный логин или пароль"
	MsgRouteNotFound     = "Маршрут не найден"
	MsgUnknownAction     = "Неизвестное действие"
	MsgMethodNotAllowed  = "Метод не разрешён"
	MsgInvalidJSON       = "Некорректный JSON"
	MsgInternal          = "Внутренняя ошибка сервера"
	MsgTooManyRequests   = "Слишком много попыток входа, попробуйте позже"
)

// Error is an application error carrying a Kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	return StatusOf(e.Kind)
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// BadRequest reports a malformed request (400).
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Validation reports field rule failures on a well-formed payload (422).
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// NotFound reports a missing record or route (404).
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Unauthenticated reports a missing, unknown or expired token (401).
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

// Internal wraps a storage or filesystem failure.
func Internal(err error) *Error {
	return Wrap(KindInternal, MsgInternal, err)
}

// InternalMessage wraps a failure with a custom, still generic, client message.
func InternalMessage(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// StatusOf maps a Kind to an HTTP status code.
func StatusOf(kind Kind) int {
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindInvalidCredentials, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to send to a client.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return MsgInternal
}
