package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failed calls
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNetwork
	KindUnauthorized
	KindNotFound
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindServer:
		return "server"
	default:
		return "other"
	}
}

// Error is returned for every failed API call. Status is zero for network
// failures. Message is the server's error text when it sent one.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindOther when err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

func statusError(status int, message string) *Error {
	kind := KindOther
	switch {
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status >= 500:
		kind = KindServer
	}
	return &Error{Kind: kind, Status: status, Message: message}
}

// retryable reports whether another attempt may succeed
func retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindServer:
		return true
	default:
		return false
	}
}
