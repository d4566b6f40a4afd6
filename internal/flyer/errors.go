package flyer

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// KindError is a classified flyer error. Wrapped errors are matched
// against the predefined kinds with errors.Is.
type KindError struct {
	code    string
	message string
}

func newKind(code, message string) *KindError {
	return &KindError{code: code, message: message}
}

// Error implements the error interface
func (e *KindError) Error() string {
	return e.message
}

// Code returns the stable error code
func (e *KindError) Code() string {
	return e.code
}

// Predefined error kinds
var (
	ErrMalformedItem        = newKind("MALFORMED_ITEM", "malformed flyer item")
	ErrLoadFailed           = newKind("LOAD_FAILED", "flyer data load failed")
	ErrUnexpectedStatus     = newKind("UNEXPECTED_STATUS", "unexpected HTTP status")
	ErrPageLinksUnavailable = newKind("PAGE_LINKS_UNAVAILABLE", "page links unavailable yet")
	ErrPageOutOfRange       = newKind("PAGE_OUT_OF_RANGE", "page destination out of range")
	ErrNoRoute              = newKind("NO_ROUTE", "item has no display type")
	ErrItemNotFound         = newKind("ITEM_NOT_FOUND", "flyer item not found")
)

// StatusError reports a non-200 response from the flyer API
type StatusError struct {
	StatusCode int
	Endpoint   string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d (%s)", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is matches ErrUnexpectedStatus
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Code returns the stable error code of err, or "" when err is not classified
func Code(err error) string {
	var kind *KindError
	if errors.As(err, &kind) {
		return kind.Code()
	}
	if errors.Is(err, ErrUnexpectedStatus) {
		return ErrUnexpectedStatus.Code()
	}
	return ""
}
