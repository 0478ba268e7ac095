package xerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error kinds shared by every handler. Each maps to exactly one HTTP status.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("resource not found")
	ErrUpstreamTimeout = errors.New("upstream timed out")
	ErrInternal        = errors.New("internal server error")
)

// UpstreamError carries a non-success reply from the identity provider or the
// file host. Status and Body are surfaced to the caller verbatim.
type UpstreamError struct {
	Op      string
	Status  int
	Body    string
	Message string // caller-facing summary, set with Relabel
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: upstream status %d", e.Op, e.Status)
}

// kindError is a caller-facing message tagged with one of the kinds above.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Validation returns an ErrValidation whose text is the message alone.
func Validation(format string, args ...interface{}) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Forbidden returns an ErrForbidden with a caller-facing message.
func Forbidden(msg string) error {
	return &kindError{kind: ErrForbidden, msg: msg}
}

// Unauthenticated returns an ErrUnauthenticated with a caller-facing message.
func Unauthenticated(msg string) error {
	return &kindError{kind: ErrUnauthenticated, msg: msg}
}

// NotFound returns an ErrNotFound with a caller-facing message.
func NotFound(msg string) error {
	return &kindError{kind: ErrNotFound, msg: msg}
}

// Relabel sets the caller-facing message of an upstream failure. Other
// errors pass through unchanged.
func Relabel(err error, message string) error {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		upstream.Message = message
	}
	return err
}

// FromContext turns a context expiry into ErrUpstreamTimeout and leaves every
// other error untouched.
func FromContext(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return err
}

// HTTPStatus maps an error to the status code the envelope is sent with.
func HTTPStatus(err error) int {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &upstream):
		if upstream.Status >= 400 {
			return upstream.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns upstream diagnostic text for the envelope, capped at 500 bytes.
func Detail(err error) string {
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		return ""
	}
	if len(upstream.Body) > 500 {
		return upstream.Body[:500]
	}
	return upstream.Body
}
