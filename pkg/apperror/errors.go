package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("resource not found")
	ErrConflict             = errors.New("conflict")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrInternal             = errors.New("internal server error")
)

// AppError carries one of the kind sentinels above, a message that is safe to
// show to clients, and the underlying cause for logs.
type AppError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrInternal.Error()
}

func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New creates an AppError of the given kind.
func New(kind error, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap creates an AppError of the given kind that keeps err as its cause.
func Wrap(kind error, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *AppError { return New(ErrValidation, message) }

func NotFound(message string) *AppError { return New(ErrNotFound, message) }

func Forbidden(message string) *AppError { return New(ErrForbidden, message) }

func Unauthenticated(message string) *AppError { return New(ErrUnauthenticated, message) }

func Conflict(message string) *AppError { return New(ErrConflict, message) }

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return Wrap(ErrInternal, ErrInternal.Error(), err)
}

// Ensure returns err unchanged if it already carries a kind, otherwise wraps it as internal.
func Ensure(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(err)
}

var kinds = []struct {
	kind   error
	name   string
	status int
}{
	{ErrValidation, "validation_error", http.StatusBadRequest},
	{ErrUnauthenticated, "unauthenticated", http.StatusUnauthorized},
	{ErrForbidden, "forbidden", http.StatusForbidden},
	{ErrNotFound, "not_found", http.StatusNotFound},
	{ErrConflict, "conflict", http.StatusConflict},
	{ErrReferentialIntegrity, "referential_integrity", http.StatusBadRequest},
	{ErrRateLimitExceeded, "rate_limited", http.StatusTooManyRequests},
}

// KindName returns the wire name of the error's kind.
func KindName(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.name
		}
	}
	return "internal"
}

// MapErrorToStatus maps the error's kind to an HTTP status code.
func MapErrorToStatus(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message that may be sent to clients.
func PublicMessage(err error) string {
	if MapErrorToStatus(err) == http.StatusInternalServerError {
		return ErrInternal.Error()
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}
