package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeDatabase         ErrorType = "database"
	ErrorTypeAuth             ErrorType = "authentication"
	ErrorTypeAwaitingApproval ErrorType = "awaiting_approval"
	ErrorTypeAuthorize        ErrorType = "authorization"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeConflict         ErrorType = "conflict"
	ErrorTypeInternal         ErrorType = "internal"
	ErrorTypeUnavailable      ErrorType = "service_unavailable"
)

// APIError represents a structured API error
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	err       error
}

func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *APIError) Unwrap() error { return e.err }

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// Transient reports whether the failure came from a backend and may succeed later.
func (e *APIError) Transient() bool {
	switch e.Type {
	case ErrorTypeDatabase, ErrorTypeInternal, ErrorTypeUnavailable:
		return true
	}
	return false
}

func newError(t ErrorType, code int, msg string, err error) *APIError {
	return &APIError{Type: t, Message: msg, Code: code, err: err}
}

func NewValidationError(msg string, err error) *APIError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, msg, err)
}

func NewDatabaseError(msg string, err error) *APIError {
	return newError(ErrorTypeDatabase, http.StatusInternalServerError, msg, err)
}

func NewAuthError(msg string, err error) *APIError {
	return newError(ErrorTypeAuth, http.StatusUnauthorized, msg, err)
}

// NewAwaitingApprovalError is returned to signed-in users whose role is still unauthorized.
func NewAwaitingApprovalError(msg string) *APIError {
	return newError(ErrorTypeAwaitingApproval, http.StatusForbidden, msg, nil)
}

func NewAuthorizationError(msg string, err error) *APIError {
	return newError(ErrorTypeAuthorize, http.StatusForbidden, msg, err)
}

func NewNotFoundError(msg string, err error) *APIError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, msg, err)
}

func NewConflictError(msg string, err error) *APIError {
	return newError(ErrorTypeConflict, http.StatusConflict, msg, err)
}

func NewInternalError(msg string, err error) *APIError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, msg, err)
}

func NewUnavailableError(msg string, err error) *APIError {
	return newError(ErrorTypeUnavailable, http.StatusServiceUnavailable, msg, err)
}

// As extracts an *APIError from err, wrapping anything else as an internal error.
func As(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewInternalError("Something went wrong", err)
}

// Is reports whether err is an *APIError of type t.
func Is(err error, t ErrorType) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == t
}
