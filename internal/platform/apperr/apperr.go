// Copyright (c) 2026 GenUI Labs. All rights reserved.

/*
Package apperr defines the centralized error handling framework for the GenUI API.

It provides a rich error type that bridges the gap between low-level domain or
storage errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a machine-readable Code and a client-safe message.
  - Taxonomy: ValidationError, Conflict, NotFound, Unauthorized, DeliveryFailed, Internal.
  - Mapping: Explicit mapping from AppError to standard HTTP status codes.

Every error that leaves the service layer should be wrapped as an [AppError] to
ensure consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// AppError is the canonical error type for the GenUI API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (SQL text, provider payloads).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"message"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] with a client-facing message.
func NotFound(msg string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    msg,
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "Server error",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// DeliveryFailed creates a 500 [AppError] for external notification failures.
//
// The provider-specific cause is deliberately masked from the client; callers
// see only a generic delivery failure message.
func DeliveryFailed(msg string, cause error) *AppError {
	return &AppError{
		Code:       "DELIVERY_FAILED",
		Message:    msg,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsNotFound reports whether err is an [*AppError] carrying the NOT_FOUND
// code. Services use it to tell a genuine miss apart from a storage
// failure before rephrasing the message for their endpoint.
func IsNotFound(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == "NOT_FOUND"
}
