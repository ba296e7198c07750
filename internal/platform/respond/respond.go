// Copyright (c) 2026 GenUI Labs. All rights reserved.

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Success payloads are written as-is (the API contract defines flat bodies
// such as {token, user}); every error follows the {message, code} envelope
// so the SPA can surface failures uniformly.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/genui-labs/genui-server/internal/platform/apperr"
	"github.com/genui-labs/genui-server/internal/platform/ctxutil"
)

// ErrorEnvelope is the JSON envelope for error responses.
//
// Clients are promised a "message" field on every failure; "code" and
// "details" are machine-readable extensions.
type ErrorEnvelope struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with the payload as the response body.
func OK(writer http.ResponseWriter, payload interface{}) {
	JSON(writer, http.StatusOK, payload)
}

// Created writes a 201 Created response with the payload as the response body.
func Created(writer http.ResponseWriter, payload interface{}) {
	JSON(writer, http.StatusCreated, payload)
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into a standardized JSON API error response.
//
// Unexpected (non-AppError) failures and all 5xx causes are logged with the
// request ID; clients never see stack traces or provider detail.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Message: appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}
