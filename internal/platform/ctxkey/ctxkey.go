// Copyright (c) 2026 GenUI Labs. All rights reserved.

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// # Safety
//
// Per-request values (authenticated identity, request ID, logger) are stored
// under keys of a private type so they can never collide with context values
// set by third-party packages.
package ctxkey

// key is an unexported type used for context keys to ensure type safety.
//
// # Collision Prevention
//
// Even if another package uses "request_id" as a string key, it will not
// collide with this key type because Go's [context.Context] uses both the
// value AND the type for lookups.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser is the context key for the authenticated token claims ([sec.AuthClaims]).
	KeyUser key = "user"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)
