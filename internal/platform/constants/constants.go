// Copyright (c) 2026 GenUI Labs. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire service.

It defines default timeouts, security identifiers, and cross-cutting keys that
are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Security: JWT issuer and bearer scheme configuration.
  - Transport: Header names and shared JSON field identifiers.

Using this package keeps magic strings and magic numbers out of the
business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "genui-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Generous enough to cover a Cloudinary upload round-trip.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "genui.app"

	// BearerScheme is the conventional Authorization header scheme marker.
	// Tokens are accepted both with and without it.
	BearerScheme = "Bearer"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldMessage = "message"
	FieldCode    = "code"
	FieldToken   = "token"
	FieldUser    = "user"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaUsers = "users"
)
