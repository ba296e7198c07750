// Copyright (c) 2026 GenUI Labs. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/genui-labs/genui-server/internal/platform/apperr"
	"github.com/genui-labs/genui-server/internal/platform/constants"
	"github.com/genui-labs/genui-server/internal/platform/ctxutil"
	"github.com/genui-labs/genui-server/internal/platform/respond"
	"github.com/genui-labs/genui-server/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the concrete
// [sec.TokenService], allowing us to inject fakes during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//
//  1. Check for the Authorization header.
//  2. If absent, the request proceeds as anonymous.
//  3. If present, accept the token raw or prefixed with the "Bearer" scheme.
//  4. Verify via [TokenVerifier]; on failure respond 401 immediately.
//  5. Inject [*sec.AuthClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// Anonymous access: public endpoints stay reachable.
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// The SPA sends "Bearer <token>", but a bare token is also accepted.
			tokenStr := authHeader
			if len(authHeader) > len(constants.BearerScheme) &&
				strings.EqualFold(authHeader[:len(constants.BearerScheme)], constants.BearerScheme) {
				tokenStr = strings.TrimSpace(authHeader[len(constants.BearerScheme):])
			}

			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Token Invalid or Expired"))
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Access Denied"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
