// Copyright (c) 2026 GenUI Labs. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts common body decoding and identity extraction patterns so that
handlers share a single, consistent error path.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/genui-labs/genui-server/internal/platform/apperr"
	"github.com/genui-labs/genui-server/internal/platform/ctxutil"
	"github.com/genui-labs/genui-server/internal/platform/sec"
	"github.com/genui-labs/genui-server/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
// It returns [validate.ErrInvalidJSON] if decoding fails.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Claims extracts the authenticated user claims from the request context.
//
// Returns nil if the request is not authenticated.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredClaims ensures the request is authenticated and returns the claims,
// or an [apperr.Unauthorized] error if it is not.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Access Denied")
	}
	return claims, nil
}

// RequiredUserID returns the user ID of the currently authenticated user.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
