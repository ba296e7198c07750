// Copyright (c) 2026 GenUI Labs. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing, OTP
// generation) from the domain logic. It is injected into the application
// layer via small interfaces so services never touch key material directly.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a JWT access token.
//
// The user ID is the sole custom claim. The middleware reconstructs the
// active user context from it without querying the database on every
// request.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"uid"`
}

// TokenService handles generation and verification of JWT tokens using
// HS256 with a server-held secret.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService.
//
// The secret must be non-empty; a service signing tokens with an empty key
// would accept trivially forged tokens.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: jwt secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// GenerateAccessToken creates a signed JWT embedding the user ID, valid for
// timeToLive from now.
func (service *TokenService) GenerateAccessToken(userID string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity window of a JWT string.
//
// It fails for any token that is not HMAC-signed, has a bad signature, or
// is expired. Expiry is enforced by the jwt library's claims validation.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	return claims, nil
}
