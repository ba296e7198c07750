// Copyright (c) 2026 GenUI Labs. All rights reserved.

/*
Package auth implements the user identity and account lifecycle layer.

It defines the core domain entity (User) together with the registration,
login, password-reset, and profile-completion flows of the GenUI signup
funnel.

# Architecture

This layer is the "truth" of the system. The entity defined here has no
transport or storage dependencies and encapsulates every business rule
related to user identity.
*/
package auth

import (
	"strings"
	"time"
)

// # Domain Entities

// User represents a registered member of the GenUI platform.
//
// OTP and OTPExpiresAt are either both set (a password reset is pending) or
// both nil; the database enforces the pairing with a CHECK constraint.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"` // Explicitly omitted from JSON for security.
	ProfilePic        string     `json:"profilePic"`
	IsProfileComplete bool       `json:"isProfileComplete"`
	OTP               *string    `json:"-"` // Pending reset code. Never serialized.
	OTPExpiresAt      *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// PublicProfile is the client-facing projection of a [User].
//
// It is the ONLY user shape handlers may serialize. Producing it through a
// single function guarantees the hash and any pending OTP can never leak,
// regardless of which endpoint builds the response.
type PublicProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	ProfilePic        string `json:"profilePic"`
	IsProfileComplete bool   `json:"isProfileComplete"`
}

// Public returns the client-safe projection of the user.
func (user *User) Public() PublicProfile {
	return PublicProfile{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		ProfilePic:        user.ProfilePic,
		IsProfileComplete: user.IsProfileComplete,
	}
}

// # Normalization

// NormalizeIdentity canonicalizes a username or email for lookups and
// writes: whitespace is trimmed and the value is lowercased, making
// uniqueness case-insensitive.
func NormalizeIdentity(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// # Field Identifiers

// Field names shared between validation and response payloads.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldOTP         = "otp"
	FieldNewPassword = "newPassword"
	FieldMessage     = "message"
	FieldToken       = "token"
	FieldUser        = "user"
	FieldImageURL    = "imageUrl"
)
