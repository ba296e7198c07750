// Copyright (c) 2026 GenUI Labs. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Implementations receive identities already normalized by the service
// layer; they must not apply additional case folding.
type UserRepository interface {

	// FindByID returns the account with the given ID, or apperr.NotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given (normalized) email,
	// or apperr.NotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given (normalized)
	// username, or apperr.NotFound.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create persists a brand-new user account. A unique-constraint
	// violation on username or email surfaces as apperr.Conflict, so the
	// register race of two concurrent signups resolves to exactly one
	// winner.
	Create(ctx context.Context, user *User) error

	// SetOTP stores a pending password-reset code and its expiry on the
	// user record, overwriting any earlier pending code.
	SetOTP(ctx context.Context, userID, code string, expiresAt time.Time) error

	// ResetPasswordByOTP atomically replaces the password hash and clears
	// the OTP pair for the user matching (email, code) with an unexpired
	// OTP. It fails with an invalid-or-expired error when no row matches.
	ResetPasswordByOTP(ctx context.Context, email, code, newHash string) error

	// CompleteProfile writes the uploaded picture URL and flips
	// isProfileComplete to true. The flag never transitions back.
	CompleteProfile(ctx context.Context, userID, profilePicURL string) (*User, error)

	// MarkProfileComplete flips isProfileComplete to true without touching
	// the picture URL (the "skip" path of the signup funnel).
	MarkProfileComplete(ctx context.Context, userID string) (*User, error)
}
