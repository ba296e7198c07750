// Copyright (c) 2026 GenUI Labs. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/genui-labs/genui-server/internal/platform/apperr"
	"github.com/genui-labs/genui-server/internal/platform/sec"
	"github.com/genui-labs/genui-server/pkg/uuidv7"
)

// # Contracts

// TokenProvider defines the contract for issuing bearer tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT for the given user ID,
	// valid for timeToLive from now.
	GenerateAccessToken(userID string, timeToLive time.Duration) (string, error)
}

// OTPSender delivers a password-reset one-time code to an email address.
type OTPSender interface {
	SendPasswordResetOTP(ctx context.Context, toEmail, code string) error
}

// ProfilePicStore uploads a profile picture and returns its public URL.
type ProfilePicStore interface {
	UploadProfilePic(ctx context.Context, userID string, file io.Reader) (string, error)
}

// Service implements the authentication and signup-funnel use cases.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	otpSender      OTPSender
	pictureStore   ProfilePicStore
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	tokenProv TokenProvider,
	otpSender OTPSender,
	pictureStore ProfilePicStore,
) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		otpSender:      otpSender,
		pictureStore:   pictureStore,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Session represents a freshly authenticated user: the bearer token the
// client must present on subsequent calls, plus the account it belongs to.
type Session struct {
	Token string
	User  *User
}

/*
Register validates, hashes, and persists a brand-new user account, then
issues a bearer token so the client is signed in immediately (no second
login round-trip).

Username and email are normalized before the uniqueness checks, so
"Alice@Example.com" and "alice@example.com" are the same identity. The
pre-checks give precise Conflict messages; the database unique constraints
remain the arbiter when two registrations race.
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	username := NormalizeIdentity(input.Username)
	email := NormalizeIdentity(input.Email)

	if _, err := service.userRepository.FindByUsername(ctx, username); err == nil {
		return nil, apperr.Conflict("Username must be unique")
	}

	if _, err := service.userRepository.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email already exists")
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:                uuidv7.New(),
		Username:          username,
		Email:             email,
		PasswordHash:      hashedPassword,
		IsProfileComplete: false,
	}

	if err := service.userRepository.Create(ctx, user); err != nil {
		// Conflicts from the lost pre-check race pass through as-is.
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	token, err := service.tokenProvider.GenerateAccessToken(user.ID, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates user credentials and issues a fresh bearer token.

An unknown email and a wrong password fail differently on purpose: the API
contract distinguishes 404 from 401, matching the SPA's error surfaces.
Login never forces profile completion; the client decides whether to show
the setup screen based on the returned projection.
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := NormalizeIdentity(input.Email)

	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		// Only a genuine miss becomes the endpoint's 404; a storage
		// failure stays a server error.
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Email not registered")
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Incorrect password")
	}

	token, err := service.tokenProvider.GenerateAccessToken(user.ID, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

// # Profile Completion

/*
UploadProfilePic stores the picture in the media library and marks the
profile complete. Re-uploading is idempotent in effect: the flag stays true
and the URL is replaced.
*/
func (service *Service) UploadProfilePic(ctx context.Context, userID string, file io.Reader) (string, error) {
	imageURL, err := service.pictureStore.UploadProfilePic(ctx, userID, file)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("auth_service_upload_failed: %w", err))
	}

	if _, err := service.userRepository.CompleteProfile(ctx, userID, imageURL); err != nil {
		if apperr.IsAppError(err) {
			return "", err
		}
		return "", fmt.Errorf("auth_service_complete_profile_failed: %w", err)
	}

	return imageURL, nil
}

// SkipProfilePic marks the profile complete without a picture ("Skip" in
// the setup screen). The completion flag never reverts afterwards.
func (service *Service) SkipProfilePic(ctx context.Context, userID string) (*User, error) {
	user, err := service.userRepository.MarkProfileComplete(ctx, userID)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_skip_profile_failed: %w", err)
	}

	return user, nil
}

// # Password Recovery

/*
ForgotPassword initiates the reset flow: it generates a fresh 6-digit code,
stores it on the user record with a 10-minute expiry (overwriting any
earlier pending code), and emails it to the account address.

A delivery failure surfaces as a generic DeliveryFailed error; the
provider-specific cause stays in server logs. Success only means the
provider accepted the message — inbox arrival is never confirmed.
*/
func (service *Service) ForgotPassword(ctx context.Context, email string) error {
	normalizedEmail := NormalizeIdentity(email)

	user, err := service.userRepository.FindByEmail(ctx, normalizedEmail)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound("User not found")
		}
		return err
	}

	code, err := sec.GenerateOTP()
	if err != nil {
		return fmt.Errorf("auth_service_otp_generation_failed: %w", err)
	}

	expiresAt := time.Now().Add(OTPTTL)
	if err := service.userRepository.SetOTP(ctx, user.ID, code, expiresAt); err != nil {
		return fmt.Errorf("auth_service_set_otp_failed: %w", err)
	}

	if err := service.otpSender.SendPasswordResetOTP(ctx, user.Email, code); err != nil {
		return apperr.DeliveryFailed("Failed to send OTP", err)
	}

	return nil
}

/*
ResetPassword completes the reset flow: the submitted (email, code) pair
must match a user whose OTP expiry is strictly in the future. The new hash
replaces the old one and the OTP pair is cleared in the same atomic update.
*/
func (service *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	normalizedEmail := NormalizeIdentity(email)

	newHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.userRepository.ResetPasswordByOTP(ctx, normalizedEmail, code, newHash); err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("auth_service_reset_password_failed: %w", err)
	}

	return nil
}
