// Copyright (c) 2026 GenUI Labs. All rights reserved.

/*
Package auth provides the HTTP delivery layer for user identity management.

It implements the gateway for the authentication lifecycle: account creation,
login, the profile-picture setup funnel, and OTP-based password recovery.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface (multipart for the picture upload).
  - Security: Issues JWT bearer tokens; protected routes require a valid token.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/genui-labs/genui-server/internal/platform/apperr"
	"github.com/genui-labs/genui-server/internal/platform/middleware"
	requestutil "github.com/genui-labs/genui-server/internal/platform/request"
	"github.com/genui-labs/genui-server/internal/platform/respond"
	"github.com/genui-labs/genui-server/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the user lifecycle entry points
// (Registration, Login, Profile setup, Password Reset).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register        : Creates a new account and signs it in.
//   - POST /login           : Authenticates and returns a JWT.
//   - POST /forgot-password : Emails a 6-digit reset code.
//   - POST /reset-password  : Redeems the code for a new password.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/upload-profile-pic", handler.uploadProfilePic)
		r.Post("/skip-profile-pic", handler.skipProfilePic)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

/*
Register handles the creation of a new user account.

POST /api/auth/register

Description: Validates input, checks for identity conflicts, persists a new
user profile, and returns a bearer token so the client is signed in at once.

Request:
  - Body: registerRequest (Username, Email, Password)

Response:
  - 201: Token and created user profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// The SPA treats any missing field as one failure, not a per-field list.
	if strings.TrimSpace(input.Username) == "" ||
		strings.TrimSpace(input.Email) == "" ||
		input.Password == "" {
		respond.Error(writer, request, apperr.ValidationError("All fields are required"))
		return
	}

	validator := &validate.Validator{}
	validator.Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		FieldMessage: "Registered successfully",
		FieldToken:   session.Token,
		FieldUser:    session.User.Public(),
	})
}

/*
Login authenticates a user and issues a bearer token.

POST /api/auth/login

Description: Verifies credentials and generates a fresh JWT access token.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Token and user profile
  - 401: ErrUnauthorized: Incorrect password
  - 404: ErrNotFound: Email not registered
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldMessage: "Logged in successfully",
		FieldToken:   session.Token,
		FieldUser:    session.User.Public(),
	})
}

/*
UploadProfilePic stores a profile picture for the authenticated user.

POST /api/auth/upload-profile-pic

Description: Accepts a multipart form with a "profilePic" image, uploads it
to the media library, and marks the profile complete.

Request:
  - Multipart form, field "profilePic" (jpg, jpeg, or png; max 5 MB)

Response:
  - 200: Public URL of the stored picture
  - 400: ErrInvalidJSON: Missing, oversized, or unsupported image
  - 401: ErrUnauthorized: Missing or invalid bearer token
*/
func (handler *Handler) uploadProfilePic(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, MaxProfilePicBytes+1024)

	file, header, err := request.FormFile(FormFieldProfilePic)
	if err != nil {
		// An oversized body trips the byte limit inside the multipart
		// parse; report the size, not a missing file.
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(writer, request, apperr.ValidationError("Image exceeds the 5MB limit"))
			return
		}
		respond.Error(writer, request, apperr.ValidationError("No image uploaded"))
		return
	}
	defer file.Close()

	if header.Size > MaxProfilePicBytes {
		respond.Error(writer, request, apperr.ValidationError("Image exceeds the 5MB limit"))
		return
	}

	extension := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedProfilePicExts[extension] {
		respond.Error(writer, request, apperr.ValidationError("Only jpg, jpeg and png images are allowed"))
		return
	}

	imageURL, err := handler.authService.UploadProfilePic(request.Context(), userID, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage:  "Profile picture updated",
		FieldImageURL: imageURL,
	})
}

/*
SkipProfilePic marks the authenticated user's profile complete without a picture.

POST /api/auth/skip-profile-pic

Description: The "Skip" action in the profile setup screen. Idempotent.

Response:
  - 200: Updated user profile
  - 401: ErrUnauthorized: Missing or invalid bearer token
*/
func (handler *Handler) skipProfilePic(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.SkipProfilePic(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldUser: user.Public(),
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/auth/forgot-password

Description: Generates a 6-digit OTP, stores it with a 10-minute expiry, and
emails it to the account address.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: OTP dispatched
  - 404: ErrNotFound: No account for that email
  - 500: ErrDeliveryFailed: Email provider rejected the message
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "OTP sent to email",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/auth/reset-password

Description: Validates the (email, OTP) pair and updates the user's password.

Request:
  - Body: resetPasswordRequest (Email, OTP, NewPassword)

Response:
  - 200: Success: Password updated
  - 400: ErrInvalidJSON: Invalid OTP or OTP Expired
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldOTP, input.OTP).
		OTP(FieldOTP, input.OTP).
		Required(FieldNewPassword, input.NewPassword)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ResetPassword(
		request.Context(),
		input.Email,
		input.OTP,
		input.NewPassword,
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password has been reset successfully",
	})
}
