// Copyright (c) 2026 GenUI Labs. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genui-labs/genui-server/internal/platform/apperr"
	"github.com/genui-labs/genui-server/internal/platform/sec"
	"github.com/genui-labs/genui-server/internal/users/auth"
)

// # Test Doubles

// fakeUserRepository is an in-memory UserRepository keyed by user ID.
type fakeUserRepository struct {
	users map[string]*auth.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*auth.User{}}
}

func (repo *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, exists := repo.users[id]; exists {
		return user, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (repo *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (repo *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (repo *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	for _, existing := range repo.users {
		if existing.Username == user.Username {
			return apperr.Conflict("Username must be unique")
		}
		if existing.Email == user.Email {
			return apperr.Conflict("Email already exists")
		}
	}
	repo.users[user.ID] = user
	return nil
}

func (repo *fakeUserRepository) SetOTP(_ context.Context, userID, code string, expiresAt time.Time) error {
	user, exists := repo.users[userID]
	if !exists {
		return apperr.NotFound("User not found")
	}
	user.OTP = &code
	user.OTPExpiresAt = &expiresAt
	return nil
}

func (repo *fakeUserRepository) ResetPasswordByOTP(_ context.Context, email, code, newHash string) error {
	now := time.Now()
	for _, user := range repo.users {
		if user.Email != email || user.OTP == nil || *user.OTP != code {
			continue
		}
		if user.OTPExpiresAt == nil || !user.OTPExpiresAt.After(now) {
			continue
		}
		user.PasswordHash = newHash
		user.OTP = nil
		user.OTPExpiresAt = nil
		return nil
	}
	return apperr.ValidationError("Invalid OTP or OTP Expired")
}

func (repo *fakeUserRepository) CompleteProfile(_ context.Context, userID, profilePicURL string) (*auth.User, error) {
	user, exists := repo.users[userID]
	if !exists {
		return nil, apperr.NotFound("User not found")
	}
	user.ProfilePic = profilePicURL
	user.IsProfileComplete = true
	return user, nil
}

func (repo *fakeUserRepository) MarkProfileComplete(_ context.Context, userID string) (*auth.User, error) {
	user, exists := repo.users[userID]
	if !exists {
		return nil, apperr.NotFound("User not found")
	}
	user.IsProfileComplete = true
	return user, nil
}

// failingLookupRepository simulates a storage outage on the email lookup
// path while delegating everything else to the in-memory repository.
type failingLookupRepository struct {
	*fakeUserRepository
	lookupErr error
}

func (repo *failingLookupRepository) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, repo.lookupErr
}

// fakeOTPSender records deliveries and optionally fails.
type fakeOTPSender struct {
	sentTo   []string
	sentCode string
	failWith error
}

func (sender *fakeOTPSender) SendPasswordResetOTP(_ context.Context, toEmail, code string) error {
	if sender.failWith != nil {
		return sender.failWith
	}
	sender.sentTo = append(sender.sentTo, toEmail)
	sender.sentCode = code
	return nil
}

// fakePictureStore returns a deterministic URL per user.
type fakePictureStore struct {
	failWith error
}

func (store *fakePictureStore) UploadProfilePic(_ context.Context, userID string, _ io.Reader) (string, error) {
	if store.failWith != nil {
		return "", store.failWith
	}
	return "https://cdn.example.com/genui/profile_pics/" + userID, nil
}

func newTestService(t *testing.T, repo auth.UserRepository, sender *fakeOTPSender, pictures *fakePictureStore) *auth.Service {
	t.Helper()

	tokens, err := sec.NewTokenService("test-secret", "genui.app")
	require.NoError(t, err)

	return auth.NewService(repo, tokens, sender, pictures)
}

// # Registration

/*
TestService_Register covers the happy path and the two conflict paths.
*/
func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_account_and_issues_token", func(t *testing.T) {
		repo := newFakeUserRepository()
		service := newTestService(t, repo, &fakeOTPSender{}, &fakePictureStore{})

		session, err := service.Register(ctx, auth.RegisterInput{
			Username: "  Kai  ",
			Email:    "Kai@Example.COM",
			Password: "swordfish1",
		})
		require.NoError(t, err)
		require.NotNil(t, session)

		assert.NotEmpty(t, session.Token)
		assert.NotEmpty(t, session.User.ID)

		// Identity is normalized before persistence.
		assert.Equal(t, "kai", session.User.Username)
		assert.Equal(t, "kai@example.com", session.User.Email)

		// Fresh accounts start with the setup funnel pending.
		assert.False(t, session.User.IsProfileComplete)
		assert.Empty(t, session.User.ProfilePic)

		// Plaintext never persists.
		assert.NotEqual(t, "swordfish1", session.User.PasswordHash)
		assert.True(t, sec.CheckPasswordHash("swordfish1", session.User.PasswordHash))
	})

	t.Run("duplicate_username_conflicts", func(t *testing.T) {
		repo := newFakeUserRepository()
		service := newTestService(t, repo, &fakeOTPSender{}, &fakePictureStore{})

		_, err := service.Register(ctx, auth.RegisterInput{
			Username: "kai", Email: "kai@example.com", Password: "swordfish1",
		})
		require.NoError(t, err)

		// Same username, different case and email.
		_, err = service.Register(ctx, auth.RegisterInput{
			Username: "KAI", Email: "other@example.com", Password: "swordfish1",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusConflict, ae.HTTPStatus)
		assert.Equal(t, "Username must be unique", ae.Message)
	})

	t.Run("duplicate_email_conflicts", func(t *testing.T) {
		repo := newFakeUserRepository()
		service := newTestService(t, repo, &fakeOTPSender{}, &fakePictureStore{})

		_, err := service.Register(ctx, auth.RegisterInput{
			Username: "kai", Email: "kai@example.com", Password: "swordfish1",
		})
		require.NoError(t, err)

		_, err = service.Register(ctx, auth.RegisterInput{
			Username: "other", Email: "KAI@example.com", Password: "swordfish1",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusConflict, ae.HTTPStatus)
		assert.Equal(t, "Email already exists", ae.Message)
	})
}

// # Authentication

/*
TestService_Login covers credential verification and its two failure modes.
*/
func TestService_Login(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepository()
	service := newTestService(t, repo, &fakeOTPSender{}, &fakePictureStore{})

	_, err := service.Register(ctx, auth.RegisterInput{
		Username: "kai", Email: "kai@example.com", Password: "swordfish1",
	})
	require.NoError(t, err)

	t.Run("valid_credentials", func(t *testing.T) {
		session, err := service.Login(ctx, auth.LoginInput{
			Email: "Kai@Example.com", Password: "swordfish1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, "kai@example.com", session.User.Email)
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := service.Login(ctx, auth.LoginInput{
			Email: "ghost@example.com", Password: "swordfish1",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusNotFound, ae.HTTPStatus)
		assert.Equal(t, "Email not registered", ae.Message)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := service.Login(ctx, auth.LoginInput{
			Email: "kai@example.com", Password: "wrong",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)
		assert.Equal(t, "Incorrect password", ae.Message)
	})

	t.Run("storage_failure_is_not_a_miss", func(t *testing.T) {
		failingRepo := &failingLookupRepository{
			fakeUserRepository: repo,
			lookupErr:          apperr.Internal(errors.New("connection refused")),
		}
		failing := newTestService(t, failingRepo, &fakeOTPSender{}, &fakePictureStore{})

		_, err := failing.Login(ctx, auth.LoginInput{
			Email: "kai@example.com", Password: "swordfish1",
		})
		require.Error(t, err)

		// A database outage must surface as 500, never as "Email not registered".
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
		assert.Equal(t, "Server error", ae.Message)
	})
}

// # Profile Completion

/*
TestService_UploadProfilePic verifies the upload path stores the URL and
flips the completion flag.
*/
func TestService_UploadProfilePic(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepository()
	service := newTestService(t, repo, &fakeOTPSender{}, &fakePictureStore{})

	session, err := service.Register(ctx, auth.RegisterInput{
		Username: "kai", Email: "kai@example.com", Password: "swordfish1",
	})
	require.NoError(t, err)
	userID := session.User.ID

	imageURL, err := service.UploadProfilePic(ctx, userID, strings.NewReader("fake-image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/genui/profile_pics/"+userID, imageURL)

	stored := repo.users[userID]
	assert.True(t, stored.IsProfileComplete)
	assert.Equal(t, imageURL, stored.ProfilePic)

	t.Run("upload_failure_is_masked", func(t *testing.T) {
		failing := newTestService(t, repo, &fakeOTPSender{}, &fakePictureStore{
			failWith: errors.New("provider timeout"),
		})

		_, err := failing.UploadProfilePic(ctx, userID, strings.NewReader("x"))
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
		// Provider detail stays out of the client-facing message.
		assert.Equal(t, "Server error", ae.Message)
	})
}

/*
TestService_SkipProfilePic verifies the skip path flips the flag without a
picture and is idempotent.
*/
func TestService_SkipProfilePic(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepository()
	service := newTestService(t, repo, &fakeOTPSender{}, &fakePictureStore{})

	session, err := service.Register(ctx, auth.RegisterInput{
		Username: "kai", Email: "kai@example.com", Password: "swordfish1",
	})
	require.NoError(t, err)

	user, err := service.SkipProfilePic(ctx, session.User.ID)
	require.NoError(t, err)
	assert.True(t, user.IsProfileComplete)
	assert.Empty(t, user.ProfilePic)

	// Skipping twice is a no-op, not an error.
	user, err = service.SkipProfilePic(ctx, session.User.ID)
	require.NoError(t, err)
	assert.True(t, user.IsProfileComplete)
}

// # Password Recovery

/*
TestService_ForgotPassword covers OTP issuance and the delivery failure path.
*/
func TestService_ForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("stores_and_sends_code", func(t *testing.T) {
		repo := newFakeUserRepository()
		sender := &fakeOTPSender{}
		service := newTestService(t, repo, sender, &fakePictureStore{})

		session, err := service.Register(ctx, auth.RegisterInput{
			Username: "kai", Email: "kai@example.com", Password: "swordfish1",
		})
		require.NoError(t, err)

		require.NoError(t, service.ForgotPassword(ctx, "Kai@Example.com"))

		assert.Equal(t, []string{"kai@example.com"}, sender.sentTo)
		assert.Len(t, sender.sentCode, 6)

		stored := repo.users[session.User.ID]
		require.NotNil(t, stored.OTP)
		require.NotNil(t, stored.OTPExpiresAt)
		assert.Equal(t, sender.sentCode, *stored.OTP)
		assert.WithinDuration(t, time.Now().Add(auth.OTPTTL), *stored.OTPExpiresAt, 5*time.Second)
	})

	t.Run("unknown_email", func(t *testing.T) {
		repo := newFakeUserRepository()
		service := newTestService(t, repo, &fakeOTPSender{}, &fakePictureStore{})

		err := service.ForgotPassword(ctx, "ghost@example.com")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusNotFound, ae.HTTPStatus)
		assert.Equal(t, "User not found", ae.Message)
	})

	t.Run("storage_failure_is_not_a_miss", func(t *testing.T) {
		failingRepo := &failingLookupRepository{
			fakeUserRepository: newFakeUserRepository(),
			lookupErr:          apperr.Internal(errors.New("connection refused")),
		}
		service := newTestService(t, failingRepo, &fakeOTPSender{}, &fakePictureStore{})

		err := service.ForgotPassword(ctx, "kai@example.com")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
		assert.Equal(t, "Server error", ae.Message)
	})

	t.Run("delivery_failure_is_masked", func(t *testing.T) {
		repo := newFakeUserRepository()
		sender := &fakeOTPSender{failWith: errors.New("provider returned 401: Key not found")}
		service := newTestService(t, repo, sender, &fakePictureStore{})

		_, err := service.Register(ctx, auth.RegisterInput{
			Username: "kai", Email: "kai@example.com", Password: "swordfish1",
		})
		require.NoError(t, err)

		err = service.ForgotPassword(ctx, "kai@example.com")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
		assert.Equal(t, "Failed to send OTP", ae.Message)
	})
}

/*
TestService_ResetPassword covers code redemption: success, wrong code,
expired code, and single use.
*/
func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*auth.Service, *fakeUserRepository, *fakeOTPSender, string) {
		t.Helper()
		repo := newFakeUserRepository()
		sender := &fakeOTPSender{}
		service := newTestService(t, repo, sender, &fakePictureStore{})

		session, err := service.Register(ctx, auth.RegisterInput{
			Username: "kai", Email: "kai@example.com", Password: "old-password",
		})
		require.NoError(t, err)
		require.NoError(t, service.ForgotPassword(ctx, "kai@example.com"))

		return service, repo, sender, session.User.ID
	}

	t.Run("valid_code_rotates_password", func(t *testing.T) {
		service, repo, sender, userID := setup(t)

		err := service.ResetPassword(ctx, "Kai@Example.com", sender.sentCode, "new-password")
		require.NoError(t, err)

		stored := repo.users[userID]
		assert.True(t, sec.CheckPasswordHash("new-password", stored.PasswordHash))
		assert.False(t, sec.CheckPasswordHash("old-password", stored.PasswordHash))

		// The code is cleared on use.
		assert.Nil(t, stored.OTP)
		assert.Nil(t, stored.OTPExpiresAt)
	})

	t.Run("code_is_single_use", func(t *testing.T) {
		service, _, sender, _ := setup(t)

		require.NoError(t, service.ResetPassword(ctx, "kai@example.com", sender.sentCode, "new-password"))

		err := service.ResetPassword(ctx, "kai@example.com", sender.sentCode, "another-password")
		require.Error(t, err)
		assert.Equal(t, "Invalid OTP or OTP Expired", apperr.As(err).Message)
	})

	t.Run("wrong_code", func(t *testing.T) {
		service, _, sender, _ := setup(t)

		wrongCode := "000000"
		if sender.sentCode == wrongCode {
			wrongCode = "000001"
		}

		err := service.ResetPassword(ctx, "kai@example.com", wrongCode, "new-password")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
		assert.Equal(t, "Invalid OTP or OTP Expired", ae.Message)
	})

	t.Run("expired_code", func(t *testing.T) {
		service, repo, sender, userID := setup(t)

		// Rewind the expiry just past the deadline.
		expired := time.Now().Add(-time.Second)
		repo.users[userID].OTPExpiresAt = &expired

		err := service.ResetPassword(ctx, "kai@example.com", sender.sentCode, "new-password")
		require.Error(t, err)
		assert.Equal(t, "Invalid OTP or OTP Expired", apperr.As(err).Message)
	})

	// The expiry comparison is strict: a code is good while the deadline is
	// in the future and dead the instant it is reached.
	t.Run("code_accepted_inside_the_window", func(t *testing.T) {
		service, repo, sender, userID := setup(t)

		nearDeadline := time.Now().Add(time.Second)
		repo.users[userID].OTPExpiresAt = &nearDeadline

		require.NoError(t, service.ResetPassword(ctx, "kai@example.com", sender.sentCode, "new-password"))
	})

	t.Run("code_rejected_at_the_deadline", func(t *testing.T) {
		service, repo, sender, userID := setup(t)

		deadline := time.Now()
		repo.users[userID].OTPExpiresAt = &deadline

		err := service.ResetPassword(ctx, "kai@example.com", sender.sentCode, "new-password")
		require.Error(t, err)
		assert.Equal(t, "Invalid OTP or OTP Expired", apperr.As(err).Message)
	})
}
