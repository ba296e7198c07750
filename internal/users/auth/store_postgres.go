// Copyright (c) 2026 GenUI Labs. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genui-labs/genui-server/internal/platform/apperr"
	"github.com/genui-labs/genui-server/internal/platform/dberr"
)

// Unique constraint names from the users.account migration. Used to tell a
// username collision apart from an email collision when the pre-check race
// loses.
const (
	constraintUsernameKey = "account_username_key"
	constraintEmailKey    = "account_email_key"
)

// accountColumns is the canonical SELECT column list for users.account.
const accountColumns = `id, username, email, passwordhash, profilepicurl, isprofilecomplete, otp, otpexpiresat, createdat, updatedat`

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// scanUser hydrates a User from a row with the accountColumns order.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ProfilePic,
		&user.IsProfileComplete,
		&user.OTP,
		&user.OTPExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

A unique violation is classified by constraint name so the caller receives
the same Conflict message a pre-check would have produced.
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, profilepicurl, isprofilecomplete, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.ProfilePic,
		user.IsProfileComplete,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err, constraintUsernameKey) {
			return apperr.Conflict("Username must be unique")
		}
		if dberr.IsUniqueViolation(err, constraintEmailKey) {
			return apperr.Conflict("Email already exists")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user record by their unique (normalized) email.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE email = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "User not found", "")
	}

	return user, nil
}

// FindByUsername retrieves a user record by their unique (normalized) username.
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE username = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, dberr.Wrap(err, "User not found", "")
	}

	return user, nil
}

// FindByID retrieves a user record by primary key.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User not found", "")
	}

	return user, nil
}

/*
SetOTP stores a pending password-reset code and its expiry on the user row.

A later forgot-password call simply lands here again and overwrites the
earlier pair; pending codes never stack.
*/
func (repository *PostgresUserRepository) SetOTP(ctx context.Context, userID, code string, expiresAt time.Time) error {
	const query = `
		UPDATE users.account
		SET otp = $2, otpexpiresat = $3, updatedat = $4
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, userID, code, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_otp_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}

	return nil
}

/*
ResetPasswordByOTP replaces the password hash for the user matching
(email, code) with an OTP expiry strictly in the future, clearing the OTP
pair in the same statement.

The single UPDATE makes validation, hash replacement, and OTP clearing one
atomic step, so a concurrent duplicate submission of the same code can
succeed at most once.
*/
func (repository *PostgresUserRepository) ResetPasswordByOTP(ctx context.Context, email, code, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $3, otp = NULL, otpexpiresat = NULL, updatedat = $4
		WHERE email = $1 AND otp = $2 AND otpexpiresat > NOW()`

	tag, err := repository.pool.Exec(ctx, query, email, code, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_reset_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ValidationError("Invalid OTP or OTP Expired")
	}

	return nil
}

// CompleteProfile writes the picture URL and marks the profile complete,
// returning the updated record.
func (repository *PostgresUserRepository) CompleteProfile(ctx context.Context, userID, profilePicURL string) (*User, error) {
	const query = `
		UPDATE users.account
		SET profilepicurl = $2, isprofilecomplete = TRUE, updatedat = $3
		WHERE id = $1
		RETURNING ` + accountColumns

	user, err := scanUser(repository.pool.QueryRow(ctx, query, userID, profilePicURL, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("postgres_user_repo_complete_profile_failed: %w", err)
	}

	return user, nil
}

// MarkProfileComplete flips the completion flag without touching the
// picture URL, returning the updated record.
func (repository *PostgresUserRepository) MarkProfileComplete(ctx context.Context, userID string) (*User, error) {
	const query = `
		UPDATE users.account
		SET isprofilecomplete = TRUE, updatedat = $2
		WHERE id = $1
		RETURNING ` + accountColumns

	user, err := scanUser(repository.pool.QueryRow(ctx, query, userID, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("postgres_user_repo_mark_profile_complete_failed: %w", err)
	}

	return user, nil
}
