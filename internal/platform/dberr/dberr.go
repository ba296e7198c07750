// Copyright (c) 2026 GenUI Labs. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/genui-labs/genui-server/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the
// error type.
//
// # Classification
//
//   - pgx.ErrNoRows        -> NotFound (notFoundMsg)
//   - SQLSTATE 23505       -> Conflict (conflictMsg)
//   - everything else      -> Internal
func Wrap(err error, notFoundMsg, conflictMsg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(notFoundMsg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperr.Conflict(conflictMsg)
	}

	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505), optionally scoped to a named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
