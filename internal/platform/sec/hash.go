// Copyright (c) 2026 GenUI Labs. All rights reserved.

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is the bcrypt work factor. 10 rounds balances login
// latency against brute-force resistance for this workload.
const passwordHashCost = 10

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// bcrypt salts internally, so hashing the same password twice yields two
// different digests. The plain text is never logged or stored.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
