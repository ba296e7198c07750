// Copyright (c) 2026 GenUI Labs. All rights reserved.

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// One-time code bounds. Codes are always 6 digits so they never need
// zero-padding and survive clients that strip leading zeroes.
const (
	otpMin   = 100000
	otpRange = 900000
)

// GenerateOTP returns a 6-digit numeric one-time code drawn uniformly at
// random from [100000, 999999] using the OS entropy source.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%d", otpMin+n.Int64()), nil
}
