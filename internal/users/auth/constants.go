// Copyright (c) 2026 GenUI Labs. All rights reserved.

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// The SPA holds the token in memory for a working day.
	AccessTokenTTL = 8 * time.Hour

	// OTPTTL is the validity window of a password-reset one-time code,
	// measured from issuance. Expiry is strict: a code presented at
	// exactly the deadline is rejected.
	OTPTTL = 10 * time.Minute
)

// # Profile Picture Uploads

const (
	// FormFieldProfilePic is the multipart form field carrying the image.
	FormFieldProfilePic = "profilePic"

	// MaxProfilePicBytes caps uploads at 5 MB.
	MaxProfilePicBytes = 5 << 20
)

// allowedProfilePicExts are the accepted image extensions, matching what
// the media store will transform.
var allowedProfilePicExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}
