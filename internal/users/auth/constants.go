// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the absolute lifetime of a session. Rotation does
	// not extend it; after 7 days the user must log in again.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the opaque refresh token (256 bits).
	RefreshTokenLength = 32

	// TempTokenTTL bounds the MFA-pending window between password
	// verification and code verification.
	TempTokenTTL = 10 * time.Minute

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32

	// VerificationTokenTTL is the duration an email verification token remains valid.
	// Long-lived (24 hours) as users might not check email immediately.
	VerificationTokenTTL = 24 * time.Hour

	// VerificationTokenLength is the byte length of the random verification token.
	VerificationTokenLength = 32

	// TrialDuration is the free trial window granted at registration.
	TrialDuration = 14 * 24 * time.Hour

	// BackupCodeCount is the batch size of single-use MFA backup codes.
	BackupCodeCount = 10

	// LoginTOTPWindow is the accepted clock-skew window (in 30s steps) when
	// verifying codes at login, MFA setup confirmation, and disable.
	LoginTOTPWindow = 1

	// EnableTOTPWindow is the wider window used only for the explicit enable
	// step, tolerating more skew on a device that was just enrolled.
	EnableTOTPWindow = 2

	// MaxLoginFailures is the number of consecutive failed logins before
	// the account is temporarily locked.
	MaxLoginFailures = 5

	// LoginLockoutTTL is how long a locked account stays locked.
	LoginLockoutTTL = 15 * time.Minute
)

// genericCredentialsMessage is the single client-facing message for every
// credential failure. Email-unknown, password-wrong, and MFA-code-wrong must
// be indistinguishable from outside to prevent account enumeration.
const genericCredentialsMessage = "Invalid login credentials"
