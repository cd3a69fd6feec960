// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

/*
Package auth implements the user identity and session lifecycle layer.

It defines the core domain entities (User, Session) and the logic for
registration, login, multi-factor authentication, password recovery, and
token rotation.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered member of the Workhive platform.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string `json:"display_name"`

	// Subscription state. Every account starts on the free tier with a
	// 14-day trial window.
	Tier        Tier      `json:"tier"`
	TrialEndsAt time.Time `json:"trial_ends_at"`

	// MFA state. Invariant: MFAEnabled implies MFASecretEnc != "".
	// The secret and backup codes are stored encrypted (crypt blob format)
	// and never leave the server in plaintext except once at enable time.
	MFAEnabled     bool     `json:"mfa_enabled"`
	MFASecretEnc   string   `json:"-"`
	BackupCodesEnc []string `json:"-"`

	// Password recovery state. Only the salted hash of the reset token is
	// stored; both fields are cleared when the password changes.
	ResetTokenHash      string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	IsVerified  bool       `json:"is_verified"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Session represents one active authenticated client. The access and refresh
// token values are stored hashed; the plaintext tokens exist only in transit.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	DeviceID         string    `json:"device_id"`
	AccessTokenHash  string    `json:"-"`
	RefreshTokenHash string    `json:"-"`
	IPAddress        string    `json:"ip_address"`
	UserAgent        string    `json:"user_agent"`
	ExpiresAt        time.Time `json:"expires_at"`
	LastUsedAt       time.Time `json:"last_used_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldDisplayName     = "display_name"
	FieldToken           = "token"
	FieldCode            = "code"
	FieldTempToken       = "temp_token"
	FieldRefreshToken    = "refresh_token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldMessage         = "message"
	FieldRequiresMFA     = "requires_mfa"
	FieldBackupCodes     = "backup_codes"
)
