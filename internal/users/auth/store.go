// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given (lowercase) email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces the user's password hash and clears any
		pending reset-token state in the same statement.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		UpdateLastLogin stamps the user's lastloginat to now.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	UpdateLastLogin(context context.Context, userID string) error

	/*
		MarkVerified updates the user's status to isverified = true.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkVerified(context context.Context, userID string) error

	/*
		SetMFASecret stores an encrypted TOTP secret without enabling MFA.
		This is the first half of the two-phase setup -> enable commit.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - secretEnc: string (crypt blob)

		Returns:
		  - error: Persistence failures
	*/
	SetMFASecret(context context.Context, userID, secretEnc string) error

	/*
		EnableMFA flips mfaenabled to true and stores the encrypted backup
		code set. Fails if no secret has been staged by SetMFASecret.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - backupCodesEnc: []string (crypt blobs)

		Returns:
		  - error: Persistence failures
	*/
	EnableMFA(context context.Context, userID string, backupCodesEnc []string) error

	/*
		DisableMFA clears the secret, backup codes, and the enabled flag.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	DisableMFA(context context.Context, userID string) error

	/*
		ConsumeBackupCode atomically removes exactly one encrypted backup
		code from the user's stored set. Because encryption is randomized,
		each stored blob is unique; removal is keyed by the exact blob value
		so two concurrent uses of the same code race on a single row
		condition and at most one wins.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - codeEnc: string (exact stored blob)

		Returns:
		  - error: apperr.NotFound when the blob is already gone
	*/
	ConsumeBackupCode(context context.Context, userID, codeEnc string) error

	/*
		SetResetToken stores the salted hash and expiry of a password reset
		token, replacing any previous one.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - tokenHash: string
		  - expiresAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	SetResetToken(context context.Context, userID, tokenHash string, expiresAt time.Time) error

	/*
		FindByResetTokenHash resolves a non-expired reset token hash to its
		account.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when absent or expired
	*/
	FindByResetTokenHash(context context.Context, tokenHash string) (*User, error)
}

// # Session Data Access

// SessionRepository defines the data access contract for token sessions.
// Sessions are hard-deleted on revocation; there is no tombstone state.
type SessionRepository interface {

	/*
		Create persists a new session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByRefreshTokenHash returns the unexpired session matching the
		given refresh token hash.

		Parameters:
		  - context: context.Context
		  - refreshTokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound when absent or expired
	*/
	FindByRefreshTokenHash(context context.Context, refreshTokenHash string) (*Session, error)

	/*
		Rotate atomically swaps a session's token hashes, keyed by the OLD
		refresh token hash. The conditional single-statement update is the
		commit point of refresh rotation: when two requests replay the same
		refresh token, exactly one matches the old hash and wins.

		Parameters:
		  - context: context.Context
		  - oldRefreshHash: string
		  - newRefreshHash: string
		  - newAccessHash: string

		Returns:
		  - error: apperr.NotFound when the old hash no longer matches
	*/
	Rotate(context context.Context, oldRefreshHash, newRefreshHash, newAccessHash string) error

	/*
		DeleteByAccessTokenHash removes the session holding the given access
		token hash. Deleting an absent session is not an error (idempotent
		logout).

		Parameters:
		  - context: context.Context
		  - accessTokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteByAccessTokenHash(context context.Context, accessTokenHash string) error

	/*
		DeleteAllByUser removes every session belonging to the userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteAllByUser(context context.Context, userID string) error

	/*
		DeleteByDevice removes all of a user's sessions bound to one device,
		via the indexed deviceid column.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - deviceID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteByDevice(context context.Context, userID, deviceID string) error

	/*
		DeleteExpired physically removes sessions whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) error
}

// # Volatile Data Access

// VerificationTokenRepository defines the contract for storing volatile email verification tokens.
type VerificationTokenRepository interface {

	/*
		Set stores a verification token associated with a userID.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given verification token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a verification token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}

// LoginLimiter tracks consecutive failed login attempts per email and locks
// the account after too many.
type LoginLimiter interface {

	/*
		RecordFailure increments the failure counter for the email, starting
		the lockout window on the first failure.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - int: Failure count after the increment
		  - error: Storage failures
	*/
	RecordFailure(context context.Context, email string) (int, error)

	/*
		Reset clears the failure counter after a successful login.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - error: Storage failures
	*/
	Reset(context context.Context, email string) error

	/*
		IsLocked reports whether the email has exceeded the failure budget.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - bool: Locked state
		  - error: Storage failures
	*/
	IsLocked(context context.Context, email string) (bool, error)
}
