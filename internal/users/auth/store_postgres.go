// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

// PostgreSQL implementations of the auth repositories.
//
// # Architecture
//
// Repositories are strictly separated from domain logic. They implement the
// domain-defined interfaces (e.g., [UserRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workhive/workhive/internal/platform/apperr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// userColumns is the canonical select list shared by every account lookup.
const userColumns = `
	id, email, passwordhash, displayname, tier, trialendsat,
	mfaenabled, COALESCE(mfasecretenc, ''), COALESCE(backupcodesenc, '{}'),
	COALESCE(resettokenhash, ''), resettokenexpiresat,
	isverified, lastloginat, createdat, updatedat`

// scanUser hydrates a User from a row using the userColumns order.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Tier,
		&user.TrialEndsAt,
		&user.MFAEnabled,
		&user.MFASecretEnc,
		&user.BackupCodesEnc,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.IsVerified,
		&user.LastLoginAt,
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

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, email, passwordhash, displayname, tier, trialendsat,
			mfaenabled, isverified, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.Tier,
		user.TrialEndsAt,
		user.MFAEnabled,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique lowercase email address.

Description: Performs a lookup on the account table, filtering out soft-deleted users.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Description: Primary key resolution for user accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
UpdatePassword updates the password hash for a specific user and clears any
pending reset-token state in the same statement.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, resettokenhash = NULL, resettokenexpiresat = NULL, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
UpdateLastLogin stamps the user's lastloginat to now.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdateLastLogin(context context.Context, userID string) error {
	const query = "UPDATE users.account SET lastloginat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_last_login_failed: %w", err)
	}
	return nil
}

/*
MarkVerified updates the user's status to isverified = true.

Description: Post-verification cleanup to activate the account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Database errors
*/
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string) error {
	const query = "UPDATE users.account SET isverified = TRUE, updatedat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_mark_verified_failed: %w", err)
	}
	return nil
}

/*
SetMFASecret stages an encrypted TOTP secret without enabling MFA.

Parameters:
  - context: context.Context
  - userID: string
  - secretEnc: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetMFASecret(context context.Context, userID, secretEnc string) error {
	const query = `
		UPDATE users.account
		SET mfasecretenc = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, secretEnc, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_mfa_secret_failed: %w", err)
	}
	return nil
}

/*
EnableMFA flips mfaenabled and stores the encrypted backup code set.

Description: The WHERE clause requires a staged secret, so enabling without
a prior SetMFASecret is a no-op surfaced as NotFound.

Parameters:
  - context: context.Context
  - userID: string
  - backupCodesEnc: []string

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) EnableMFA(context context.Context, userID string, backupCodesEnc []string) error {
	const query = `
		UPDATE users.account
		SET mfaenabled = TRUE, backupcodesenc = $2, updatedat = $3
		WHERE id = $1 AND mfasecretenc IS NOT NULL AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, userID, backupCodesEnc, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_enable_mfa_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("MFA setup")
	}
	return nil
}

/*
DisableMFA clears the secret, backup codes, and the enabled flag.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) DisableMFA(context context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET mfaenabled = FALSE, mfasecretenc = NULL, backupcodesenc = NULL, updatedat = $2
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_disable_mfa_failed: %w", err)
	}
	return nil
}

/*
ConsumeBackupCode atomically removes one encrypted backup code blob.

Description: array_remove is conditional on the blob still being present, so
a replayed code loses the race and reads zero affected rows.

Parameters:
  - context: context.Context
  - userID: string
  - codeEnc: string

Returns:
  - error: apperr.NotFound when the blob was already consumed
*/
func (repository *PostgresUserRepository) ConsumeBackupCode(context context.Context, userID, codeEnc string) error {
	const query = `
		UPDATE users.account
		SET backupcodesenc = array_remove(backupcodesenc, $2), updatedat = $3
		WHERE id = $1 AND $2 = ANY(backupcodesenc)`

	tag, err := repository.pool.Exec(context, query, userID, codeEnc, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_consume_backup_code_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Backup code")
	}
	return nil
}

/*
SetResetToken stores the salted hash and expiry of a password reset token.

Parameters:
  - context: context.Context
  - userID: string
  - tokenHash: string
  - expiresAt: time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetResetToken(context context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users.account
		SET resettokenhash = $2, resettokenexpiresat = $3, updatedat = $4
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, tokenHash, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_reset_token_failed: %w", err)
	}
	return nil
}

/*
FindByResetTokenHash resolves a non-expired reset token hash to its account.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound when absent or expired
*/
func (repository *PostgresUserRepository) FindByResetTokenHash(context context.Context, tokenHash string) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users.account
		WHERE resettokenhash = $1 AND resettokenexpiresat > NOW() AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Reset token")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_reset_token_failed: %w", err)
	}

	return user, nil
}

// # Session Repository

// PostgresSessionRepository implements the SessionRepository interface.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

/*
Create persists a new session record into the users.session table.

Description: Records a successful authentication session in persistent storage.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO users.session (
			id, userid, deviceid, accesstokenhash, refreshtokenhash,
			ipaddress, useragent, expiresat, lastusedat, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastUsedAt.IsZero() {
		session.LastUsedAt = now
	}

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.DeviceID,
		session.AccessTokenHash,
		session.RefreshTokenHash,
		session.IPAddress,
		session.UserAgent,
		session.ExpiresAt,
		session.LastUsedAt,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByRefreshTokenHash retrieves an unexpired session by its refresh token hash.

Description: Securely resolves a refresh token hash into an active session.

Parameters:
  - context: context.Context
  - refreshTokenHash: string

Returns:
  - *Session: Hydrated session metadata
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresSessionRepository) FindByRefreshTokenHash(context context.Context, refreshTokenHash string) (*Session, error) {
	const query = `
		SELECT id, userid, deviceid, accesstokenhash, refreshtokenhash,
		       ipaddress, useragent, expiresat, lastusedat, createdat
		FROM users.session
		WHERE refreshtokenhash = $1 AND expiresat > NOW()`

	session := &Session{}
	err := repository.pool.QueryRow(context, query, refreshTokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.DeviceID,
		&session.AccessTokenHash,
		&session.RefreshTokenHash,
		&session.IPAddress,
		&session.UserAgent,
		&session.ExpiresAt,
		&session.LastUsedAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("postgres_session_repo_find_failed: %w", err)
	}

	return session, nil
}

/*
Rotate atomically swaps a session's token hashes keyed by the old refresh hash.

Description: Single conditional UPDATE; the old refresh token value becomes
permanently invalid the instant this commits. A concurrent replay of the same
old token matches zero rows.

Parameters:
  - context: context.Context
  - oldRefreshHash: string
  - newRefreshHash: string
  - newAccessHash: string

Returns:
  - error: apperr.NotFound when the old hash no longer matches an unexpired session
*/
func (repository *PostgresSessionRepository) Rotate(context context.Context, oldRefreshHash, newRefreshHash, newAccessHash string) error {
	const query = `
		UPDATE users.session
		SET refreshtokenhash = $2, accesstokenhash = $3, lastusedat = NOW()
		WHERE refreshtokenhash = $1 AND expiresat > NOW()`

	tag, err := repository.pool.Exec(context, query, oldRefreshHash, newRefreshHash, newAccessHash)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_rotate_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Session")
	}
	return nil
}

/*
DeleteByAccessTokenHash removes the session holding the given access token hash.

Description: Zero affected rows is success — logout is idempotent.

Parameters:
  - context: context.Context
  - accessTokenHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresSessionRepository) DeleteByAccessTokenHash(context context.Context, accessTokenHash string) error {
	const query = "DELETE FROM users.session WHERE accesstokenhash = $1"
	_, err := repository.pool.Exec(context, query, accessTokenHash)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_delete_by_access_failed: %w", err)
	}
	return nil
}

/*
DeleteAllByUser removes every session belonging to a user.

Description: Security nuking of all active sessions for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Batch deletion failures
*/
func (repository *PostgresSessionRepository) DeleteAllByUser(context context.Context, userID string) error {
	const query = "DELETE FROM users.session WHERE userid = $1"
	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_delete_all_failed: %w", err)
	}
	return nil
}

/*
DeleteByDevice removes a user's sessions bound to one device.

Description: Indexed delete on (userid, deviceid); no table scan.

Parameters:
  - context: context.Context
  - userID: string
  - deviceID: string

Returns:
  - error: Deletion failures
*/
func (repository *PostgresSessionRepository) DeleteByDevice(context context.Context, userID, deviceID string) error {
	const query = "DELETE FROM users.session WHERE userid = $1 AND deviceid = $2"
	_, err := repository.pool.Exec(context, query, userID, deviceID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_delete_by_device_failed: %w", err)
	}
	return nil
}

/*
DeleteExpired permanently removes all sessions that have passed their expiration.

Description: Cleanup task to reclaim storage from stale sessions.

Parameters:
  - context: context.Context

Returns:
  - error: Cleanup failures
*/
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context) error {
	const query = "DELETE FROM users.session WHERE expiresat <= NOW()"
	_, err := repository.pool.Exec(context, query)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err)
	}
	return nil
}
