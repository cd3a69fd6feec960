// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/workhive/workhive/internal/platform/apperr"
	"github.com/workhive/workhive/internal/platform/ctxutil"
	"github.com/workhive/workhive/internal/platform/mailer"
	"github.com/workhive/workhive/internal/platform/sec"
	"github.com/workhive/workhive/internal/platform/totp"
	"github.com/workhive/workhive/pkg/uuid"
)

// # Contracts & Types

// DeviceRecorder registers client devices on successful authentication.
// Implemented by the device package's Service.
type DeviceRecorder interface {
	// Record upserts the device seen in this request and returns the
	// resolved device identifier (the client-supplied one, or a fingerprint
	// derived from IP and user agent when the client sent none).
	Record(context context.Context, userID, deviceID, ipAddress, userAgent string) (string, error)
}

// Service orchestrates the authentication state machine:
//
//	UNAUTHENTICATED -> PASSWORD_VERIFIED -> (MFA_PENDING ->)? SESSION_ISSUED
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, login, or
// MFA logic must be reviewed by the security team.
type Service struct {
	userRepository              UserRepository
	verificationTokenRepository VerificationTokenRepository
	loginLimiter                LoginLimiter
	tokens                      *TokenService
	devices                     DeviceRecorder
	mail                        mailer.Mailer
	totpEngine                  *totp.Engine

	// encryptionKey is the key material for MFA secrets at rest.
	encryptionKey string
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	verifyRepo VerificationTokenRepository,
	limiter LoginLimiter,
	tokens *TokenService,
	devices DeviceRecorder,
	mail mailer.Mailer,
	totpEngine *totp.Engine,
	encryptionKey string,
) *Service {
	return &Service{
		userRepository:              userRepo,
		verificationTokenRepository: verifyRepo,
		loginLimiter:                limiter,
		tokens:                      tokens,
		devices:                     devices,
		mail:                        mail,
		totpEngine:                  totpEngine,
		encryptionKey:               encryptionKey,
	}
}

// AuthSession represents a successfully established user session.
type AuthSession struct {
	User                  *User
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// ClientInfo carries the transport metadata attached to an auth attempt.
type ClientInfo struct {
	DeviceID  string // Client-supplied; may be empty.
	IPAddress string
	UserAgent string
}

// normalizeEmail canonicalizes an email for storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// issueSession records the device and creates a session for the user.
// Shared tail of register, login, and MFA verification.
func (service *Service) issueSession(context context.Context, user *User, client ClientInfo) (*AuthSession, error) {
	deviceID, err := service.devices.Record(context, user.ID, client.DeviceID, client.IPAddress, client.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("auth_service_device_record_failed: %w", err)
	}

	pair, err := service.tokens.IssueSession(context, user, deviceID, client.IPAddress, client.UserAgent)
	if err != nil {
		return nil, err
	}

	return &AuthSession{
		User:                  user,
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}, nil
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Client      ClientInfo
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Creates the account on the free tier with a 14-day trial window
and immediately issues a session — a fresh account cannot have MFA yet, so
there is no pending branch.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *AuthSession: Created user plus transport-ready tokens
  - error: Conflict (if email exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*AuthSession, error) {
	email := normalizeEmail(input.Email)

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	now := time.Now()
	// Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		Tier:         TierFree,
		TrialEndsAt:  now.Add(TrialDuration),
		IsVerified:   false,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Best-effort side effects. A mail outage must never fail registration.
	service.sendVerification(context, user)
	if err := service.mail.SendWelcome(context, user.Email, user.DisplayName); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "welcome_mail_failed", slog.String("error", err.Error()))
	}

	return service.issueSession(context, user, input.Client)
}

// sendVerification stores a verification token and emails it. Best-effort.
func (service *Service) sendVerification(context context.Context, user *User) {
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err != nil {
		return
	}
	if err := service.verificationTokenRepository.Set(context, token, user.ID, VerificationTokenTTL); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "verify_token_store_failed", slog.String("error", err.Error()))
		return
	}
	if err := service.mail.SendVerification(context, user.Email, token); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "verify_mail_failed", slog.String("error", err.Error()))
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
	Client   ClientInfo
}

// LoginResult is either an established session or an MFA challenge. When
// RequiresMFA is true, Session is nil and TempToken bridges to VerifyMFA —
// no tokens are issued until the code is verified.
type LoginResult struct {
	RequiresMFA bool
	TempToken   string
	Session     *AuthSession
}

/*
Login validates user credentials and either issues a session or opens an MFA
challenge.

Description: Verifies the password with constant-time comparison, then
branches on the account's MFA state. All credential failures surface as one
generic 401 so email-unknown and password-wrong are indistinguishable.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Session or MFA challenge
  - error: Unauthorized, RateLimited, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {
	email := normalizeEmail(input.Email)

	locked, err := service.loginLimiter.IsLocked(context, email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_lockout_check_failed: %w", err)
	}
	if locked {
		return nil, apperr.RateLimited(int(LoginLockoutTTL.Seconds()))
	}

	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		// Burn a KDF round anyway so unknown-email and wrong-password
		// take comparable time.
		sec.CheckPasswordHash(input.Password, "")
		service.recordFailure(context, email)
		return nil, apperr.Unauthorized(genericCredentialsMessage)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		service.recordFailure(context, email)
		return nil, apperr.Unauthorized(genericCredentialsMessage)
	}

	if err := service.loginLimiter.Reset(context, email); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "lockout_reset_failed", slog.String("error", err.Error()))
	}

	// MFA branch: no session yet, only a stateless 10-minute bridge token.
	if user.MFAEnabled {
		tempToken, err := service.tokens.IssueTempToken(user.ID)
		if err != nil {
			return nil, err
		}
		return &LoginResult{RequiresMFA: true, TempToken: tempToken}, nil
	}

	if err := service.userRepository.UpdateLastLogin(context, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_last_login_failed: %w", err)
	}

	session, err := service.issueSession(context, user, input.Client)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: session}, nil
}

// recordFailure bumps the lockout counter. Best-effort.
func (service *Service) recordFailure(context context.Context, email string) {
	if _, err := service.loginLimiter.RecordFailure(context, email); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "lockout_record_failed", slog.String("error", err.Error()))
	}
}

// # Session Management

/*
RefreshSession rotates a refresh token into a fresh credential pair.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *AuthSession: New session credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string) (*AuthSession, error) {
	refreshed, err := service.tokens.Refresh(context, refreshToken)
	if err != nil {
		return nil, err
	}

	return &AuthSession{
		User:                  refreshed.User,
		AccessToken:           refreshed.AccessToken,
		RefreshToken:          refreshed.RefreshToken,
		RefreshTokenExpiresAt: refreshed.RefreshTokenExpiresAt,
	}, nil
}

/*
Logout revokes the session bound to the presented access token.

Description: Idempotent; logging out an already-gone session succeeds.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - error: Storage failures only
*/
func (service *Service) Logout(context context.Context, accessToken string) error {
	return service.tokens.Revoke(context, accessToken)
}

/*
LogoutAll revokes every session belonging to the user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Storage failures
*/
func (service *Service) LogoutAll(context context.Context, userID string) error {
	return service.tokens.RevokeAll(context, userID)
}

// # Password Lifecycle

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password before writing the new hash.
Existing sessions are deliberately kept alive: a user who knows their current
password does not need to be kicked off other devices. Contrast with
ResetPassword, which revokes everything because reset implies the old
password may be compromised.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	return nil
}

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Always succeeds from the caller's perspective regardless of
whether the email exists, to prevent account enumeration. When the account
exists, only the salted hash of the token is stored; the plaintext goes out
by email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Generation or storage errors only
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		return nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(ResetTokenTTL)
	if err := service.userRepository.SetResetToken(context, user.ID, sec.HashToken(token), expiresAt); err != nil {
		return fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	if err := service.mail.SendPasswordReset(context, user.Email, token); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "reset_mail_failed", slog.String("error", err.Error()))
	}

	return nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Hash-matches the submitted token, writes the new hash, clears
the reset-token fields, and revokes ALL sessions for the user.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: ValidationError for bad tokens, or storage failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	user, err := service.userRepository.FindByResetTokenHash(context, sec.HashToken(token))
	if err != nil {
		return apperr.ValidationError("Reset token is invalid or expired")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	// UpdatePassword also clears the stored reset-token fields.
	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security cleanup: the old password may be compromised, so every
	// existing session goes.
	if err := service.tokens.RevokeAll(context, user.ID); err != nil {
		return fmt.Errorf("auth_service_reset_revoke_failed: %w", err)
	}

	return nil
}

// # Email Verification

/*
VerifyEmail confirms a user's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {
	userID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	if err := service.userRepository.MarkVerified(context, userID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	_ = service.verificationTokenRepository.Delete(context, token)

	return nil
}
