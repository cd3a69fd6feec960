// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/workhive/workhive/internal/platform/apperr"
	"github.com/workhive/workhive/internal/platform/sec"
	"github.com/workhive/workhive/pkg/uuid"
)

// # Contracts & Types

// AccessTokenSigner defines the cryptographic token operations the session
// lifecycle depends on. Implemented by [sec.TokenService].
type AccessTokenSigner interface {
	// GenerateAccessToken creates a signed JWT for the given user.
	GenerateAccessToken(userID, email string, timeToLive time.Duration) (string, error)

	// GenerateTempToken creates a stateless MFA-pending token.
	GenerateTempToken(userID string, timeToLive time.Duration) (string, error)

	// VerifyTempToken resolves an MFA-pending token back to a userID,
	// rejecting expired, malformed, or wrong-type tokens.
	VerifyTempToken(token string) (string, error)
}

// TokenPair is a freshly issued access/refresh credential pair.
type TokenPair struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// RefreshedSession is the result of a successful refresh rotation.
type RefreshedSession struct {
	TokenPair
	User *User
}

// TokenService owns the Session entity lifecycle: issuance, rotation-on-use,
// and revocation. Refresh tokens are opaque 256-bit random values, single-use
// per rotation; only their hashes are persisted.
type TokenService struct {
	sessionRepository SessionRepository
	userRepository    UserRepository
	signer            AccessTokenSigner
}

// NewTokenService constructs a new [TokenService] with necessary dependencies.
func NewTokenService(sessionRepo SessionRepository, userRepo UserRepository, signer AccessTokenSigner) *TokenService {
	return &TokenService{
		sessionRepository: sessionRepo,
		userRepository:    userRepo,
		signer:            signer,
	}
}

// # Session Issuance

/*
IssueSession creates a Session row and returns a signed access token plus an
opaque refresh token.

Description: The access JWT is short-lived (15m); the refresh token carries
the session's absolute 7-day expiry. Only token hashes reach storage.

Parameters:
  - context: context.Context
  - user: *User
  - deviceID: string (resolved device identifier)
  - ipAddress: string
  - userAgent: string

Returns:
  - *TokenPair: Transport-ready credentials
  - error: Signing or persistence failures
*/
func (service *TokenService) IssueSession(context context.Context, user *User, deviceID, ipAddress, userAgent string) (*TokenPair, error) {
	accessToken, err := service.signer.GenerateAccessToken(user.ID, user.Email, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token_service_access_token_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("token_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:               uuid.New(),
		UserID:           user.ID,
		DeviceID:         deviceID,
		AccessTokenHash:  sec.HashToken(accessToken),
		RefreshTokenHash: sec.HashToken(refreshToken),
		IPAddress:        ipAddress,
		UserAgent:        userAgent,
		ExpiresAt:        expiresAt,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("token_service_session_creation_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
	}, nil
}

/*
Refresh implements the refresh token rotation mechanism.

Description: Resolves the presented token to its session, generates a fresh
pair, and commits through an atomic conditional update keyed by the OLD
refresh hash. Every refresh token is single-use: a replay of an
already-rotated token fails at the commit point even under concurrency.
The session's absolute expiry is never extended by rotation.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *RefreshedSession: New credentials plus the owning user
  - error: Unauthorized for unknown/expired/replayed tokens
*/
func (service *TokenService) Refresh(context context.Context, refreshToken string) (*RefreshedSession, error) {
	oldHash := sec.HashToken(refreshToken)

	session, err := service.sessionRepository.FindByRefreshTokenHash(context, oldHash)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	accessToken, err := service.signer.GenerateAccessToken(user.ID, user.Email, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token_service_refresh_access_token_failed: %w", err)
	}

	newRefreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("token_service_refresh_secure_token_failed: %w", err)
	}

	// Commit point. If a concurrent request already rotated this session,
	// the old hash no longer matches and this replay loses the race.
	err = service.sessionRepository.Rotate(context, oldHash, sec.HashToken(newRefreshToken), sec.HashToken(accessToken))
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, apperr.Unauthorized("Invalid or expired refresh token")
		}
		return nil, fmt.Errorf("token_service_refresh_rotate_failed: %w", err)
	}

	return &RefreshedSession{
		TokenPair: TokenPair{
			AccessToken:           accessToken,
			RefreshToken:          newRefreshToken,
			RefreshTokenExpiresAt: session.ExpiresAt,
		},
		User: user,
	}, nil
}

// # Revocation

/*
Revoke deletes the session whose stored access token matches.

Description: Idempotent; revoking an already-gone session is not an error.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - error: Persistence failures only
*/
func (service *TokenService) Revoke(context context.Context, accessToken string) error {
	if err := service.sessionRepository.DeleteByAccessTokenHash(context, sec.HashToken(accessToken)); err != nil {
		return fmt.Errorf("token_service_revoke_failed: %w", err)
	}
	return nil
}

/*
RevokeAll deletes every session belonging to the user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (service *TokenService) RevokeAll(context context.Context, userID string) error {
	if err := service.sessionRepository.DeleteAllByUser(context, userID); err != nil {
		return fmt.Errorf("token_service_revoke_all_failed: %w", err)
	}
	return nil
}

/*
RevokeByDevice deletes all of a user's sessions bound to one device.

Parameters:
  - context: context.Context
  - userID: string
  - deviceID: string

Returns:
  - error: Persistence failures
*/
func (service *TokenService) RevokeByDevice(context context.Context, userID, deviceID string) error {
	if err := service.sessionRepository.DeleteByDevice(context, userID, deviceID); err != nil {
		return fmt.Errorf("token_service_revoke_by_device_failed: %w", err)
	}
	return nil
}

// # MFA-Pending Tokens

// IssueTempToken creates a stateless 10-minute token bridging password
// verification and MFA-code verification. No session is created.
func (service *TokenService) IssueTempToken(userID string) (string, error) {
	token, err := service.signer.GenerateTempToken(userID, TempTokenTTL)
	if err != nil {
		return "", fmt.Errorf("token_service_temp_token_failed: %w", err)
	}
	return token, nil
}

// VerifyTempToken resolves an MFA-pending token to a userID. It fails closed
// on expired, malformed, or wrong-type tokens.
func (service *TokenService) VerifyTempToken(token string) (string, error) {
	userID, err := service.signer.VerifyTempToken(token)
	if err != nil {
		return "", apperr.Unauthorized("Invalid or expired MFA token")
	}
	return userID, nil
}
