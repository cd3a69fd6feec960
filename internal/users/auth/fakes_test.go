// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/workhive/workhive/internal/platform/apperr"
	"github.com/workhive/workhive/internal/platform/constants"
	"github.com/workhive/workhive/internal/platform/mailer"
	"github.com/workhive/workhive/internal/platform/sec"
	"github.com/workhive/workhive/internal/platform/totp"
)

// In-memory repository doubles mirroring the behavior of the Postgres
// implementations, including their NotFound mapping and the conditional
// single-winner semantics of Rotate and ConsumeBackupCode.

// # User Repository

type memUserRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: make(map[string]*User)}
}

func (repo *memUserRepository) Create(_ context.Context, user *User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *user
	repo.users[user.ID] = &clone
	return nil
}

func (repo *memUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	clone.BackupCodesEnc = append([]string(nil), user.BackupCodesEnc...)
	return &clone, nil
}

func (repo *memUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.PasswordHash = newHash
		user.ResetTokenHash = ""
		user.ResetTokenExpiresAt = nil
	}
	return nil
}

func (repo *memUserRepository) UpdateLastLogin(_ context.Context, userID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (repo *memUserRepository) MarkVerified(_ context.Context, userID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.IsVerified = true
	}
	return nil
}

func (repo *memUserRepository) SetMFASecret(_ context.Context, userID, secretEnc string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.MFASecretEnc = secretEnc
	}
	return nil
}

func (repo *memUserRepository) EnableMFA(_ context.Context, userID string, backupCodesEnc []string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user, ok := repo.users[userID]
	if !ok || user.MFASecretEnc == "" {
		return apperr.NotFound("MFA setup")
	}
	user.MFAEnabled = true
	user.BackupCodesEnc = append([]string(nil), backupCodesEnc...)
	return nil
}

func (repo *memUserRepository) DisableMFA(_ context.Context, userID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.MFAEnabled = false
		user.MFASecretEnc = ""
		user.BackupCodesEnc = nil
	}
	return nil
}

func (repo *memUserRepository) ConsumeBackupCode(_ context.Context, userID, codeEnc string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user, ok := repo.users[userID]
	if !ok {
		return apperr.NotFound("Backup code")
	}
	for i, blob := range user.BackupCodesEnc {
		if blob == codeEnc {
			user.BackupCodesEnc = append(user.BackupCodesEnc[:i], user.BackupCodesEnc[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Backup code")
}

func (repo *memUserRepository) SetResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.ResetTokenHash = tokenHash
		user.ResetTokenExpiresAt = &expiresAt
	}
	return nil
}

func (repo *memUserRepository) FindByResetTokenHash(_ context.Context, tokenHash string) (*User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if user.ResetTokenHash == tokenHash && user.ResetTokenExpiresAt != nil && user.ResetTokenExpiresAt.After(time.Now()) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Reset token")
}

// # Session Repository

type memSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newMemSessionRepository() *memSessionRepository {
	return &memSessionRepository{sessions: make(map[string]*Session)}
}

func (repo *memSessionRepository) Create(_ context.Context, session *Session) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *session
	repo.sessions[session.ID] = &clone
	return nil
}

func (repo *memSessionRepository) FindByRefreshTokenHash(_ context.Context, refreshTokenHash string) (*Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, session := range repo.sessions {
		if session.RefreshTokenHash == refreshTokenHash && session.ExpiresAt.After(time.Now()) {
			clone := *session
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (repo *memSessionRepository) Rotate(_ context.Context, oldRefreshHash, newRefreshHash, newAccessHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, session := range repo.sessions {
		if session.RefreshTokenHash == oldRefreshHash && session.ExpiresAt.After(time.Now()) {
			session.RefreshTokenHash = newRefreshHash
			session.AccessTokenHash = newAccessHash
			session.LastUsedAt = time.Now()
			return nil
		}
	}
	return apperr.NotFound("Session")
}

func (repo *memSessionRepository) DeleteByAccessTokenHash(_ context.Context, accessTokenHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for id, session := range repo.sessions {
		if session.AccessTokenHash == accessTokenHash {
			delete(repo.sessions, id)
		}
	}
	return nil
}

func (repo *memSessionRepository) DeleteAllByUser(_ context.Context, userID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for id, session := range repo.sessions {
		if session.UserID == userID {
			delete(repo.sessions, id)
		}
	}
	return nil
}

func (repo *memSessionRepository) DeleteByDevice(_ context.Context, userID, deviceID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for id, session := range repo.sessions {
		if session.UserID == userID && session.DeviceID == deviceID {
			delete(repo.sessions, id)
		}
	}
	return nil
}

func (repo *memSessionRepository) DeleteExpired(_ context.Context) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for id, session := range repo.sessions {
		if !session.ExpiresAt.After(time.Now()) {
			delete(repo.sessions, id)
		}
	}
	return nil
}

func (repo *memSessionRepository) countByUser(userID string) int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	count := 0
	for _, session := range repo.sessions {
		if session.UserID == userID {
			count++
		}
	}
	return count
}

// # Volatile Stores

type memVerificationTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemVerificationTokenRepository() *memVerificationTokenRepository {
	return &memVerificationTokenRepository{tokens: make(map[string]string)}
}

func (repo *memVerificationTokenRepository) Set(_ context.Context, token, userID string, _ time.Duration) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.tokens[token] = userID
	return nil
}

func (repo *memVerificationTokenRepository) Get(_ context.Context, token string) (string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	userID, ok := repo.tokens[token]
	if !ok {
		return "", apperr.NotFound("Verification token")
	}
	return userID, nil
}

func (repo *memVerificationTokenRepository) Delete(_ context.Context, token string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.tokens, token)
	return nil
}

type memLoginLimiter struct {
	mu       sync.Mutex
	failures map[string]int
}

func newMemLoginLimiter() *memLoginLimiter {
	return &memLoginLimiter{failures: make(map[string]int)}
}

func (limiter *memLoginLimiter) RecordFailure(_ context.Context, email string) (int, error) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	limiter.failures[email]++
	return limiter.failures[email], nil
}

func (limiter *memLoginLimiter) Reset(_ context.Context, email string) error {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.failures, email)
	return nil
}

func (limiter *memLoginLimiter) IsLocked(_ context.Context, email string) (bool, error) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return limiter.failures[email] >= MaxLoginFailures, nil
}

// # Device Recorder

type memDeviceRecorder struct {
	mu      sync.Mutex
	records []string
}

func (recorder *memDeviceRecorder) Record(_ context.Context, userID, deviceID, _, _ string) (string, error) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if deviceID == "" {
		deviceID = "fingerprint-" + userID
	}
	recorder.records = append(recorder.records, deviceID)
	return deviceID, nil
}

// # Harness

const testEncryptionKey = "unit-test-secret-encryption-key"

type serviceHarness struct {
	service    *Service
	tokens     *TokenService
	users      *memUserRepository
	sessions   *memSessionRepository
	verifyRepo *memVerificationTokenRepository
	limiter    *memLoginLimiter
	devices    *memDeviceRecorder
	totpEngine *totp.Engine
}

// newServiceHarness wires a fully in-memory Service with a real RSA signer,
// real argon2 hashing, and a real TOTP engine.
func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer := sec.NewTokenServiceFromKey(privateKey, constants.AuthIssuer)

	users := newMemUserRepository()
	sessions := newMemSessionRepository()
	verifyRepo := newMemVerificationTokenRepository()
	limiter := newMemLoginLimiter()
	devices := &memDeviceRecorder{}
	engine := totp.NewEngine(constants.AuthIssuer)
	tokens := NewTokenService(sessions, users, signer)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(
		users,
		verifyRepo,
		limiter,
		tokens,
		devices,
		mailer.NewLogMailer(quiet),
		engine,
		testEncryptionKey,
	)

	return &serviceHarness{
		service:    service,
		tokens:     tokens,
		users:      users,
		sessions:   sessions,
		verifyRepo: verifyRepo,
		limiter:    limiter,
		devices:    devices,
		totpEngine: engine,
	}
}

func (harness *serviceHarness) register(t *testing.T, email, password string) *AuthSession {
	t.Helper()

	session, err := harness.service.Register(context.Background(), RegisterInput{
		Email:       email,
		Password:    password,
		DisplayName: "Test User",
		Client:      ClientInfo{DeviceID: "device-1", IPAddress: "203.0.113.7", UserAgent: "go-test"},
	})
	require.NoError(t, err)
	return session
}
