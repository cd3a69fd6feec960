// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package auth

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	pqtotp "github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhive/workhive/internal/platform/apperr"
)

// currentCode computes the TOTP code an authenticator app would show now.
func currentCode(t *testing.T, secret string) string {
	t.Helper()

	code, err := pqtotp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

// enrollMFA walks the full setup -> enable flow and returns the secret plus
// the one-time backup codes.
func enrollMFA(t *testing.T, harness *serviceHarness, userID string) (string, []string) {
	t.Helper()
	ctx := context.Background()

	setup, err := harness.service.SetupMFA(ctx, userID)
	require.NoError(t, err)

	codes, err := harness.service.EnableMFA(ctx, userID, currentCode(t, setup.Secret))
	require.NoError(t, err)
	return setup.Secret, codes
}

func TestService_SetupMFA_TwoPhase(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "alice@x.com", "Passw0rd!")
	ctx := context.Background()
	userID := session.User.ID

	setup, err := harness.service.SetupMFA(ctx, userID)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.ProvisioningURI, "otpauth://totp/")
	assert.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))

	// Setup alone must not enable MFA: an abandoned enrollment never locks
	// the user out.
	user, err := harness.users.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, user.MFAEnabled)
	assert.NotEmpty(t, user.MFASecretEnc)
	assert.NotEqual(t, setup.Secret, user.MFASecretEnc, "secret must be stored encrypted")

	// Login still goes straight to a session.
	result, err := harness.service.Login(ctx, LoginInput{Email: "alice@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.False(t, result.RequiresMFA)
}

func TestService_EnableMFA(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "alice@x.com", "Passw0rd!")
	ctx := context.Background()
	userID := session.User.ID

	_, codes := enrollMFA(t, harness, userID)
	require.Len(t, codes, BackupCodeCount)
	for _, code := range codes {
		assert.Equal(t, strings.ToUpper(code), code)
	}

	user, err := harness.users.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, user.MFAEnabled)
	assert.Len(t, user.BackupCodesEnc, BackupCodeCount)
}

func TestService_EnableMFA_WithoutSetup(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "alice@x.com", "Passw0rd!")

	_, err := harness.service.EnableMFA(context.Background(), session.User.ID, "123456")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
}

func TestService_EnableMFA_BadCode(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "alice@x.com", "Passw0rd!")
	ctx := context.Background()

	_, err := harness.service.SetupMFA(ctx, session.User.ID)
	require.NoError(t, err)

	_, err = harness.service.EnableMFA(ctx, session.User.ID, "000000")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)
}

func TestService_Login_MFABranch(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "alice@x.com", "Passw0rd!")
	ctx := context.Background()
	userID := session.User.ID
	secret, _ := enrollMFA(t, harness, userID)

	sessionsBefore := harness.sessions.countByUser(userID)

	result, err := harness.service.Login(ctx, LoginInput{Email: "alice@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	// MFA-enabled login never returns tokens directly.
	assert.True(t, result.RequiresMFA)
	assert.NotEmpty(t, result.TempToken)
	assert.Nil(t, result.Session)
	assert.Equal(t, sessionsBefore, harness.sessions.countByUser(userID), "no session before code verification")

	established, err := harness.service.VerifyMFA(ctx, VerifyMFAInput{
		TempToken: result.TempToken,
		Code:      currentCode(t, secret),
		Client:    ClientInfo{DeviceID: "device-1"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, established.AccessToken)
	assert.Equal(t, sessionsBefore+1, harness.sessions.countByUser(userID))
}

func TestService_VerifyMFA_BadToken(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "alice@x.com", "Passw0rd!")
	enrollMFA(t, harness, session.User.ID)

	// An access token is not a temp token.
	_, err := harness.service.VerifyMFA(context.Background(), VerifyMFAInput{
		TempToken: session.AccessToken,
		Code:      "123456",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)
}

func TestService_VerifyMFA_BackupCodeFallback(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "alice@x.com", "Passw0rd!")
	ctx := context.Background()
	userID := session.User.ID
	_, codes := enrollMFA(t, harness, userID)

	login := func() string {
		result, err := harness.service.Login(ctx, LoginInput{Email: "alice@x.com", Password: "Passw0rd!"})
		require.NoError(t, err)
		require.True(t, result.RequiresMFA)
		return result.TempToken
	}

	// A backup code works where a TOTP code would.
	_, err := harness.service.VerifyMFA(ctx, VerifyMFAInput{TempToken: login(), Code: codes[0]})
	require.NoError(t, err)

	user, err := harness.users.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, user.BackupCodesEnc, BackupCodeCount-1, "used code is consumed")

	// Exactly once: the same code is rejected on replay.
	_, err = harness.service.VerifyMFA(ctx, VerifyMFAInput{TempToken: login(), Code: codes[0]})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)

	// The remaining codes stay valid.
	_, err = harness.service.VerifyMFA(ctx, VerifyMFAInput{TempToken: login(), Code: codes[1]})
	require.NoError(t, err)
}

func TestService_VerifyMFA_TempTokenReusableUntilExpiry(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "alice@x.com", "Passw0rd!")
	ctx := context.Background()
	secret, _ := enrollMFA(t, harness, session.User.ID)

	result, err := harness.service.Login(ctx, LoginInput{Email: "alice@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	// The temp token is stateless: it stays valid for its whole 10-minute
	// lifetime even after a successful verification.
	_, err = harness.service.VerifyMFA(ctx, VerifyMFAInput{TempToken: result.TempToken, Code: currentCode(t, secret)})
	require.NoError(t, err)
	_, err = harness.service.VerifyMFA(ctx, VerifyMFAInput{TempToken: result.TempToken, Code: currentCode(t, secret)})
	require.NoError(t, err)
}

func TestService_DisableMFA(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "alice@x.com", "Passw0rd!")
	ctx := context.Background()
	userID := session.User.ID
	secret, _ := enrollMFA(t, harness, userID)

	// Password alone is not enough.
	err := harness.service.DisableMFA(ctx, userID, "Passw0rd!", "000000")
	require.Error(t, err)

	// Code alone is not enough either.
	err = harness.service.DisableMFA(ctx, userID, "WrongPass1", currentCode(t, secret))
	require.Error(t, err)

	// Both together clear every trace of the second factor.
	require.NoError(t, harness.service.DisableMFA(ctx, userID, "Passw0rd!", currentCode(t, secret)))

	user, err := harness.users.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, user.MFAEnabled)
	assert.Empty(t, user.MFASecretEnc)
	assert.Empty(t, user.BackupCodesEnc)

	result, err := harness.service.Login(ctx, LoginInput{Email: "alice@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.False(t, result.RequiresMFA)
}
