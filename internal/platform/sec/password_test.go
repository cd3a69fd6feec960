// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhive/workhive/internal/platform/sec"
)

/*
TestHashPassword_RoundTrip verifies that a hashed password verifies against
itself and against nothing else.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	assert.True(t, sec.CheckPasswordHash("Sup3rSecret!", hash))
	assert.False(t, sec.CheckPasswordHash("sup3rsecret!", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
}

/*
TestHashPassword_SaltedPerCall verifies that hashing the same password twice
produces two different encodings (random per-call salt).
*/
func TestHashPassword_SaltedPerCall(t *testing.T) {
	first, err := sec.HashPassword("Passw0rd!")
	require.NoError(t, err)

	second, err := sec.HashPassword("Passw0rd!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, sec.CheckPasswordHash("Passw0rd!", first))
	assert.True(t, sec.CheckPasswordHash("Passw0rd!", second))
}

/*
TestCheckPasswordHash_MalformedHash verifies that a corrupted stored hash
never panics or errors — it simply fails verification.
*/
func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"garbage", "not-a-hash"},
		{"wrong_algorithm", "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{"truncated", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA"},
		{"bad_base64", "$argon2id$v=19$m=65536,t=3,p=2$!!!$???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, sec.CheckPasswordHash("Passw0rd!", tt.hash))
		})
	}
}

/*
TestTokenService_TypedTokens verifies type-tag separation between access and
MFA-pending temporary tokens.
*/
func TestTokenService_TypedTokens(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	service := sec.NewTokenServiceFromKey(key, "workhive.test")

	accessToken, err := service.GenerateAccessToken("user-1", "alice@workhive.app", 15*time.Minute)
	require.NoError(t, err)

	tempToken, err := service.GenerateTempToken("user-1", 10*time.Minute)
	require.NoError(t, err)

	// Access token verifies as access, not as temp.
	claims, err := service.VerifyToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@workhive.app", claims.Email)

	_, err = service.VerifyTempToken(accessToken)
	assert.Error(t, err)

	// Temp token verifies as temp, not as access.
	userID, err := service.VerifyTempToken(tempToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = service.VerifyToken(tempToken)
	assert.Error(t, err)
}

/*
TestTokenService_ExpiredToken verifies that an expired token is rejected.
*/
func TestTokenService_ExpiredToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	service := sec.NewTokenServiceFromKey(key, "workhive.test")

	expired, err := service.GenerateAccessToken("user-1", "alice@workhive.app", -1*time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(expired)
	assert.Error(t, err)
}

/*
TestGenerateSecureToken verifies token length and uniqueness.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.Len(t, first, 64) // 32 bytes, hex-encoded

	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Digest is stable and never equals the input.
	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.NotEqual(t, first, sec.HashToken(first))
}
