// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhive/workhive/internal/platform/apperr"
)

// newTestRedis spins up an in-process Redis and a client bound to it.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	server := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func TestVerificationTokenRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repository := NewVerificationTokenRepository(newTestRedis(t))

	require.NoError(t, repository.Set(ctx, "tok-abc", "user-1", VerificationTokenTTL))

	userID, err := repository.Get(ctx, "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, repository.Delete(ctx, "tok-abc"))

	_, err = repository.Get(ctx, "tok-abc")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestVerificationTokenRepository_UnknownToken(t *testing.T) {
	repository := NewVerificationTokenRepository(newTestRedis(t))

	_, err := repository.Get(context.Background(), "never-stored")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestLoginLimiter_LocksAfterBudget(t *testing.T) {
	ctx := context.Background()
	limiter := NewLoginLimiter(newTestRedis(t))
	email := "alice@workhive.app"

	// Fresh email is never locked.
	locked, err := limiter.IsLocked(ctx, email)
	require.NoError(t, err)
	assert.False(t, locked)

	// One below the budget: still open.
	for i := 0; i < MaxLoginFailures-1; i++ {
		_, err := limiter.RecordFailure(ctx, email)
		require.NoError(t, err)
	}
	locked, err = limiter.IsLocked(ctx, email)
	require.NoError(t, err)
	assert.False(t, locked)

	// The final failure trips the lock.
	count, err := limiter.RecordFailure(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, MaxLoginFailures, count)

	locked, err = limiter.IsLocked(ctx, email)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestLoginLimiter_ResetClearsStreak(t *testing.T) {
	ctx := context.Background()
	limiter := NewLoginLimiter(newTestRedis(t))
	email := "bob@workhive.app"

	for i := 0; i < MaxLoginFailures; i++ {
		_, err := limiter.RecordFailure(ctx, email)
		require.NoError(t, err)
	}

	require.NoError(t, limiter.Reset(ctx, email))

	locked, err := limiter.IsLocked(ctx, email)
	require.NoError(t, err)
	assert.False(t, locked)
}
