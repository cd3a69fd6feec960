// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workhive/workhive/internal/platform/apperr"
	"github.com/workhive/workhive/internal/platform/constants"
)

// # Verification Token Repository

// RedisVerificationTokenRepository implements VerificationTokenRepository using Redis.
type RedisVerificationTokenRepository struct {
	client *redis.Client
}

// NewVerificationTokenRepository creates a new Redis-backed VerificationTokenRepository.
func NewVerificationTokenRepository(client *redis.Client) *RedisVerificationTokenRepository {
	return &RedisVerificationTokenRepository{client: client}
}

/*
Set stores a verification token with its associated userID and TTL.

Parameters:
  - context: context.Context
  - token: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Storage failures
*/
func (repository *RedisVerificationTokenRepository) Set(context context.Context, token string, userID string, ttl time.Duration) error {
	key := constants.RedisPrefixVerifyToken + token

	if err := repository.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_verify_token_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the userID for a given token.

Description: Returns apperr.NotFound if the token is not present.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: UserID
  - error: Resolution failures
*/
func (repository *RedisVerificationTokenRepository) Get(context context.Context, token string) (string, error) {
	key := constants.RedisPrefixVerifyToken + token

	userID, err := repository.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Verification token")
		}
		return "", fmt.Errorf("redis_verify_token_get_failed: %w", err)
	}

	return userID, nil
}

/*
Delete removes the token from Redis.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Execution failures
*/
func (repository *RedisVerificationTokenRepository) Delete(context context.Context, token string) error {
	key := constants.RedisPrefixVerifyToken + token

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_verify_token_delete_failed: %w", err)
	}

	return nil
}

// # Login Limiter

// RedisLoginLimiter implements LoginLimiter with a TTL-scoped failure counter
// per email. The counter key expires on its own, so a lockout always clears
// after [LoginLockoutTTL] without any cleanup job.
type RedisLoginLimiter struct {
	client *redis.Client
}

// NewLoginLimiter creates a new Redis-backed LoginLimiter.
func NewLoginLimiter(client *redis.Client) *RedisLoginLimiter {
	return &RedisLoginLimiter{client: client}
}

/*
RecordFailure increments the failure counter for the email.

Description: The TTL is (re)set on the first failure only, so the lockout
window is measured from the start of the failure streak.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - int: Failure count after the increment
  - error: Storage failures
*/
func (limiter *RedisLoginLimiter) RecordFailure(context context.Context, email string) (int, error) {
	key := constants.RedisPrefixLoginLockout + email

	count, err := limiter.client.Incr(context, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_login_limiter_incr_failed: %w", err)
	}

	if count == 1 {
		if err := limiter.client.Expire(context, key, LoginLockoutTTL).Err(); err != nil {
			return int(count), fmt.Errorf("redis_login_limiter_expire_failed: %w", err)
		}
	}

	return int(count), nil
}

/*
Reset clears the failure counter after a successful login.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Storage failures
*/
func (limiter *RedisLoginLimiter) Reset(context context.Context, email string) error {
	key := constants.RedisPrefixLoginLockout + email

	if err := limiter.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_login_limiter_reset_failed: %w", err)
	}

	return nil
}

/*
IsLocked reports whether the email has exceeded the failure budget.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - bool: Locked state
  - error: Storage failures
*/
func (limiter *RedisLoginLimiter) IsLocked(context context.Context, email string) (bool, error) {
	key := constants.RedisPrefixLoginLockout + email

	count, err := limiter.client.Get(context, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_login_limiter_get_failed: %w", err)
	}

	return count >= MaxLoginFailures, nil
}
