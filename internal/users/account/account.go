// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

/*
Package account handles user profile management and account lifecycle.

It provides functionalities for users to view and update their private
identity data and to close their account.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Security: Account deletion forces a global sign-out.
*/
package account

import (
	"context"
	"time"

	"github.com/workhive/workhive/internal/users/auth"
)

// # Transport Views

// Profile is the safety-mapped view of an account for transport. It omits
// every credential and MFA field.
type Profile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Tier        auth.Tier  `json:"tier"`
	TrialEndsAt time.Time  `json:"trial_ends_at"`
	MFAEnabled  bool       `json:"mfa_enabled"`
	IsVerified  bool       `json:"is_verified"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// newProfile maps a domain user onto its transport view.
func newProfile(user *auth.User) *Profile {
	return &Profile{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Tier:        user.Tier,
		TrialEndsAt: user.TrialEndsAt,
		MFAEnabled:  user.MFAEnabled,
		IsVerified:  user.IsVerified,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// # Repository Contracts

// AccountRepository defines the persistence contract for user accounts.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		UpdateProfile modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	UpdateProfile(context context.Context, user *auth.User) error

	/*
		SoftDelete flags an account as logically deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id string) error
}

// SessionRevoker terminates sessions when an account closes.
// Implemented by the auth package's TokenService.
type SessionRevoker interface {
	// RevokeAll deletes every session belonging to the user.
	RevokeAll(context context.Context, userID string) error
}

// # Field Identifiers

const (
	FieldDisplayName = "display_name"
	FieldMessage     = "message"
)
