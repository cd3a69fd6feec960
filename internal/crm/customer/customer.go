// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

/*
Package customer manages the customer book of an account owner.

Every customer row belongs to exactly one owner (the authenticated user),
and every operation in this package is scoped by that owner. One owner can
never observe or mutate another owner's customers, regardless of the IDs
they guess.
*/
package customer

import "time"

// Customer is a person or company an owner performs jobs for.
type Customer struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"-"`
	Name      string     `json:"name"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Address   *string    `json:"address"`
	Notes     *string    `json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // soft-delete tracker
}

// Filter holds the parameters for a paginated customer search.
type Filter struct {
	Query string // Substring search against name and email
}

// Global field names for validation
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldAddress = "address"
	FieldNotes   = "notes"
)
