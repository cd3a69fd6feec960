// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

/*
Package job manages the work items an owner schedules for their customers.

Jobs are owner-scoped like customers: every operation is keyed by the
authenticated user, and a job always references one of the owner's own
customers. Creation is gated by the owner's subscription tier, which caps
how many jobs may be active at once.
*/
package job

import (
	"fmt"
	"time"
)

// Status is the closed set of lifecycle states a job moves through.
type Status string

const (
	StatusPending    Status = "pending"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus converts a raw string into a [Status], rejecting unknown values.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusPending, StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(value), nil
	}
	return "", fmt.Errorf("job: unknown status %q", value)
}

// String implements [fmt.Stringer].
func (status Status) String() string { return string(status) }

// Active reports whether a job in this status counts against the owner's
// tier cap. Completed and cancelled jobs never do.
func (status Status) Active() bool {
	switch status {
	case StatusPending, StatusScheduled, StatusInProgress:
		return true
	case StatusCompleted, StatusCancelled:
		return false
	}
	return false
}

// Job is a unit of scheduled work performed for a customer.
type Job struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"-"`
	CustomerID  string     `json:"customer_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"` // soft-delete tracker
}

// Filter holds the parameters for a paginated job search.
type Filter struct {
	Status     Status // Empty means any status
	CustomerID string // Empty means any customer
}

// Global field names for validation
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldCustomerID  = "customer_id"
)
