// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package job

import (
	"context"

	"github.com/workhive/workhive/internal/users/auth"
)

// Repository abstracts job persistence. Every method is scoped by the owning
// user: a row that exists under another owner behaves as not found.
type Repository interface {
	ListJobs(context context.Context, ownerID string, f Filter, limit, offset int) ([]*Job, int, error)
	GetJob(context context.Context, ownerID, id string) (*Job, error)
	CreateJob(context context.Context, j *Job) error
	UpdateJob(context context.Context, j *Job) error
	DeleteJob(context context.Context, ownerID, id string) error

	// CountActiveJobs counts the owner's jobs in an active status. Used to
	// enforce the subscription tier cap at creation time.
	CountActiveJobs(context context.Context, ownerID string) (int, error)
}

// CustomerDirectory answers whether a customer belongs to an owner. Satisfied
// by the customer repository.
type CustomerDirectory interface {
	CustomerExists(context context.Context, ownerID, customerID string) (bool, error)
}

// UserDirectory resolves the owner's account, used to read the subscription
// tier. Satisfied by the auth user repository.
type UserDirectory interface {
	FindByID(context context.Context, id string) (*auth.User, error)
}
