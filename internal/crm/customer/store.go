// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package customer

import "context"

// Repository abstracts customer persistence. Every method is scoped by the
// owning user: a row that exists under another owner behaves as not found.
type Repository interface {
	ListCustomers(context context.Context, ownerID string, f Filter, limit, offset int) ([]*Customer, int, error)
	GetCustomer(context context.Context, ownerID, id string) (*Customer, error)
	CreateCustomer(context context.Context, c *Customer) error
	UpdateCustomer(context context.Context, c *Customer) error
	DeleteCustomer(context context.Context, ownerID, id string) error
	CustomerExists(context context.Context, ownerID, id string) (bool, error)
}
