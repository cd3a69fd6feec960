// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package customer

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhive/workhive/internal/platform/apperr"
	"github.com/workhive/workhive/internal/platform/dberr"
	"github.com/workhive/workhive/pkg/pointer"
)

type memRepository struct {
	customers map[string]*Customer
}

func newMemRepository() *memRepository {
	return &memRepository{customers: make(map[string]*Customer)}
}

func (repo *memRepository) ListCustomers(_ context.Context, ownerID string, f Filter, limit, offset int) ([]*Customer, int, error) {
	var matched []*Customer
	for _, c := range repo.customers {
		if c.OwnerID != ownerID {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Query)) {
			continue
		}
		clone := *c
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (repo *memRepository) GetCustomer(_ context.Context, ownerID, id string) (*Customer, error) {
	c, ok := repo.customers[id]
	if !ok || c.OwnerID != ownerID {
		return nil, dberr.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (repo *memRepository) CreateCustomer(_ context.Context, c *Customer) error {
	clone := *c
	repo.customers[c.ID] = &clone
	return nil
}

func (repo *memRepository) UpdateCustomer(_ context.Context, c *Customer) error {
	existing, ok := repo.customers[c.ID]
	if !ok || existing.OwnerID != c.OwnerID {
		return dberr.ErrNotFound
	}
	clone := *c
	repo.customers[c.ID] = &clone
	return nil
}

func (repo *memRepository) DeleteCustomer(_ context.Context, ownerID, id string) error {
	existing, ok := repo.customers[id]
	if !ok || existing.OwnerID != ownerID {
		return dberr.ErrNotFound
	}
	delete(repo.customers, id)
	return nil
}

func (repo *memRepository) CustomerExists(_ context.Context, ownerID, id string) (bool, error) {
	existing, ok := repo.customers[id]
	return ok && existing.OwnerID == ownerID, nil
}

func newTestService() (*Service, *memRepository) {
	repo := newMemRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

func TestService_CreateCustomer(t *testing.T) {
	service, repo := newTestService()

	input := &Customer{
		Name:  "  Acme Plumbing  ",
		Email: pointer.To("office@acme.test"),
	}
	require.NoError(t, service.CreateCustomer(context.Background(), "owner-1", input))

	assert.NotEmpty(t, input.ID)
	assert.Equal(t, "Acme Plumbing", input.Name)

	stored := repo.customers[input.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "owner-1", stored.OwnerID)
}

func TestService_CreateCustomer_Validation(t *testing.T) {
	service, _ := newTestService()

	err := service.CreateCustomer(context.Background(), "owner-1", &Customer{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	err = service.CreateCustomer(context.Background(), "owner-1", &Customer{
		Name:  "Acme",
		Email: pointer.To("not-an-email"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestService_OwnerScoping(t *testing.T) {
	service, _ := newTestService()

	mine := &Customer{Name: "Mine"}
	require.NoError(t, service.CreateCustomer(context.Background(), "owner-1", mine))

	// Another owner cannot read, update, or delete the row.
	_, err := service.GetCustomer(context.Background(), "owner-2", mine.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	err = service.UpdateCustomer(context.Background(), "owner-2", mine.ID, &Customer{Name: "Hijacked"})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	err = service.DeleteCustomer(context.Background(), "owner-2", mine.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// Nor see it in a list.
	customers, total, err := service.ListCustomers(context.Background(), "owner-2", Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, customers)
}

func TestService_ListCustomers_Pagination(t *testing.T) {
	service, _ := newTestService()

	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		require.NoError(t, service.CreateCustomer(context.Background(), "owner-1", &Customer{Name: name}))
	}

	page, total, err := service.ListCustomers(context.Background(), "owner-1", Filter{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Alpha", page[0].Name)

	page, _, err = service.ListCustomers(context.Background(), "owner-1", Filter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Charlie", page[0].Name)
}
