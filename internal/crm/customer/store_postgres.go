// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package customer

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workhive/workhive/internal/platform/dberr"
)

const customerColumns = `id, ownerid, name, email, phone, address, notes, createdat, updatedat`

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) ListCustomers(context context.Context, ownerID string, f Filter, limit, offset int) ([]*Customer, int, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM crm.customer
		WHERE ownerid = $1 AND deletedat IS NULL`
	countQuery := `SELECT count(*) FROM crm.customer WHERE ownerid = $1 AND deletedat IS NULL`

	args := []any{ownerID}
	countArgs := []any{ownerID}

	if f.Query != "" {
		searchTerm := "%" + f.Query + "%"
		query += ` AND (name ILIKE $2 OR email ILIKE $2)`
		countQuery += ` AND (name ILIKE $2 OR email ILIKE $2)`
		args = append(args, searchTerm)
		countArgs = append(countArgs, searchTerm)
	}

	query += ` ORDER BY name ASC LIMIT $` + itos(len(args)+1) + ` OFFSET $` + itos(len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_customers")
	}

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_customers")
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		c := &Customer{}
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_customer")
		}
		customers = append(customers, c)
	}

	return customers, total, nil
}

func (repository *PostgresRepository) GetCustomer(context context.Context, ownerID, id string) (*Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM crm.customer
		WHERE id = $1 AND ownerid = $2 AND deletedat IS NULL`

	c := &Customer{}
	err := repository.pool.QueryRow(context, query, id, ownerID).Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)

	return c, dberr.Wrap(err, "get_customer")
}

func (repository *PostgresRepository) CreateCustomer(context context.Context, c *Customer) error {
	query := `
		INSERT INTO crm.customer (id, ownerid, name, email, phone, address, notes, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING createdat, updatedat`

	err := repository.pool.QueryRow(context, query,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Address, c.Notes,
	).Scan(&c.CreatedAt, &c.UpdatedAt)

	return dberr.Wrap(err, "create_customer")
}

func (repository *PostgresRepository) UpdateCustomer(context context.Context, c *Customer) error {
	query := `
		UPDATE crm.customer
		SET name = $3, email = $4, phone = $5, address = $6, notes = $7, updatedat = NOW()
		WHERE id = $1 AND ownerid = $2 AND deletedat IS NULL
		RETURNING updatedat`

	err := repository.pool.QueryRow(context, query,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Address, c.Notes,
	).Scan(&c.UpdatedAt)

	return dberr.Wrap(err, "update_customer")
}

func (repository *PostgresRepository) DeleteCustomer(context context.Context, ownerID, id string) error {
	query := `
		UPDATE crm.customer SET deletedat = NOW()
		WHERE id = $1 AND ownerid = $2 AND deletedat IS NULL`

	cmd, err := repository.pool.Exec(context, query, id, ownerID)
	if err != nil {
		return dberr.Wrap(err, "delete_customer")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) CustomerExists(context context.Context, ownerID, id string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM crm.customer
			WHERE id = $1 AND ownerid = $2 AND deletedat IS NULL
		)`

	var exists bool
	if err := repository.pool.QueryRow(context, query, id, ownerID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "customer_exists")
	}
	return exists, nil
}

func itos(i int) string {
	return strconv.Itoa(i)
}
