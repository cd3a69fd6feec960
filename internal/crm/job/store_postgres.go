// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package job

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workhive/workhive/internal/platform/dberr"
)

const jobColumns = `id, ownerid, customerid, title, description, status, scheduledat, createdat, updatedat`

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) ListJobs(context context.Context, ownerID string, f Filter, limit, offset int) ([]*Job, int, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM crm.job
		WHERE ownerid = $1 AND deletedat IS NULL`
	countQuery := `SELECT count(*) FROM crm.job WHERE ownerid = $1 AND deletedat IS NULL`

	args := []any{ownerID}
	countArgs := []any{ownerID}

	if f.Status != "" {
		placeholder := `$` + strconv.Itoa(len(args)+1)
		query += ` AND status = ` + placeholder
		countQuery += ` AND status = ` + placeholder
		args = append(args, f.Status)
		countArgs = append(countArgs, f.Status)
	}

	if f.CustomerID != "" {
		placeholder := `$` + strconv.Itoa(len(args)+1)
		query += ` AND customerid = ` + placeholder
		countQuery += ` AND customerid = ` + placeholder
		args = append(args, f.CustomerID)
		countArgs = append(countArgs, f.CustomerID)
	}

	query += ` ORDER BY scheduledat DESC NULLS LAST, createdat DESC` +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_jobs")
	}

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_jobs")
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j := &Job{}
		if err := rows.Scan(&j.ID, &j.OwnerID, &j.CustomerID, &j.Title, &j.Description, &j.Status, &j.ScheduledAt, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_job")
		}
		jobs = append(jobs, j)
	}

	return jobs, total, nil
}

func (repository *PostgresRepository) GetJob(context context.Context, ownerID, id string) (*Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM crm.job
		WHERE id = $1 AND ownerid = $2 AND deletedat IS NULL`

	j := &Job{}
	err := repository.pool.QueryRow(context, query, id, ownerID).Scan(
		&j.ID, &j.OwnerID, &j.CustomerID, &j.Title, &j.Description, &j.Status, &j.ScheduledAt, &j.CreatedAt, &j.UpdatedAt,
	)

	return j, dberr.Wrap(err, "get_job")
}

func (repository *PostgresRepository) CreateJob(context context.Context, j *Job) error {
	query := `
		INSERT INTO crm.job (id, ownerid, customerid, title, description, status, scheduledat, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING createdat, updatedat`

	err := repository.pool.QueryRow(context, query,
		j.ID, j.OwnerID, j.CustomerID, j.Title, j.Description, j.Status, j.ScheduledAt,
	).Scan(&j.CreatedAt, &j.UpdatedAt)

	return dberr.Wrap(err, "create_job")
}

func (repository *PostgresRepository) UpdateJob(context context.Context, j *Job) error {
	query := `
		UPDATE crm.job
		SET customerid = $3, title = $4, description = $5, status = $6, scheduledat = $7, updatedat = NOW()
		WHERE id = $1 AND ownerid = $2 AND deletedat IS NULL
		RETURNING updatedat`

	err := repository.pool.QueryRow(context, query,
		j.ID, j.OwnerID, j.CustomerID, j.Title, j.Description, j.Status, j.ScheduledAt,
	).Scan(&j.UpdatedAt)

	return dberr.Wrap(err, "update_job")
}

func (repository *PostgresRepository) DeleteJob(context context.Context, ownerID, id string) error {
	query := `
		UPDATE crm.job SET deletedat = NOW()
		WHERE id = $1 AND ownerid = $2 AND deletedat IS NULL`

	cmd, err := repository.pool.Exec(context, query, id, ownerID)
	if err != nil {
		return dberr.Wrap(err, "delete_job")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) CountActiveJobs(context context.Context, ownerID string) (int, error) {
	query := `
		SELECT count(*)
		FROM crm.job
		WHERE ownerid = $1 AND deletedat IS NULL
		  AND status IN ($2, $3, $4)`

	var total int
	err := repository.pool.QueryRow(context, query, ownerID,
		StatusPending, StatusScheduled, StatusInProgress,
	).Scan(&total)
	if err != nil {
		return 0, dberr.Wrap(err, "count_active_jobs")
	}

	return total, nil
}
