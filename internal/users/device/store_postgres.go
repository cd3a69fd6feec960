// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package device

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workhive/workhive/internal/platform/apperr"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Upsert inserts or refreshes a device row keyed by (userid, deviceid).

Description: ON CONFLICT keeps the operation a single atomic statement; the
existing row only refreshes its lastusedat while name and platform keep their
first-seen values.

Parameters:
  - context: context.Context
  - device: *Device

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Upsert(context context.Context, device *Device) error {
	const query = `
		INSERT INTO users.device (
			id, userid, deviceid, platform, name, lastusedat, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (userid, deviceid)
		DO UPDATE SET lastusedat = EXCLUDED.lastusedat`

	now := time.Now()
	if device.CreatedAt.IsZero() {
		device.CreatedAt = now
	}
	device.LastUsedAt = now

	_, err := repository.pool.Exec(context, query,
		device.ID,
		device.UserID,
		device.DeviceID,
		device.Platform,
		device.Name,
		device.LastUsedAt,
		device.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_device_repo_upsert_failed: %w", err)
	}

	return nil
}

/*
ListByUser returns every device registered to the user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Device: Most recently used first
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByUser(context context.Context, userID string) ([]*Device, error) {
	const query = `
		SELECT id, userid, deviceid, platform, name, lastusedat, createdat
		FROM users.device
		WHERE userid = $1
		ORDER BY lastusedat DESC`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_device_repo_list_failed: %w", err)
	}
	defer rows.Close()

	devices := make([]*Device, 0)
	for rows.Next() {
		device := &Device{}
		err := rows.Scan(
			&device.ID,
			&device.UserID,
			&device.DeviceID,
			&device.Platform,
			&device.Name,
			&device.LastUsedAt,
			&device.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_device_repo_scan_failed: %w", err)
		}
		devices = append(devices, device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_device_repo_rows_failed: %w", err)
	}

	return devices, nil
}

/*
Delete removes one device by its (userid, deviceid) pair.

Parameters:
  - context: context.Context
  - userID: string
  - deviceID: string

Returns:
  - error: apperr.NotFound when the pair does not exist
*/
func (repository *PostgresRepository) Delete(context context.Context, userID, deviceID string) error {
	const query = "DELETE FROM users.device WHERE userid = $1 AND deviceid = $2"

	tag, err := repository.pool.Exec(context, query, userID, deviceID)
	if err != nil {
		return fmt.Errorf("postgres_device_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Device")
	}
	return nil
}
