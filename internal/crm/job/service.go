// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package job

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/workhive/workhive/internal/platform/apperr"
	"github.com/workhive/workhive/internal/platform/validate"
	"github.com/workhive/workhive/pkg/uuid"
)

// Service implements job business logic on top of a Repository.
type Service struct {
	repo      Repository
	customers CustomerDirectory
	users     UserDirectory
	logger    *slog.Logger
}

// NewService creates a job Service.
func NewService(repo Repository, customers CustomerDirectory, users UserDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		users:     users,
		logger:    logger,
	}
}

func (service *Service) ListJobs(context context.Context, ownerID string, filter Filter, limit, offset int) ([]*Job, int, error) {
	return service.repo.ListJobs(context, ownerID, filter, limit, offset)
}

func (service *Service) GetJob(context context.Context, ownerID, id string) (*Job, error) {
	return service.repo.GetJob(context, ownerID, id)
}

/*
CreateJob validates and persists a new job for the owner.

Description: New jobs default to the pending status. Creation is refused when
the referenced customer does not belong to the owner, or when the owner has
reached the active-job cap of their subscription tier.

Parameters:
  - context: context.Context
  - ownerID: string
  - job: *Job (mutated with the generated ID and timestamps)

Returns:
  - error: VALIDATION_ERROR, FORBIDDEN on tier cap, or persistence failures
*/
func (service *Service) CreateJob(context context.Context, ownerID string, job *Job) error {
	job.Title = strings.TrimSpace(job.Title)
	if job.Status == "" {
		job.Status = StatusPending
	}

	if err := validateJob(job); err != nil {
		return err
	}

	exists, err := service.customers.CustomerExists(context, ownerID, job.CustomerID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Customer")
	}

	if err := service.checkActiveJobCap(context, ownerID); err != nil {
		return err
	}

	job.ID = uuid.New()
	job.OwnerID = ownerID

	if err := service.repo.CreateJob(context, job); err != nil {
		return err
	}

	service.logger.Info("job_created",
		slog.String("job_id", job.ID),
		slog.String("owner_id", ownerID),
		slog.String("status", job.Status.String()),
	)
	return nil
}

func (service *Service) UpdateJob(context context.Context, ownerID, id string, job *Job) error {
	existing, err := service.repo.GetJob(context, ownerID, id)
	if err != nil {
		return err
	}

	job.ID = id
	job.OwnerID = ownerID
	job.Title = strings.TrimSpace(job.Title)
	if job.Status == "" {
		job.Status = existing.Status
	}
	if job.CustomerID == "" {
		job.CustomerID = existing.CustomerID
	}

	if err := validateJob(job); err != nil {
		return err
	}

	if job.CustomerID != existing.CustomerID {
		exists, err := service.customers.CustomerExists(context, ownerID, job.CustomerID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("Customer")
		}
	}

	// Reopening a finished job re-enters the active pool, so the tier cap
	// applies again.
	if !existing.Status.Active() && job.Status.Active() {
		if err := service.checkActiveJobCap(context, ownerID); err != nil {
			return err
		}
	}

	if err := service.repo.UpdateJob(context, job); err != nil {
		return err
	}

	service.logger.Info("job_updated",
		slog.String("job_id", id),
		slog.String("status", job.Status.String()),
	)
	return nil
}

func (service *Service) DeleteJob(context context.Context, ownerID, id string) error {
	if err := service.repo.DeleteJob(context, ownerID, id); err != nil {
		return err
	}

	service.logger.Warn("job_deleted",
		slog.String("job_id", id),
		slog.String("owner_id", ownerID),
	)
	return nil
}

// checkActiveJobCap enforces the owner's tier limit on concurrently active jobs.
func (service *Service) checkActiveJobCap(context context.Context, ownerID string) error {
	owner, err := service.users.FindByID(context, ownerID)
	if err != nil {
		return err
	}

	limit := owner.Tier.MaxActiveJobs()
	if limit < 0 {
		return nil // unlimited
	}

	active, err := service.repo.CountActiveJobs(context, ownerID)
	if err != nil {
		return err
	}

	if active >= limit {
		return apperr.Forbidden(fmt.Sprintf(
			"Active job limit reached for the %s plan (%d). Complete or cancel existing jobs, or upgrade your plan.",
			owner.Tier, limit,
		))
	}

	return nil
}

func validateJob(job *Job) error {
	validator := &validate.Validator{}

	validator.Required(FieldTitle, job.Title).MaxLen(FieldTitle, job.Title, 200)
	validator.Required(FieldCustomerID, job.CustomerID)
	if job.Description != nil {
		validator.MaxLen(FieldDescription, *job.Description, 5000)
	}

	if _, err := ParseStatus(job.Status.String()); err != nil {
		validator.Custom(FieldStatus, true, "must be one of: pending, scheduled, in_progress, completed, cancelled")
	}

	return validator.Err()
}
