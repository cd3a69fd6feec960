// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package customer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/workhive/workhive/internal/platform/validate"
	"github.com/workhive/workhive/pkg/uuid"
)

// Service implements customer business logic on top of a Repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a customer Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListCustomers(context context.Context, ownerID string, filter Filter, limit, offset int) ([]*Customer, int, error) {
	return service.repo.ListCustomers(context, ownerID, filter, limit, offset)
}

func (service *Service) GetCustomer(context context.Context, ownerID, id string) (*Customer, error) {
	return service.repo.GetCustomer(context, ownerID, id)
}

func (service *Service) CreateCustomer(context context.Context, ownerID string, customer *Customer) error {
	customer.Name = strings.TrimSpace(customer.Name)

	if err := validateCustomer(customer); err != nil {
		return err
	}

	customer.ID = uuid.New()
	customer.OwnerID = ownerID

	if err := service.repo.CreateCustomer(context, customer); err != nil {
		return err
	}

	service.logger.Info("customer_created",
		slog.String("customer_id", customer.ID),
		slog.String("owner_id", ownerID),
	)
	return nil
}

func (service *Service) UpdateCustomer(context context.Context, ownerID, id string, customer *Customer) error {
	customer.ID = id
	customer.OwnerID = ownerID
	customer.Name = strings.TrimSpace(customer.Name)

	if err := validateCustomer(customer); err != nil {
		return err
	}

	if err := service.repo.UpdateCustomer(context, customer); err != nil {
		return err
	}

	service.logger.Info("customer_updated", slog.String("customer_id", id))
	return nil
}

func (service *Service) DeleteCustomer(context context.Context, ownerID, id string) error {
	if err := service.repo.DeleteCustomer(context, ownerID, id); err != nil {
		return err
	}

	service.logger.Warn("customer_deleted",
		slog.String("customer_id", id),
		slog.String("owner_id", ownerID),
	)
	return nil
}

func validateCustomer(customer *Customer) error {
	validator := &validate.Validator{}

	validator.Required(FieldName, customer.Name).MaxLen(FieldName, customer.Name, 200)
	if customer.Email != nil && *customer.Email != "" {
		validator.Email(FieldEmail, *customer.Email)
	}
	if customer.Phone != nil {
		validator.MaxLen(FieldPhone, *customer.Phone, 40)
	}
	if customer.Address != nil {
		validator.MaxLen(FieldAddress, *customer.Address, 500)
	}
	if customer.Notes != nil {
		validator.MaxLen(FieldNotes, *customer.Notes, 2000)
	}

	return validator.Err()
}
