// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package customer

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workhive/workhive/internal/platform/middleware"
	requestutil "github.com/workhive/workhive/internal/platform/request"
	"github.com/workhive/workhive/internal/platform/respond"
	"github.com/workhive/workhive/pkg/pagination"
)

// Handler implements customer HTTP endpoints.
type Handler struct {
	customerService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{customerService: service}
}

// Routes returns a [chi.Router] configured with customer routes. All routes
// require authentication and operate on the caller's own customers.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{customerID}", handler.get)
	router.Patch("/{customerID}", handler.update)
	router.Delete("/{customerID}", handler.remove)

	return router
}

/*
List returns a page of the caller's customers.

GET /api/v1/customers?page=&limit=&q=

Response:
  - 200: []Customer with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	filter := Filter{
		Query: request.URL.Query().Get("q"),
	}

	customers, total, err := handler.customerService.ListCustomers(
		request.Context(), userID, filter, paginationParams.Limit, paginationParams.Offset(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, customers, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	customer, err := handler.customerService.GetCustomer(request.Context(), userID, chi.URLParam(request, "customerID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, customer)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Customer
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.customerService.CreateCustomer(request.Context(), userID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Customer
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.customerService.UpdateCustomer(request.Context(), userID, chi.URLParam(request, "customerID"), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, input)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.customerService.DeleteCustomer(request.Context(), userID, chi.URLParam(request, "customerID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
