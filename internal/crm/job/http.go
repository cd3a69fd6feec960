// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package job

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workhive/workhive/internal/platform/middleware"
	requestutil "github.com/workhive/workhive/internal/platform/request"
	"github.com/workhive/workhive/internal/platform/respond"
	"github.com/workhive/workhive/pkg/pagination"
)

// Handler implements job HTTP endpoints.
type Handler struct {
	jobService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{jobService: service}
}

// Routes returns a [chi.Router] configured with job routes. All routes
// require authentication and operate on the caller's own jobs.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{jobID}", handler.get)
	router.Patch("/{jobID}", handler.update)
	router.Delete("/{jobID}", handler.remove)

	return router
}

/*
List returns a page of the caller's jobs.

GET /api/v1/jobs?page=&limit=&status=&customer_id=

Response:
  - 200: []Job with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	filter := Filter{
		Status:     Status(request.URL.Query().Get("status")),
		CustomerID: request.URL.Query().Get("customer_id"),
	}

	jobs, total, err := handler.jobService.ListJobs(
		request.Context(), userID, filter, paginationParams.Limit, paginationParams.Offset(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, jobs, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	job, err := handler.jobService.GetJob(request.Context(), userID, chi.URLParam(request, "jobID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, job)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Job
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.jobService.CreateJob(request.Context(), userID, &input); err != nil {
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

	var input Job
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.jobService.UpdateJob(request.Context(), userID, chi.URLParam(request, "jobID"), &input); err != nil {
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

	if err := handler.jobService.DeleteJob(request.Context(), userID, chi.URLParam(request, "jobID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
