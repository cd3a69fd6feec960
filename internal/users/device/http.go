// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package device

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workhive/workhive/internal/platform/middleware"
	requestutil "github.com/workhive/workhive/internal/platform/request"
	"github.com/workhive/workhive/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements device-registry HTTP endpoints.
type Handler struct {
	deviceService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{deviceService: service}
}

// Routes returns a [chi.Router] configured with device routes. All routes
// require authentication.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Delete("/{deviceID}", handler.remove)

	return router
}

/*
List returns the authenticated user's registered devices.

GET /api/v1/devices

Response:
  - 200: []Device: Most recently used first
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	devices, err := handler.deviceService.List(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{FieldDevices: devices})
}

/*
Remove deletes a device and revokes its sessions.

DELETE /api/v1/devices/{deviceID}

Response:
  - 204: No Content: Device removed, sessions revoked
  - 404: ErrNotFound: Unknown device
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	deviceID := chi.URLParam(request, "deviceID")
	if err := handler.deviceService.Remove(request.Context(), userID, deviceID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
