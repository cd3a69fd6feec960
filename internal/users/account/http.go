// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workhive/workhive/internal/platform/middleware"
	requestutil "github.com/workhive/workhive/internal/platform/request"
	"github.com/workhive/workhive/internal/platform/respond"
	"github.com/workhive/workhive/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements account HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with account routes. All routes
// require authentication.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.getProfile)
	router.Patch("/", handler.updateProfile)
	router.Delete("/", handler.deleteAccount)

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
}

/*
GetProfile returns the authenticated user's profile.

GET /api/v1/account

Response:
  - 200: Profile
  - 404: ErrNotFound: Account deleted
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
UpdateProfile applies partial changes to the authenticated user's profile.

PATCH /api/v1/account

Request:
  - Body: updateProfileRequest (DisplayName?)

Response:
  - 200: Profile: Updated profile
  - 400: ErrValidation: Invalid fields
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.DisplayName != nil {
		v := &validate.Validator{}
		v.Required(FieldDisplayName, *input.DisplayName).
			MaxLen(FieldDisplayName, *input.DisplayName, 100)
		if err := v.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	profile, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
DeleteAccount soft-deletes the authenticated user's account.

DELETE /api/v1/account

Description: The account row is retained but flagged; every session is
revoked, forcing a global sign-out.

Response:
  - 204: No Content: Account closed
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
