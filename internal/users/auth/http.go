// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

// HTTP delivery layer for the authentication lifecycle.
//
// # Architecture
//
// The handler acts as a thin mediation layer between the web and domain services:
//   - Protocol: Standard RESTful JSON interface; tokens travel in the body.
//   - Security: Access token as Bearer header; refresh token presented in the body.
//   - Verification: Enforces strict input validation before passing to [Service].
//
// This layer is strictly responsible for transport concerns (status codes, headers, JSON).
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/workhive/workhive/internal/platform/apperr"
	"github.com/workhive/workhive/internal/platform/constants"
	"github.com/workhive/workhive/internal/platform/middleware"
	requestutil "github.com/workhive/workhive/internal/platform/request"
	"github.com/workhive/workhive/internal/platform/respond"
	"github.com/workhive/workhive/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the user lifecycle entry points
// (Registration, Login, MFA, Password Recovery callbacks).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/mfa/verify", handler.verifyMFA)
	router.Post("/refresh", handler.refresh)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/logout-all", handler.logoutAll)
		r.Post("/change-password", handler.changePassword)
		r.Post("/mfa/setup", handler.setupMFA)
		r.Post("/mfa/enable", handler.enableMFA)
		r.Post("/mfa/disable", handler.disableMFA)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyMFARequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type enableMFARequest struct {
	Code string `json:"code"`
}

type disableMFARequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// clientInfo assembles the transport metadata for an auth attempt.
func clientInfo(request *http.Request) ClientInfo {
	return ClientInfo{
		DeviceID:  request.Header.Get(constants.HeaderXDeviceID),
		IPAddress: middleware.RealIP(request),
		UserAgent: request.UserAgent(),
	}
}

// bearerToken extracts the raw access token from the Authorization header.
func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// sessionPayload shapes an established session for the wire.
func sessionPayload(session *AuthSession) map[string]any {
	return map[string]any{
		FieldUser:         session.User,
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		FieldTokenType:    "Bearer",
		FieldExpiresIn:    int64(AccessTokenTTL / time.Second),
	}
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, checks for identity conflicts, persists a new
user profile, and issues the first session.

Request:
  - Body: registerRequest (Email, Password, DisplayName)

Response:
  - 201: Session: Created user plus token pair
  - 400: ErrInvalidJSON: Bad input or weak password
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password).
		Required(FieldDisplayName, input.DisplayName).
		MaxLen(FieldDisplayName, input.DisplayName, 100)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
		Client:      clientInfo(request),
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, sessionPayload(session))
}

/*
Login authenticates a user and establishes a session or opens an MFA challenge.

POST /api/v1/auth/login

Description: Verifies credentials. Accounts with MFA enabled receive a
temporary token instead of a session; no access/refresh pair leaves the
server until the code is verified.

Request:
  - Body: loginRequest (Email, Password); optional X-Device-ID header

Response:
  - 200: Session or `{requires_mfa, temp_token}`
  - 401: ErrUnauthorized: Invalid credentials
  - 429: RateLimited: Account temporarily locked
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
		Client:   clientInfo(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.RequiresMFA {
		respond.OK(writer, map[string]any{
			FieldRequiresMFA: true,
			FieldTempToken:   result.TempToken,
		})
		return
	}

	respond.OK(writer, sessionPayload(result.Session))
}

/*
VerifyMFA completes a pending MFA challenge.

POST /api/v1/auth/mfa/verify

Request:
  - Body: verifyMFARequest (TempToken, Code)

Response:
  - 200: Session: Established session
  - 401: ErrUnauthorized: Invalid temp token or code
*/
func (handler *Handler) verifyMFA(writer http.ResponseWriter, request *http.Request) {
	var input verifyMFARequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTempToken, input.TempToken)
	validator.Required(FieldCode, input.Code)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.VerifyMFA(request.Context(), VerifyMFAInput{
		TempToken: input.TempToken,
		Code:      input.Code,
		Client:    clientInfo(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionPayload(session))
}

/*
Refresh rotates a refresh token into a fresh credential pair.

POST /api/v1/auth/refresh

Description: Single-use rotation — the presented refresh token is invalid
the moment this request succeeds.

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 200: Session: New token pair
  - 401: ErrUnauthorized: Unknown, expired, or replayed token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token"))
		return
	}

	session, err := handler.authService.RefreshSession(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionPayload(session))
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Description: Revokes the session bound to the presented access token.
Idempotent — logging out twice succeeds.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if token := bearerToken(request); token != "" {
		if err := handler.authService.Logout(request.Context(), token); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	respond.NoContent(writer)
}

/*
LogoutAll terminates every session for the authenticated user.

POST /api/v1/auth/logout-all

Response:
  - 204: No Content: All sessions terminated
*/
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.LogoutAll(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
VerifyEmail confirms a user's email ownership.

POST /api/v1/auth/verify-email

Request:
  - Body: verifyEmailRequest (Token)

Response:
  - 200: Success: Email verified
  - 404: ErrNotFound: Unknown or expired token
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input verifyEmailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	if err := handler.authService.VerifyEmail(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Email verified successfully",
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Responds with the same generic message whether or not the email
exists, to prevent account enumeration.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Generic confirmation
  - 400: ErrInvalidJSON: Invalid email format
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Description: Validates the reset token, updates the password, and revokes
every session for the account.

Request:
  - Body: resetPasswordRequest (Token, Password)

Response:
  - 200: Success: Password updated
  - 400: ErrValidation: Bad token or weak password
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/auth/change-password

Description: Verifies the current password before applying the new one.
Existing sessions stay alive.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 401: ErrUnauthorized: Wrong current password
  - 400: ErrValidation: Weak password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		Password(FieldNewPassword, input.NewPassword)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		userID,
		input.CurrentPassword,
		input.NewPassword,
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

// # MFA Endpoints

/*
SetupMFA stages TOTP enrollment for the authenticated user.

POST /api/v1/auth/mfa/setup

Description: First half of the two-phase enrollment. MFA is not enabled
until /mfa/enable confirms a code against the staged secret.

Response:
  - 200: MFASetup: Secret, provisioning URI, QR payload
  - 409: ErrConflict: MFA already enabled
*/
func (handler *Handler) setupMFA(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setup, err := handler.authService.SetupMFA(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, setup)
}

/*
EnableMFA commits TOTP enrollment.

POST /api/v1/auth/mfa/enable

Request:
  - Body: enableMFARequest (Code)

Response:
  - 200: Backup codes (plaintext, shown once)
  - 401: ErrUnauthorized: Invalid code
  - 400: ErrValidation: Setup not started
*/
func (handler *Handler) enableMFA(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input enableMFARequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Code == "" {
		respond.Error(writer, request, validate.RequiredError(FieldCode, "is required"))
		return
	}

	codes, err := handler.authService.EnableMFA(request.Context(), userID, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldBackupCodes: codes,
		FieldMessage:     "Store these codes safely. They will not be shown again.",
	})
}

/*
DisableMFA turns off multi-factor authentication.

POST /api/v1/auth/mfa/disable

Description: Requires the current password and a valid code, so a bare
stolen access token cannot strip the second factor.

Request:
  - Body: disableMFARequest (Password, Code)

Response:
  - 200: Success: MFA disabled
  - 401: ErrUnauthorized: Invalid password or code
*/
func (handler *Handler) disableMFA(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input disableMFARequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldPassword, input.Password).
		Required(FieldCode, input.Code)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.DisableMFA(request.Context(), userID, input.Password, input.Code); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "MFA disabled",
	})
}
