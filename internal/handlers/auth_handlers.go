// Package handlers contains the HTTP layer: request decoding, calling
// into services and writing uniform JSON responses. Handlers stay thin;
// the business rules live in the service package.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/service"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// handleError maps any error to the uniform JSON error envelope.
func handleError(w http.ResponseWriter, err error) {
	utils.ErrorFromAppError(w, utils.ParseError(err))
}

// AuthHandler handles authentication and credential endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup handles POST /api/v1/user/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var reg models.UserRegistration
	if err := utils.DecodeAndValidate(r, &reg); err != nil {
		handleError(w, err)
		return
	}

	resp, err := h.authService.Signup(r.Context(), &reg)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/v1/user/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.UserCredentials
	if err := utils.DecodeAndValidate(r, &creds); err != nil {
		handleError(w, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &creds)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// ForgotPassword handles POST /api/v1/user/forgotPassword. An unknown
// email is reported as not found.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		handleError(w, err)
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": "Token sent to email",
	})
}

// ResetPassword handles PATCH /api/v1/user/resetPassword/{token}. The raw
// token travels as a path segment, never in the body.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		handleError(w, utils.NewInvalidResetTokenError())
		return
	}

	var req models.ResetPasswordRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		handleError(w, err)
		return
	}

	resp, err := h.authService.ResetPassword(r.Context(), token, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// UpdatePassword handles PATCH /api/v1/user/updateMyPassword for an
// authenticated user. The response carries a fresh session token; the one
// used for this request is stale from now on.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		handleError(w, err)
		return
	}

	resp, err := h.authService.ChangePassword(r.Context(), user.ID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}
