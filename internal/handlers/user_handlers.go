package handlers

import (
	"net/http"

	"github.com/acgeoffrey/budget-tracker-api/internal/auth"
	"github.com/acgeoffrey/budget-tracker-api/internal/constants"
	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/service"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// authUser pulls the authenticated user from the request context, writing
// an unauthorized response if the middleware did not run.
func authUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := auth.GetUser(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return nil, false
	}
	return user, true
}

// UserHandler handles user profile and settings endpoints.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetMe handles GET /api/v1/user/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), user.ID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, profile)
}

// UpdateMe handles PATCH /api/v1/user/updateMe.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	var input models.UserUpdate
	if err := utils.DecodeAndValidate(r, &input); err != nil {
		handleError(w, err)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), user.ID, &input)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, profile)
}

// DeleteMe handles DELETE /api/v1/user/deleteMe.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteAccount(r.Context(), user.ID); err != nil {
		handleError(w, err)
		return
	}

	utils.NoContent(w)
}

// ListUsers handles GET /api/v1/user/all. Restricted to admins by the
// authorization middleware.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, users)
}

// GetSettings handles GET /api/v1/user/settings.
func (h *UserHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	settings, err := h.userService.GetSettings(r.Context(), user.ID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PATCH /api/v1/user/settings.
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	var input models.SettingsUpdate
	if err := utils.DecodeAndValidate(r, &input); err != nil {
		handleError(w, err)
		return
	}

	settings, err := h.userService.UpdateSettings(r.Context(), user.ID, &input)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, settings)
}
