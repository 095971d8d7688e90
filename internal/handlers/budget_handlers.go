package handlers

import (
	"net/http"

	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/service"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// BudgetHandler handles budget endpoints.
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
	}
}

// List handles GET /api/v1/budget.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	list, err := h.budgetService.List(r.Context(), user, r.URL.Query())
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Paginated(w, http.StatusOK, list.Budgets, list.Page, list.Limit, len(list.Budgets), list.Total)
}

// Create handles POST /api/v1/budget.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	var input models.BudgetCreate
	if err := utils.DecodeAndValidate(r, &input); err != nil {
		handleError(w, err)
		return
	}

	budget, err := h.budgetService.Create(r.Context(), user, &input)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, budget)
}

// Get handles GET /api/v1/budget/{id}.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	budget, err := h.budgetService.Get(r.Context(), user, id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, budget)
}

// Update handles PATCH /api/v1/budget/{id}.
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	var input models.BudgetCreate
	if err := utils.DecodeAndValidate(r, &input); err != nil {
		handleError(w, err)
		return
	}

	budget, err := h.budgetService.Update(r.Context(), user, id, &input)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, budget)
}

// Delete handles DELETE /api/v1/budget/{id}.
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.budgetService.Delete(r.Context(), user, id); err != nil {
		handleError(w, err)
		return
	}

	utils.NoContent(w)
}
