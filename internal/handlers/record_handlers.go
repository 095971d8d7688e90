package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/service"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// parseIDParam extracts a positive integer ID from the URL path.
func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, utils.NewValidationError(name, "Invalid ID")
	}
	return id, nil
}

// parseDateParam parses a query date, accepting a plain date or RFC 3339.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, utils.NewValidationError(name, "Missing required date parameter")
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Time{}, utils.NewValidationError(name, "Invalid date; use YYYY-MM-DD or RFC 3339")
}

// RecordHandler handles income and expense record endpoints.
type RecordHandler struct {
	recordService *service.RecordService
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(recordService *service.RecordService) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
	}
}

// List handles GET /api/v1/records. Filtering, sorting, projection,
// pagination and search all come from query parameters.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	list, err := h.recordService.List(r.Context(), user, r.URL.Query())
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Paginated(w, http.StatusOK, list.Records, list.Page, list.Limit, len(list.Records), list.Total)
}

// Create handles POST /api/v1/records.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	var input models.RecordCreate
	if err := utils.DecodeAndValidate(r, &input); err != nil {
		handleError(w, err)
		return
	}

	record, err := h.recordService.Create(r.Context(), user, &input)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, record)
}

// Get handles GET /api/v1/records/{id}.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	record, err := h.recordService.Get(r.Context(), user, id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/v1/records/{id}.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.recordService.Delete(r.Context(), user, id); err != nil {
		handleError(w, err)
		return
	}

	utils.NoContent(w)
}

// Stats handles GET /api/v1/records/stats. Requires record_type,
// start_date and end_date query parameters.
func (h *RecordHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}

	recordType := r.URL.Query().Get("record_type")

	start, err := parseDateParam(r, "start_date")
	if err != nil {
		handleError(w, err)
		return
	}

	end, err := parseDateParam(r, "end_date")
	if err != nil {
		handleError(w, err)
		return
	}

	stats, err := h.recordService.Stats(r.Context(), user, recordType, start, end)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, stats)
}
