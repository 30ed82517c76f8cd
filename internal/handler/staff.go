package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// StaffHandler covers the management surface: the staff-mode switch and
// availability toggling.
type StaffHandler struct {
	log zerolog.Logger
}

// NewStaffHandler creates a StaffHandler.
func NewStaffHandler(log zerolog.Logger) *StaffHandler {
	return &StaffHandler{log: log}
}

// RegisterRoutes mounts the staff endpoints inside the table subrouter.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Post("/staff-mode", h.SetStaffMode)
	r.Post("/menu/{id}/availability", h.ToggleAvailability)
}

type staffModeRequest struct {
	Enabled bool `json:"enabled"`
}

// SetStaffMode flips the table into or out of management mode.
func (h *StaffHandler) SetStaffMode(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req staffModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess.SetStaffMode(req.Enabled)
	h.log.Info().Str("table_id", sess.TableID).Bool("enabled", req.Enabled).Msg("staff mode")
	writeState(w, http.StatusOK, sess)
}

// ToggleAvailability flips an item's availability on the shared catalog.
// Requires staff mode; the change is visible to every table at once.
func (h *StaffHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	itemID := chi.URLParam(r, "id")
	available, err := sess.ToggleItemAvailability(itemID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.log.Info().Str("item_id", itemID).Bool("available", available).Msg("availability toggled")
	writeJSON(w, http.StatusOK, map[string]any{"item_id": itemID, "available": available})
}
