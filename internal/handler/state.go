package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// HistoryResetter clears any assistant conversation for a table. Satisfied
// by *assistant.Assistant; nil when no assistant is configured.
type HistoryResetter interface {
	Reset(tableID string)
}

// StateHandler serves the session read model and the screen flow.
type StateHandler struct {
	resetter HistoryResetter
	validate *validator.Validate
	log      zerolog.Logger
}

// NewStateHandler creates a StateHandler. resetter may be nil.
func NewStateHandler(resetter HistoryResetter, log zerolog.Logger) *StateHandler {
	return &StateHandler{
		resetter: resetter,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes mounts the state endpoints inside the table subrouter.
func (h *StateHandler) RegisterRoutes(r chi.Router) {
	r.Get("/state", h.Get)
	r.Post("/screen", h.Navigate)
	r.Post("/finish", h.Finish)
}

type navigateRequest struct {
	Screen string `json:"screen" validate:"required"`
}

// Get returns the full session snapshot.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	writeState(w, http.StatusOK, sess)
}

// Navigate moves the UI along a legal screen transition.
func (h *StateHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "screen is required")
		return
	}

	if err := sess.Navigate(req.Screen); err != nil {
		writeDomainError(w, err)
		return
	}
	writeState(w, http.StatusOK, sess)
}

// Finish ends the table's meal: the cart empties, the screen returns to
// welcome, and any assistant conversation is forgotten.
func (h *StateHandler) Finish(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	sess.Finish()
	if h.resetter != nil {
		h.resetter.Reset(sess.TableID)
	}
	h.log.Info().Str("table_id", sess.TableID).Msg("table finished")
	writeState(w, http.StatusOK, sess)
}
