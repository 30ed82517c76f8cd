package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// DraftHandler drives the item configuration flow: open, select choices,
// set quantity and notes, then commit into the cart or discard.
type DraftHandler struct {
	validate *validator.Validate
}

// NewDraftHandler creates a DraftHandler.
func NewDraftHandler() *DraftHandler {
	return &DraftHandler{validate: validator.New()}
}

// RegisterRoutes mounts the draft endpoints inside the table subrouter.
func (h *DraftHandler) RegisterRoutes(r chi.Router) {
	r.Post("/draft", h.Open)
	r.Post("/draft/choices", h.ToggleChoice)
	r.Put("/draft/quantity", h.SetQuantity)
	r.Put("/draft/notes", h.SetNotes)
	r.Post("/draft/commit", h.Commit)
	r.Delete("/draft", h.Cancel)
}

type openDraftRequest struct {
	ItemID string `json:"item_id"`
	LineID string `json:"line_id"`
}

type toggleChoiceRequest struct {
	GroupID  string `json:"group_id" validate:"required"`
	ChoiceID string `json:"choice_id" validate:"required"`
}

type draftQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type draftNotesRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

// Open starts a draft, either fresh from a menu item or seeded from an
// existing cart line for editing.
func (h *DraftHandler) Open(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req openDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	switch {
	case req.ItemID != "" && req.LineID != "":
		writeError(w, http.StatusBadRequest, "pass item_id or line_id, not both")
		return
	case req.ItemID != "":
		err = sess.OpenItem(req.ItemID)
	case req.LineID != "":
		err = sess.OpenLineForEdit(req.LineID)
	default:
		writeError(w, http.StatusBadRequest, "item_id or line_id is required")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeState(w, http.StatusOK, sess)
}

// ToggleChoice applies one selection to the active draft.
func (h *DraftHandler) ToggleChoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req toggleChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "group_id and choice_id are required")
		return
	}

	if err := sess.ToggleChoice(req.GroupID, req.ChoiceID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeState(w, http.StatusOK, sess)
}

// SetQuantity sets the draft quantity to an absolute value.
func (h *DraftHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req draftQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	if err := sess.SetDraftQuantity(req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	writeState(w, http.StatusOK, sess)
}

// SetNotes stores the guest's free-text notes on the draft.
func (h *DraftHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req draftNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "notes are limited to 500 characters")
		return
	}

	if err := sess.SetDraftNotes(req.Notes); err != nil {
		writeDomainError(w, err)
		return
	}
	writeState(w, http.StatusOK, sess)
}

// Commit turns the draft into a cart line, or replaces the line it was
// opened from.
func (h *DraftHandler) Commit(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if _, err := sess.CommitDraft(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeState(w, http.StatusOK, sess)
}

// Cancel discards the draft. Always succeeds, even without one open.
func (h *DraftHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	sess.CancelDraft()
	writeState(w, http.StatusOK, sess)
}
