package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CartHandler mutates committed cart lines and places the order.
type CartHandler struct {
	log zerolog.Logger
}

// NewCartHandler creates a CartHandler.
func NewCartHandler(log zerolog.Logger) *CartHandler {
	return &CartHandler{log: log}
}

// RegisterRoutes mounts the cart endpoints inside the table subrouter.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Patch("/cart/lines/{lid}/quantity", h.UpdateQuantity)
	r.Delete("/cart/lines/{lid}", h.Remove)
	r.Post("/cart/checkout", h.Checkout)
}

type quantityDeltaRequest struct {
	Delta int `json:"delta"`
}

// UpdateQuantity applies a signed delta to a line, flooring at 1. A stale
// line id changes nothing and still answers 200, because the kiosk may
// race its own removals.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req quantityDeltaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	sess.UpdateLineQuantity(chi.URLParam(r, "lid"), req.Delta)
	writeState(w, http.StatusOK, sess)
}

// Remove deletes a cart line. A stale id is a no-op.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	sess.RemoveLine(chi.URLParam(r, "lid"))
	writeState(w, http.StatusOK, sess)
}

// Checkout places the order and moves the table to the success screen.
// The cart stays as placed until the table finishes.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if err := sess.PlaceOrder(); err != nil {
		writeDomainError(w, err)
		return
	}

	totals := sess.CartTotals()
	h.log.Info().
		Str("table_id", sess.TableID).
		Int("item_count", totals.ItemCount).
		Str("subtotal", totals.Subtotal.StringFixed(2)).
		Msg("order placed")
	writeState(w, http.StatusOK, sess)
}
