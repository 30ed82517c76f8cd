// Package handler implements the kiosk HTTP API. Every handler operates on
// the table session placed on the request context by the middleware; a
// mutation responds with the full session state so the kiosk can render
// without a follow-up fetch.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boston-kebab/kiosk/internal/menu"
	"github.com/boston-kebab/kiosk/internal/middleware"
	"github.com/boston-kebab/kiosk/internal/order"
	"github.com/boston-kebab/kiosk/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// sessionFrom pulls the table session injected by the middleware. Missing
// means the route was mounted outside the /tables/{tid} group.
func sessionFrom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "no table session")
	}
	return sess, ok
}

// writeDomainError maps domain errors onto HTTP statuses: missing things
// are 404, state conflicts are 409, an incomplete draft is 422, and
// anything unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, menu.ErrItemNotFound),
		errors.Is(err, menu.ErrCategoryNotFound),
		errors.Is(err, order.ErrLineNotFound),
		errors.Is(err, order.ErrGroupNotFound),
		errors.Is(err, order.ErrChoiceNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, order.ErrItemUnavailable),
		errors.Is(err, order.ErrGroupFull),
		errors.Is(err, session.ErrStaffModeActive),
		errors.Is(err, session.ErrNotStaffMode),
		errors.Is(err, session.ErrNoActiveDraft),
		errors.Is(err, session.ErrBadTransition),
		errors.Is(err, session.ErrEmptyCart):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, order.ErrMissingRequired):
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, session.ErrUnknownScreen),
		errors.Is(err, session.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeState responds with the session snapshot, the standard reply to any
// state-changing call.
func writeState(w http.ResponseWriter, status int, sess *session.Session) {
	writeJSON(w, status, sess.Snapshot())
}
