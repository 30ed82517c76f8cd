// Package middleware carries the HTTP middleware for the kiosk API: table
// session resolution and request logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boston-kebab/kiosk/internal/session"
)

type contextKey int

const sessionKey contextKey = iota

// maxTableIDLen bounds the table id so a garbage path cannot grow the
// session map without limit.
const maxTableIDLen = 64

// TableSession resolves the {tid} path parameter to the table's session,
// creating it on first contact, and stores it on the request context.
func TableSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tableID := chi.URLParam(r, "tid")
			if tableID == "" || len(tableID) > maxTableIDLen {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid table id"})
				return
			}

			sess := sessions.GetOrCreate(tableID)
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session stored by TableSession.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok
}
