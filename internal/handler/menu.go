package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boston-kebab/kiosk/internal/menu"
)

// MenuHandler serves the catalog filtered by the table's active category
// and search query.
type MenuHandler struct{}

// NewMenuHandler creates a MenuHandler.
func NewMenuHandler() *MenuHandler {
	return &MenuHandler{}
}

// RegisterRoutes mounts the menu endpoints inside the table subrouter.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.List)
}

type menuResponse struct {
	Categories []menu.Category `json:"categories"`
	Category   string          `json:"category"`
	Search     string          `json:"search,omitempty"`
	Items      []menu.MenuItem `json:"items"`
}

// List returns the categories and the items visible under the session's
// filters. Optional query parameters update the filters first: ?category=
// selects a tab (clearing any search), ?search= filters by text and
// overrides the category.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if category := q.Get("category"); category != "" {
		if err := sess.SetCategory(category); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	if q.Has("search") {
		sess.SetSearch(q.Get("search"))
	}

	snap := sess.Snapshot()
	writeJSON(w, http.StatusOK, menuResponse{
		Categories: sess.Catalog().Categories(),
		Category:   snap.Category,
		Search:     snap.Search,
		Items:      sess.VisibleItems(),
	})
}
