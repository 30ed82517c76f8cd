// Package router assembles the HTTP API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/boston-kebab/kiosk/internal/config"
	"github.com/boston-kebab/kiosk/internal/handler"
	mw "github.com/boston-kebab/kiosk/internal/middleware"
	"github.com/boston-kebab/kiosk/internal/session"
	"github.com/boston-kebab/kiosk/internal/ws"
)

// Deps are the collaborators the router wires together. Asker and Resetter
// are nil when no model is configured; VoiceDial is nil when voice is off.
type Deps struct {
	Sessions  *session.Manager
	Asker     handler.Asker
	Resetter  handler.HistoryResetter
	Hub       *ws.Hub
	VoiceDial ws.Dialer
	Log       zerolog.Logger
}

// New creates a chi router with every kiosk route mounted.
func New(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(mw.RequestLogger(deps.Log))
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Voice channel; manages its own lifecycle outside the session group.
	r.Get("/ws/tables/{tid}/voice", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeVoice(deps.Hub, deps.VoiceDial, deps.Sessions, deps.Log, w, r)
	})

	// Table-scoped API.
	r.Route("/tables/{tid}", func(r chi.Router) {
		r.Use(mw.TableSession(deps.Sessions))

		handler.NewStateHandler(deps.Resetter, deps.Log).RegisterRoutes(r)
		handler.NewMenuHandler().RegisterRoutes(r)
		handler.NewDraftHandler().RegisterRoutes(r)
		handler.NewCartHandler(deps.Log).RegisterRoutes(r)
		handler.NewStaffHandler(deps.Log).RegisterRoutes(r)
		handler.NewAssistantHandler(deps.Asker, deps.Log).RegisterRoutes(r)
	})

	return r
}
