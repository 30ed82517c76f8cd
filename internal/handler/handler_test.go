package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/boston-kebab/kiosk/internal/handler"
	"github.com/boston-kebab/kiosk/internal/menu"
	"github.com/boston-kebab/kiosk/internal/middleware"
	"github.com/boston-kebab/kiosk/internal/session"
)

// --- Shared fixtures ---

type fixture struct {
	router   *chi.Mux
	sessions *session.Manager
	resetter *fakeResetter
}

type fakeResetter struct {
	resets []string
}

func (f *fakeResetter) Reset(tableID string) { f.resets = append(f.resets, tableID) }

// newFixture mounts the full table route group over a fresh catalog, the
// way the router package does in production.
func newFixture(t *testing.T, asker handler.Asker) *fixture {
	t.Helper()
	catalog, err := menu.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	sessions := session.NewManager(catalog)
	resetter := &fakeResetter{}

	r := chi.NewRouter()
	r.Route("/tables/{tid}", func(r chi.Router) {
		r.Use(middleware.TableSession(sessions))
		handler.NewStateHandler(resetter, zerolog.Nop()).RegisterRoutes(r)
		handler.NewMenuHandler().RegisterRoutes(r)
		handler.NewDraftHandler().RegisterRoutes(r)
		handler.NewCartHandler(zerolog.Nop()).RegisterRoutes(r)
		handler.NewStaffHandler(zerolog.Nop()).RegisterRoutes(r)
		handler.NewAssistantHandler(asker, zerolog.Nop()).RegisterRoutes(r)
	})

	return &fixture{router: r, sessions: sessions, resetter: resetter}
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) session.State {
	t.Helper()
	var state session.State
	if err := json.NewDecoder(rr.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

// addLambShish drives the HTTP flow to put a configured plate in the cart.
func addLambShish(t *testing.T, f *fixture, table string, quantity int) session.State {
	t.Helper()
	if rr := doRequest(t, f.router, "POST", "/tables/"+table+"/draft", map[string]string{"item_id": "lamb-shish-plate"}); rr.Code != http.StatusOK {
		t.Fatalf("open draft: %d %s", rr.Code, rr.Body)
	}
	if rr := doRequest(t, f.router, "POST", "/tables/"+table+"/draft/choices", map[string]string{"group_id": "base", "choice_id": "rice"}); rr.Code != http.StatusOK {
		t.Fatalf("toggle choice: %d %s", rr.Code, rr.Body)
	}
	if rr := doRequest(t, f.router, "PUT", "/tables/"+table+"/draft/quantity", map[string]int{"quantity": quantity}); rr.Code != http.StatusOK {
		t.Fatalf("set quantity: %d %s", rr.Code, rr.Body)
	}
	rr := doRequest(t, f.router, "POST", "/tables/"+table+"/draft/commit", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("commit: %d %s", rr.Code, rr.Body)
	}
	return decodeState(t, rr)
}

// --- Fake asker ---

type fakeAsker struct {
	reply string
	err   error
	asked []string
}

func (f *fakeAsker) Ask(_ context.Context, _ *session.Session, message string) (string, error) {
	f.asked = append(f.asked, message)
	return f.reply, f.err
}
