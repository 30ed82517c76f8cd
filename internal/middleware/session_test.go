package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/boston-kebab/kiosk/internal/menu"
	"github.com/boston-kebab/kiosk/internal/middleware"
	"github.com/boston-kebab/kiosk/internal/session"
)

func newRouter(t *testing.T) (*chi.Mux, *session.Manager) {
	t.Helper()
	catalog, err := menu.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	sessions := session.NewManager(catalog)

	r := chi.NewRouter()
	r.Route("/tables/{tid}", func(r chi.Router) {
		r.Use(middleware.TableSession(sessions))
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			sess, ok := middleware.SessionFrom(r.Context())
			if !ok {
				http.Error(w, "no session", http.StatusInternalServerError)
				return
			}
			w.Write([]byte(sess.TableID))
		})
	})
	return r, sessions
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
	return rr
}

func TestTableSessionCreatesAndReuses(t *testing.T) {
	router, sessions := newRouter(t)

	rr := get(router, "/tables/t42/ping")
	if rr.Code != http.StatusOK || rr.Body.String() != "t42" {
		t.Fatalf("response = %d %q", rr.Code, rr.Body.String())
	}

	sess, ok := sessions.Get("t42")
	if !ok {
		t.Fatal("session not created")
	}

	// Second request lands on the same session.
	get(router, "/tables/t42/ping")
	again, _ := sessions.Get("t42")
	if again != sess {
		t.Error("second request created a new session")
	}
}

func TestTableSessionRejectsOversizedID(t *testing.T) {
	router, sessions := newRouter(t)

	long := strings.Repeat("x", 65)
	rr := get(router, "/tables/"+long+"/ping")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if _, ok := sessions.Get(long); ok {
		t.Error("session created for a rejected id")
	}
}
