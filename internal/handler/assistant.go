package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/boston-kebab/kiosk/internal/assistant"
	"github.com/boston-kebab/kiosk/internal/bridge"
	"github.com/boston-kebab/kiosk/internal/session"
)

// Asker answers one guest message. Satisfied by *assistant.Assistant;
// narrow interface for testability.
type Asker interface {
	Ask(ctx context.Context, sess *session.Session, message string) (string, error)
}

// AssistantHandler exposes the text chat and the raw action bridge.
type AssistantHandler struct {
	asker    Asker
	validate *validator.Validate
	log      zerolog.Logger
}

// NewAssistantHandler creates an AssistantHandler. asker may be nil when no
// model is configured; chat then answers 503 while actions keep working.
func NewAssistantHandler(asker Asker, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		asker:    asker,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes mounts the assistant endpoints inside the table subrouter.
func (h *AssistantHandler) RegisterRoutes(r chi.Router) {
	r.Post("/assistant/messages", h.Message)
	r.Post("/assistant/actions", h.Action)
}

type messageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type messageResponse struct {
	Reply string `json:"reply"`
}

type actionRequest struct {
	Name string         `json:"name" validate:"required"`
	Args map[string]any `json:"args"`
}

type actionResponse struct {
	Result string        `json:"result"`
	State  session.State `json:"state"`
}

// Message sends one guest message through the model and returns its reply.
func (h *AssistantHandler) Message(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if h.asker == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.asker.Ask(r.Context(), sess, req.Message)
	if err != nil {
		if errors.Is(err, assistant.ErrBusy) {
			writeError(w, http.StatusConflict, "still answering the previous question")
			return
		}
		h.log.Error().Err(err).Str("table_id", sess.TableID).Msg("assistant request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Reply: reply})
}

// Action invokes one bridge operation directly, bypassing the model. The
// kiosk frontend uses this for assistant-suggested quick actions.
func (h *AssistantHandler) Action(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	result, err := bridge.Dispatch(sess, bridge.Invocation{Name: req.Name, Args: req.Args})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{
		Result: result,
		State:  sess.Snapshot(),
	})
}
