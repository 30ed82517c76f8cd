package ws

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/boston-kebab/kiosk/internal/assistant"
	"github.com/boston-kebab/kiosk/internal/bridge"
	"github.com/boston-kebab/kiosk/internal/menu"
)

const (
	geminiLiveURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// The kiosk microphone captures 16 kHz mono PCM.
	inputMimeType = "audio/pcm;rate=16000"
)

// --- Wire shapes for the bidirectional generate API ---

type geminiPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiFunctionDeclaration struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiSetup struct {
	Model            string `json:"model"`
	GenerationConfig struct {
		ResponseModalities []string `json:"responseModalities"`
	} `json:"generationConfig"`
	SystemInstruction        *geminiContent `json:"systemInstruction,omitempty"`
	Tools                    []geminiTool   `json:"tools,omitempty"`
	OutputAudioTranscription *struct{}      `json:"outputAudioTranscription,omitempty"`
}

type geminiServerMessage struct {
	SetupComplete *struct{} `json:"setupComplete"`
	ServerContent *struct {
		ModelTurn           *geminiContent `json:"modelTurn"`
		TurnComplete        bool           `json:"turnComplete"`
		Interrupted         bool           `json:"interrupted"`
		OutputTranscription *struct {
			Text string `json:"text"`
		} `json:"outputTranscription"`
	} `json:"serverContent"`
	ToolCall *struct {
		FunctionCalls []struct {
			ID   string          `json:"id"`
			Name string          `json:"name"`
			Args json.RawMessage `json:"args"`
		} `json:"functionCalls"`
	} `json:"toolCall"`
}

// geminiUpstream adapts one live API connection to the Upstream interface.
// The reader goroutine owns the events channel and closes it on exit; done
// lets it bail out of a pending delivery once Close runs, so a consumer
// that stops receiving never strands the reader.
type geminiUpstream struct {
	conn      *websocket.Conn
	events    chan Event
	done      chan struct{}
	writeMu   sync.Mutex
	closeOnce sync.Once
	log       zerolog.Logger
}

func newGeminiUpstream(conn *websocket.Conn, log zerolog.Logger) *geminiUpstream {
	u := &geminiUpstream{
		conn:   conn,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
		log:    log.With().Str("component", "gemini-live").Logger(),
	}
	go u.readLoop()
	return u
}

// NewGeminiDialer returns a Dialer for the Gemini live API. The system
// instruction and tool catalog are rebuilt on every dial so a fresh voice
// session always sees current availability.
func NewGeminiDialer(apiKey, model string, catalog *menu.Catalog, log zerolog.Logger) Dialer {
	return func(ctx context.Context) (Upstream, error) {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, geminiLiveURL+"?key="+apiKey, nil)
		if err != nil {
			return nil, fmt.Errorf("dial live api: %w", err)
		}

		setup := geminiSetup{Model: "models/" + model}
		setup.GenerationConfig.ResponseModalities = []string{"AUDIO"}
		setup.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: assistant.SystemPrompt(catalog)}},
		}
		setup.Tools = []geminiTool{liveToolCatalog()}
		setup.OutputAudioTranscription = &struct{}{}

		if err := conn.WriteJSON(map[string]any{"setup": setup}); err != nil {
			conn.Close()
			return nil, fmt.Errorf("send setup: %w", err)
		}

		return newGeminiUpstream(conn, log), nil
	}
}

// liveToolCatalog converts the bridge tools into function declarations for
// the live API.
func liveToolCatalog() geminiTool {
	var decls []geminiFunctionDeclaration
	for _, tool := range bridge.Tools() {
		if tool.Function == nil {
			continue
		}
		decls = append(decls, geminiFunctionDeclaration{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Parameters:  tool.Function.Parameters,
		})
	}
	return geminiTool{FunctionDeclarations: decls}
}

func (u *geminiUpstream) Send(ctx context.Context, audio []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := map[string]any{
		"realtimeInput": map[string]any{
			"audio": map[string]any{
				"mimeType": inputMimeType,
				"data":     base64.StdEncoding.EncodeToString(audio),
			},
		},
	}
	return u.writeJSON(msg)
}

func (u *geminiUpstream) Events() <-chan Event { return u.events }

func (u *geminiUpstream) RespondTool(ctx context.Context, callID, name, result string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := map[string]any{
		"toolResponse": map[string]any{
			"functionResponses": []map[string]any{{
				"id":       callID,
				"name":     name,
				"response": map[string]any{"output": result},
			}},
		},
	}
	return u.writeJSON(msg)
}

func (u *geminiUpstream) Close() error {
	var err error
	u.closeOnce.Do(func() {
		close(u.done)
		err = u.conn.Close()
	})
	return err
}

// deliver hands one event to the consumer. It reports false once Close has
// run, which tells the reader to stop instead of blocking on a channel
// nobody drains anymore.
func (u *geminiUpstream) deliver(ev Event) bool {
	select {
	case u.events <- ev:
		return true
	case <-u.done:
		return false
	}
}

func (u *geminiUpstream) writeJSON(v any) error {
	u.writeMu.Lock()
	defer u.writeMu.Unlock()
	return u.conn.WriteJSON(v)
}

// readLoop translates live API messages into Events until the connection
// drops. Closing the events channel is the teardown signal for the stream.
func (u *geminiUpstream) readLoop() {
	defer close(u.events)

	for {
		_, data, err := u.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				u.log.Warn().Err(err).Msg("live api read error")
				u.deliver(Event{Type: EventError, Err: err})
			}
			return
		}

		var msg geminiServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			u.log.Warn().Err(err).Msg("undecodable live api message")
			continue
		}

		switch {
		case msg.SetupComplete != nil:
			u.log.Debug().Msg("live session established")

		case msg.ToolCall != nil:
			for _, call := range msg.ToolCall.FunctionCalls {
				ev := Event{Type: EventToolCall, Call: &ToolCall{
					ID:        call.ID,
					Name:      call.Name,
					Arguments: string(call.Args),
				}}
				if !u.deliver(ev) {
					return
				}
			}

		case msg.ServerContent != nil:
			sc := msg.ServerContent
			if sc.Interrupted {
				if !u.deliver(Event{Type: EventInterrupted}) {
					return
				}
				continue
			}
			if sc.ModelTurn != nil {
				for _, part := range sc.ModelTurn.Parts {
					if part.InlineData == nil {
						continue
					}
					audio, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
					if err != nil {
						u.log.Warn().Err(err).Msg("undecodable audio chunk")
						continue
					}
					if !u.deliver(Event{Type: EventAudio, Audio: audio}) {
						return
					}
				}
			}
			if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
				if !u.deliver(Event{Type: EventPartialTranscript, Text: sc.OutputTranscription.Text}) {
					return
				}
			}
			if sc.TurnComplete {
				if !u.deliver(Event{Type: EventTurnComplete}) {
					return
				}
			}
		}
	}
}
