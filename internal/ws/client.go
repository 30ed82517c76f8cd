package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/boston-kebab/kiosk/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Audio chunks from the kiosk microphone; 64 KiB covers the largest
	// frame the client encoder emits.
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Kiosks are on the restaurant LAN; the table id in the path is
		// the only identity a connection carries.
		return true
	},
}

// conn is one kiosk's voice connection. Writes to the WebSocket come from
// both the stream loop and the ping ticker, serialized by writeMu.
type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	cancel  context.CancelFunc
}

// WriteBinary sends one audio frame to the kiosk.
func (c *conn) WriteBinary(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

// WriteJSON sends one control frame to the kiosk.
func (c *conn) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

// ServeVoice upgrades GET /ws/tables/{tid}/voice and runs the voice
// session until either side hangs up. Without a configured dialer the
// endpoint answers 503 so the kiosk can hide the microphone button; a
// table with a live stream gets 409 instead of a second one.
func ServeVoice(hub *Hub, dial Dialer, sessions *session.Manager, log zerolog.Logger, w http.ResponseWriter, r *http.Request) {
	if dial == nil {
		http.Error(w, "voice is not configured", http.StatusServiceUnavailable)
		return
	}
	tableID := chi.URLParam(r, "tid")
	if tableID == "" {
		http.Error(w, "missing table id", http.StatusBadRequest)
		return
	}
	sess := sessions.GetOrCreate(tableID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	c := &conn{cancel: cancel}

	if !hub.attach(tableID, c) {
		http.Error(w, "a voice session is already running for this table", http.StatusConflict)
		return
	}
	defer hub.detach(tableID, c)

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	c.ws = wsConn
	defer wsConn.Close()

	upstream, err := dial(ctx)
	if err != nil {
		log.Error().Err(err).Str("table_id", tableID).Msg("upstream dial failed")
		_ = c.WriteJSON(Frame{Type: EventError, Message: "The voice assistant is unavailable right now."})
		return
	}

	stream := NewStream(sess, upstream, c, log)

	// Stream loop: upstream events out to the kiosk. When it ends first,
	// closing the socket unblocks the read loop below so teardown is
	// symmetric regardless of which side dies.
	streamDone := make(chan error, 1)
	go func() {
		err := stream.Run(ctx)
		streamDone <- err
		cancel()
		wsConn.Close()
	}()

	// Ping ticker keeps the connection's read deadline honest.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.ping(); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// Read loop: guest audio up to the model. Runs on this goroutine so the
	// handler returns when the kiosk hangs up.
	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		msgType, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("table_id", tableID).Msg("voice connection read error")
			}
			break
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		if err := stream.ForwardAudio(ctx, data); err != nil {
			log.Warn().Err(err).Str("table_id", tableID).Msg("audio forward failed")
			break
		}
	}

	cancel()
	if err := <-streamDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("table_id", tableID).Msg("voice stream ended")
	}
}
