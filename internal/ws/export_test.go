package ws

import (
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// NewGeminiUpstream exposes the live-API adapter to the external test
// package so its teardown can be exercised against a local server.
func NewGeminiUpstream(conn *websocket.Conn, log zerolog.Logger) Upstream {
	return newGeminiUpstream(conn, log)
}
