// Package ws carries the live voice channel: one WebSocket per table that
// forwards microphone audio to the speech model upstream and plays back
// audio, transcripts, and state changes the model produces.
package ws

// Upstream event types, in the order a normal turn produces them: audio and
// partial transcripts stream in, tool calls may interleave, and the turn
// ends with turn_complete or interrupted.
const (
	EventAudio             = "audio"
	EventPartialTranscript = "partial_transcript"
	EventToolCall          = "tool_call"
	EventTurnComplete      = "turn_complete"
	EventInterrupted       = "interrupted"
	EventError             = "error"
	EventClosed            = "closed"
)

// ToolCall is a function invocation requested by the speech model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Event is one message from the speech model upstream. Only the fields
// relevant to Type are set.
type Event struct {
	Type  string
	Audio []byte
	Text  string
	Call  *ToolCall
	Err   error
}
