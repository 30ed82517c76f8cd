package ws

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/boston-kebab/kiosk/internal/bridge"
	"github.com/boston-kebab/kiosk/internal/session"
)

// Sink is where the stream writes model output for the kiosk client: raw
// audio as binary frames, everything else as JSON frames.
type Sink interface {
	WriteBinary(data []byte) error
	WriteJSON(v any) error
}

// Frame is the JSON shape sent to the kiosk client.
type Frame struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Message string         `json:"message,omitempty"`
	State   *session.State `json:"state,omitempty"`
}

// Stream ties one table's session to one upstream connection. A single
// goroutine consumes upstream events, so tool calls, transcripts, and
// interruptions are handled strictly in arrival order.
type Stream struct {
	sess     *session.Session
	upstream Upstream
	sink     Sink
	log      zerolog.Logger
}

// NewStream wires an upstream to a sink for the table behind sess.
func NewStream(sess *session.Session, upstream Upstream, sink Sink, log zerolog.Logger) *Stream {
	return &Stream{
		sess:     sess,
		upstream: upstream,
		sink:     sink,
		log:      log.With().Str("component", "voice").Str("table_id", sess.TableID).Logger(),
	}
}

// ForwardAudio pushes one chunk of guest audio to the model. Called from
// the connection's read loop.
func (s *Stream) ForwardAudio(ctx context.Context, chunk []byte) error {
	return s.upstream.Send(ctx, chunk)
}

// Run consumes upstream events until the upstream closes, the context is
// canceled, or the sink fails. The assistant transcript accumulates across
// partials and is finalized on turn_complete; a barge-in discards whatever
// was accumulated, because the guest never heard the rest of it.
func (s *Stream) Run(ctx context.Context) error {
	defer s.upstream.Close()

	var transcript strings.Builder

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-s.upstream.Events():
			if !ok {
				return nil
			}

			switch ev.Type {
			case EventAudio:
				if err := s.sink.WriteBinary(ev.Audio); err != nil {
					return err
				}

			case EventPartialTranscript:
				transcript.WriteString(ev.Text)
				if err := s.sink.WriteJSON(Frame{Type: EventPartialTranscript, Text: ev.Text}); err != nil {
					return err
				}

			case EventToolCall:
				if err := s.handleToolCall(ctx, ev.Call); err != nil {
					return err
				}

			case EventInterrupted:
				transcript.Reset()
				if err := s.sink.WriteJSON(Frame{Type: EventInterrupted}); err != nil {
					return err
				}

			case EventTurnComplete:
				final := transcript.String()
				transcript.Reset()
				if err := s.sink.WriteJSON(Frame{Type: EventTurnComplete, Text: final}); err != nil {
					return err
				}

			case EventError:
				s.log.Error().Err(ev.Err).Msg("upstream error")
				_ = s.sink.WriteJSON(Frame{Type: EventError, Message: "The voice assistant hit a snag. Give it another try."})
				return ev.Err

			case EventClosed:
				return nil
			}
		}
	}
}

// handleToolCall executes the model's call through the action bridge,
// replies to the model, and pushes the updated kiosk state to the client so
// the screen reflects what the voice just did.
func (s *Stream) handleToolCall(ctx context.Context, call *ToolCall) error {
	if call == nil {
		return nil
	}

	result := s.dispatch(*call)
	if err := s.upstream.RespondTool(ctx, call.ID, call.Name, result); err != nil {
		return err
	}

	state := s.sess.Snapshot()
	return s.sink.WriteJSON(Frame{Type: "state", State: &state})
}

func (s *Stream) dispatch(call ToolCall) string {
	args, err := bridge.DecodeArgs(call.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", call.Name).Msg("undecodable tool arguments")
		return "The arguments could not be parsed. Send a JSON object."
	}

	result, err := bridge.Dispatch(s.sess, bridge.Invocation{Name: call.Name, Args: args})
	if err != nil {
		s.log.Warn().Err(err).Str("tool", call.Name).Msg("tool call rejected")
		return "That call was invalid: " + err.Error()
	}

	s.log.Info().Str("tool", call.Name).Msg("executed tool call")
	return result
}
