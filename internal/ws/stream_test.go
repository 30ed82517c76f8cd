package ws_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/boston-kebab/kiosk/internal/enum"
	"github.com/boston-kebab/kiosk/internal/menu"
	"github.com/boston-kebab/kiosk/internal/session"
	"github.com/boston-kebab/kiosk/internal/ws"
)

type toolReply struct {
	callID  string
	name    string
	content string
}

// fakeUpstream plays a pre-loaded event sequence and records what the
// stream sends back.
type fakeUpstream struct {
	events  chan ws.Event
	sent    [][]byte
	replies []toolReply
	closed  bool
}

func newFakeUpstream(events ...ws.Event) *fakeUpstream {
	ch := make(chan ws.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return &fakeUpstream{events: ch}
}

func (f *fakeUpstream) Send(_ context.Context, audio []byte) error {
	f.sent = append(f.sent, audio)
	return nil
}

func (f *fakeUpstream) Events() <-chan ws.Event { return f.events }

func (f *fakeUpstream) RespondTool(_ context.Context, callID, name, result string) error {
	f.replies = append(f.replies, toolReply{callID: callID, name: name, content: result})
	return nil
}

func (f *fakeUpstream) Close() error {
	f.closed = true
	return nil
}

// fakeSink records everything the stream writes for the kiosk.
type fakeSink struct {
	binary [][]byte
	frames []ws.Frame
}

func (f *fakeSink) WriteBinary(data []byte) error {
	f.binary = append(f.binary, data)
	return nil
}

func (f *fakeSink) WriteJSON(v any) error {
	f.frames = append(f.frames, v.(ws.Frame))
	return nil
}

func newVoiceSession(t *testing.T) *session.Session {
	t.Helper()
	catalog, err := menu.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	return session.New("table-9", catalog)
}

func runStream(t *testing.T, sess *session.Session, upstream *fakeUpstream) (*fakeSink, error) {
	t.Helper()
	sink := &fakeSink{}
	stream := ws.NewStream(sess, upstream, sink, zerolog.Nop())
	err := stream.Run(context.Background())
	if !upstream.closed {
		t.Error("upstream not closed when the stream ended")
	}
	return sink, err
}

func TestStreamForwardsAudioToSink(t *testing.T) {
	chunk := []byte{0x01, 0x02, 0x03}
	upstream := newFakeUpstream(ws.Event{Type: ws.EventAudio, Audio: chunk})

	sink, err := runStream(t, newVoiceSession(t), upstream)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sink.binary) != 1 || !bytes.Equal(sink.binary[0], chunk) {
		t.Fatalf("binary frames = %v", sink.binary)
	}
}

func TestStreamFinalizesTranscriptOnTurnComplete(t *testing.T) {
	upstream := newFakeUpstream(
		ws.Event{Type: ws.EventPartialTranscript, Text: "Your lamb shish "},
		ws.Event{Type: ws.EventPartialTranscript, Text: "is on the way."},
		ws.Event{Type: ws.EventTurnComplete},
	)

	sink, err := runStream(t, newVoiceSession(t), upstream)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	last := sink.frames[len(sink.frames)-1]
	if last.Type != ws.EventTurnComplete {
		t.Fatalf("last frame = %+v", last)
	}
	if last.Text != "Your lamb shish is on the way." {
		t.Errorf("final transcript = %q", last.Text)
	}
}

func TestStreamDiscardsTranscriptOnInterruption(t *testing.T) {
	upstream := newFakeUpstream(
		ws.Event{Type: ws.EventPartialTranscript, Text: "Let me tell you about our"},
		ws.Event{Type: ws.EventInterrupted},
		ws.Event{Type: ws.EventPartialTranscript, Text: "Sure, the cart it is."},
		ws.Event{Type: ws.EventTurnComplete},
	)

	sink, err := runStream(t, newVoiceSession(t), upstream)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var sawInterrupted bool
	for _, fr := range sink.frames {
		if fr.Type == ws.EventInterrupted {
			sawInterrupted = true
		}
	}
	if !sawInterrupted {
		t.Error("no interrupted frame sent to the kiosk")
	}

	last := sink.frames[len(sink.frames)-1]
	if last.Text != "Sure, the cart it is." {
		t.Errorf("final transcript = %q, want the abandoned text dropped", last.Text)
	}
}

func TestStreamExecutesToolCallsAndPushesState(t *testing.T) {
	upstream := newFakeUpstream(
		ws.Event{Type: ws.EventToolCall, Call: &ws.ToolCall{ID: "call-1", Name: "viewCart", Arguments: "{}"}},
	)
	sess := newVoiceSession(t)

	sink, err := runStream(t, sess, upstream)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(upstream.replies) != 1 {
		t.Fatalf("tool replies = %+v, want 1", upstream.replies)
	}
	reply := upstream.replies[0]
	if reply.callID != "call-1" || reply.name != "viewCart" {
		t.Errorf("reply = %+v", reply)
	}
	if !strings.Contains(reply.content, "cart") {
		t.Errorf("reply content = %q", reply.content)
	}

	// The screen change made by the tool reaches the kiosk as a state push.
	if sess.Screen() != enum.ScreenCart {
		t.Fatalf("screen = %s, want cart", sess.Screen())
	}
	var state *ws.Frame
	for i := range sink.frames {
		if sink.frames[i].Type == "state" {
			state = &sink.frames[i]
		}
	}
	if state == nil || state.State == nil {
		t.Fatal("no state frame sent after the tool call")
	}
	if state.State.Screen != enum.ScreenCart {
		t.Errorf("pushed state screen = %s, want cart", state.State.Screen)
	}
}

func TestStreamAnswersUnknownToolWithoutDying(t *testing.T) {
	upstream := newFakeUpstream(
		ws.Event{Type: ws.EventToolCall, Call: &ws.ToolCall{ID: "call-1", Name: "refundOrder", Arguments: "{}"}},
		ws.Event{Type: ws.EventTurnComplete},
	)

	sink, err := runStream(t, newVoiceSession(t), upstream)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(upstream.replies[0].content, "invalid") {
		t.Errorf("reply = %q, want the rejection surfaced to the model", upstream.replies[0].content)
	}
	if sink.frames[len(sink.frames)-1].Type != ws.EventTurnComplete {
		t.Error("stream did not keep running after the bad call")
	}
}

func TestStreamStopsOnUpstreamError(t *testing.T) {
	boom := errors.New("upstream exploded")
	upstream := newFakeUpstream(ws.Event{Type: ws.EventError, Err: boom})

	sink, err := runStream(t, newVoiceSession(t), upstream)
	if !errors.Is(err, boom) {
		t.Fatalf("Run = %v, want the upstream error", err)
	}
	if len(sink.frames) == 0 || sink.frames[0].Type != ws.EventError {
		t.Errorf("frames = %+v, want an error frame for the kiosk", sink.frames)
	}
}

func TestForwardAudioReachesUpstream(t *testing.T) {
	upstream := newFakeUpstream()
	stream := ws.NewStream(newVoiceSession(t), upstream, &fakeSink{}, zerolog.Nop())

	chunk := []byte{0xAA, 0xBB}
	if err := stream.ForwardAudio(context.Background(), chunk); err != nil {
		t.Fatalf("ForwardAudio: %v", err)
	}
	if len(upstream.sent) != 1 || !bytes.Equal(upstream.sent[0], chunk) {
		t.Fatalf("sent = %v", upstream.sent)
	}
}
