package assistant_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"

	"github.com/boston-kebab/kiosk/internal/assistant"
	"github.com/boston-kebab/kiosk/internal/menu"
	"github.com/boston-kebab/kiosk/internal/session"
)

// fakeModel replays a script of responses and records every request.
type fakeModel struct {
	script   []*llms.ContentResponse
	errs     []error
	requests [][]llms.MessageContent
	onCall   func()
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.onCall != nil {
		f.onCall()
	}
	f.requests = append(f.requests, messages)
	i := len(f.requests) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.script) {
		return nil, errors.New("script exhausted")
	}
	return f.script[i], nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func textResponse(text string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text}},
	}
}

func toolResponse(id, name, args string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				ID:   id,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      name,
					Arguments: args,
				},
			}},
		}},
	}
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	catalog, err := menu.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	return session.New("table-3", catalog)
}

func TestAskReturnsPlainReply(t *testing.T) {
	model := &fakeModel{script: []*llms.ContentResponse{
		textResponse("The baklava is lovely tonight."),
	}}
	a := assistant.New(model, zerolog.Nop())
	sess := newSession(t)

	reply, err := a.Ask(context.Background(), sess, "any desserts?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "The baklava is lovely tonight." {
		t.Fatalf("reply = %q", reply)
	}

	// The request carries the standing instructions plus the live menu.
	req := model.requests[0]
	if req[0].Role != llms.ChatMessageTypeSystem {
		t.Fatalf("first message role = %s, want system", req[0].Role)
	}
	sys := req[0].Parts[0].(llms.TextContent).Text
	if !strings.Contains(sys, "Lamb Shish Plate") || !strings.Contains(sys, "18.99") {
		t.Error("system prompt is missing the menu digest")
	}
	if !strings.Contains(sys, "Halloumi Sticks ($8.50) [currently unavailable]") {
		t.Error("system prompt does not flag unavailable items")
	}
}

func TestAskExecutesToolCallsAgainstSession(t *testing.T) {
	model := &fakeModel{script: []*llms.ContentResponse{
		toolResponse("call-1", "openMenuItem", `{"name": "shish"}`),
		textResponse("Opened the Lamb Shish Plate for you!"),
	}}
	a := assistant.New(model, zerolog.Nop())
	sess := newSession(t)

	reply, err := a.Ask(context.Background(), sess, "I want the lamb shish")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "Opened the Lamb Shish Plate for you!" {
		t.Fatalf("reply = %q", reply)
	}

	if snap := sess.Snapshot(); snap.Draft == nil || snap.Draft.ItemID != "lamb-shish-plate" {
		t.Fatal("tool call did not open the draft")
	}

	// The second request replays the tool result to the model.
	if len(model.requests) != 2 {
		t.Fatalf("model called %d times, want 2", len(model.requests))
	}
	second := model.requests[1]
	last := second[len(second)-1]
	if last.Role != llms.ChatMessageTypeTool {
		t.Fatalf("last message role = %s, want tool", last.Role)
	}
	result := last.Parts[0].(llms.ToolCallResponse)
	if result.ToolCallID != "call-1" || result.Name != "openMenuItem" {
		t.Errorf("tool response = %+v", result)
	}
	if !strings.Contains(result.Content, "Lamb Shish Plate") {
		t.Errorf("tool result = %q", result.Content)
	}
}

func TestAskFeedsBadToolCallBackToModel(t *testing.T) {
	model := &fakeModel{script: []*llms.ContentResponse{
		toolResponse("call-1", "refundOrder", `{}`),
		textResponse("Sorry, I can't do that."),
	}}
	a := assistant.New(model, zerolog.Nop())
	sess := newSession(t)

	reply, err := a.Ask(context.Background(), sess, "give me a refund")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "Sorry, I can't do that." {
		t.Fatalf("reply = %q", reply)
	}

	second := model.requests[1]
	result := second[len(second)-1].Parts[0].(llms.ToolCallResponse)
	if !strings.Contains(result.Content, "invalid") {
		t.Errorf("tool result = %q, want the rejection surfaced", result.Content)
	}
}

func TestAskFallsBackOnModelError(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("quota exceeded")}}
	a := assistant.New(model, zerolog.Nop())
	sess := newSession(t)

	reply, err := a.Ask(context.Background(), sess, "hello?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(reply, "try asking me again") {
		t.Fatalf("reply = %q, want the fallback", reply)
	}
}

func TestAskFallsBackWhenToolLoopNeverSettles(t *testing.T) {
	script := make([]*llms.ContentResponse, 0, 8)
	for i := 0; i < 8; i++ {
		script = append(script, toolResponse("call-x", "viewCart", `{}`))
	}
	model := &fakeModel{script: script}
	a := assistant.New(model, zerolog.Nop())
	sess := newSession(t)

	reply, err := a.Ask(context.Background(), sess, "loop forever")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(reply, "try asking me again") {
		t.Fatalf("reply = %q, want the fallback", reply)
	}
	if len(model.requests) != 4 {
		t.Errorf("model called %d times, want the 4-round cap", len(model.requests))
	}
}

func TestAskRefusesOverlappingRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	model := &fakeModel{
		script: []*llms.ContentResponse{textResponse("done")},
	}
	model.onCall = func() {
		model.onCall = nil
		close(started)
		<-release
	}
	a := assistant.New(model, zerolog.Nop())
	sess := newSession(t)

	firstDone := make(chan error, 1)
	go func() {
		_, err := a.Ask(context.Background(), sess, "slow question")
		firstDone <- err
	}()
	<-started

	// Same table, first request still in flight.
	if _, err := a.Ask(context.Background(), sess, "impatient question"); !errors.Is(err, assistant.ErrBusy) {
		t.Fatalf("overlapping Ask = %v, want ErrBusy", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first Ask: %v", err)
	}
}

func TestHistoryCarriesAcrossTurnsUntilReset(t *testing.T) {
	model := &fakeModel{script: []*llms.ContentResponse{
		textResponse("first answer"),
		textResponse("second answer"),
		textResponse("after reset"),
	}}
	a := assistant.New(model, zerolog.Nop())
	sess := newSession(t)
	ctx := context.Background()

	if _, err := a.Ask(ctx, sess, "first question"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if _, err := a.Ask(ctx, sess, "second question"); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	// system + prior question + prior answer + new question.
	if got := len(model.requests[1]); got != 4 {
		t.Fatalf("second request has %d messages, want 4", got)
	}

	a.Reset(sess.TableID)
	if _, err := a.Ask(ctx, sess, "third question"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got := len(model.requests[2]); got != 2 {
		t.Fatalf("post-reset request has %d messages, want 2", got)
	}
}
