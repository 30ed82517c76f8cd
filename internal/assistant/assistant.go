// Package assistant runs the text chat loop between a table and the
// language model, executing the model's tool calls through the action
// bridge and feeding the results back until the model produces a reply.
package assistant

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"

	"github.com/boston-kebab/kiosk/internal/bridge"
	"github.com/boston-kebab/kiosk/internal/session"
)

// ErrBusy is returned while a previous request for the same table is still
// being answered. One question at a time per table.
var ErrBusy = errors.New("assistant is already answering this table")

const (
	// maxToolRounds bounds the model-tool loop. A well-behaved model needs
	// one or two rounds; a looping one gets cut off with the fallback reply.
	maxToolRounds = 4

	// historyLimit caps the retained conversation per table, oldest first.
	historyLimit = 20

	temperature = 0.7

	// fallbackReply is what the guest sees when the model errors out or
	// never settles on an answer.
	fallbackReply = "The kitchen is buzzing with energy right now! Please try asking me again in just a moment."
)

// Assistant drives one model for every table. Histories are kept per table
// so the model remembers the conversation; the kiosk state itself lives in
// the session, not here.
type Assistant struct {
	model llms.Model
	log   zerolog.Logger

	mu        sync.Mutex
	busy      map[string]bool
	histories map[string][]llms.MessageContent
}

// New creates an assistant over the given model.
func New(model llms.Model, log zerolog.Logger) *Assistant {
	return &Assistant{
		model:     model,
		log:       log.With().Str("component", "assistant").Logger(),
		busy:      make(map[string]bool),
		histories: make(map[string][]llms.MessageContent),
	}
}

// Ask answers one guest message for the table behind sess. Tool calls the
// model makes are executed against that session before the final reply is
// returned. Model failures degrade to a fixed apology so the kiosk never
// surfaces a raw error to the guest.
func (a *Assistant) Ask(ctx context.Context, sess *session.Session, message string) (string, error) {
	table := sess.TableID
	if !a.acquire(table) {
		return "", ErrBusy
	}
	defer a.release(table)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt(sess.Catalog())),
	}
	messages = append(messages, a.history(table)...)
	userMsg := llms.TextParts(llms.ChatMessageTypeHuman, message)
	messages = append(messages, userMsg)

	turn := []llms.MessageContent{userMsg}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.model.GenerateContent(ctx, messages,
			llms.WithTools(bridge.Tools()),
			llms.WithTemperature(temperature),
		)
		if err != nil {
			a.log.Error().Err(err).Str("table_id", table).Msg("model call failed")
			return fallbackReply, nil
		}
		if len(resp.Choices) == 0 {
			a.log.Error().Str("table_id", table).Msg("model returned no choices")
			return fallbackReply, nil
		}
		choice := resp.Choices[0]

		if len(choice.ToolCalls) == 0 {
			reply := choice.Content
			if reply == "" {
				return fallbackReply, nil
			}
			turn = append(turn, llms.TextParts(llms.ChatMessageTypeAI, reply))
			a.remember(table, turn)
			return reply, nil
		}

		assistantMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, call := range choice.ToolCalls {
			assistantMsg.Parts = append(assistantMsg.Parts, call)
		}
		messages = append(messages, assistantMsg)
		turn = append(turn, assistantMsg)

		for _, call := range choice.ToolCalls {
			result := a.execute(sess, call)
			toolMsg := llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: call.ID,
					Name:       call.FunctionCall.Name,
					Content:    result,
				}},
			}
			messages = append(messages, toolMsg)
			turn = append(turn, toolMsg)
		}
	}

	a.log.Warn().Str("table_id", table).Int("rounds", maxToolRounds).Msg("tool loop did not settle")
	return fallbackReply, nil
}

// execute runs one tool call through the bridge. Malformed calls come back
// as a plain message so the model can correct itself on the next round.
func (a *Assistant) execute(sess *session.Session, call llms.ToolCall) string {
	if call.FunctionCall == nil {
		return "That tool call was malformed."
	}

	args, err := bridge.DecodeArgs(call.FunctionCall.Arguments)
	if err != nil {
		a.log.Warn().Err(err).Str("tool", call.FunctionCall.Name).Msg("undecodable tool arguments")
		return "The arguments could not be parsed. Send a JSON object."
	}

	result, err := bridge.Dispatch(sess, bridge.Invocation{
		Name: call.FunctionCall.Name,
		Args: args,
	})
	if err != nil {
		a.log.Warn().Err(err).Str("tool", call.FunctionCall.Name).Msg("tool call rejected")
		return "That call was invalid: " + err.Error()
	}

	a.log.Info().
		Str("table_id", sess.TableID).
		Str("tool", call.FunctionCall.Name).
		Msg("executed tool call")
	return result
}

// Reset drops the table's conversation history. Called when the table
// finishes its meal.
func (a *Assistant) Reset(tableID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.histories, tableID)
}

func (a *Assistant) acquire(tableID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy[tableID] {
		return false
	}
	a.busy[tableID] = true
	return true
}

func (a *Assistant) release(tableID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.busy, tableID)
}

func (a *Assistant) history(tableID string) []llms.MessageContent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.histories[tableID]
}

func (a *Assistant) remember(tableID string, turn []llms.MessageContent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := append(a.histories[tableID], turn...)
	if len(h) > historyLimit {
		h = h[len(h)-historyLimit:]
	}
	a.histories[tableID] = h
}
