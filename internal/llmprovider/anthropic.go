// Package llmprovider implements conversation.Conversation against the
// Anthropic Messages API, using the official SDK's streaming client.
package llmprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/ianrumac/gloop/internal/conversation"
)

// AnthropicConversation is a conversation.Conversation backed by a single
// Anthropic model. It owns its own message history and can fork a sibling
// with fresh history sharing the same client, model and routing hint.
type AnthropicConversation struct {
	mu       sync.Mutex
	client   anthropic.Client
	model    string
	routing  string
	system   string
	maxToks  int64
	history  []conversation.Message
}

// NewAnthropicConversation creates a conversation against the given model.
// apiKey may be empty if ANTHROPIC_API_KEY is already set in the environment
// — the SDK falls back to it automatically.
func NewAnthropicConversation(apiKey, model string, maxTokens int) *AnthropicConversation {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &AnthropicConversation{
		client:  anthropic.NewClient(opts...),
		model:   model,
		maxToks: int64(maxTokens),
	}
}

func (c *AnthropicConversation) GetHistory() []conversation.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]conversation.Message, len(c.history))
	copy(out, c.history)
	return out
}

func (c *AnthropicConversation) SetHistory(history []conversation.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append([]conversation.Message(nil), history...)
}

func (c *AnthropicConversation) AppendAssistant(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, conversation.Message{Role: conversation.RoleAssistant, Content: content})
}

func (c *AnthropicConversation) SetSystem(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.system = prompt
}

func (c *AnthropicConversation) SetProviderRouting(hint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routing = hint
}

func (c *AnthropicConversation) Model() string { return c.model }

func (c *AnthropicConversation) Fork(systemPrompt string) conversation.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &AnthropicConversation{
		client:  c.client,
		model:   c.model,
		routing: c.routing,
		maxToks: c.maxToks,
		system:  systemPrompt,
	}
}

// appendUser commits a user turn to history immediately (synchronously),
// satisfying the Think step's precondition that input is recorded before
// streaming begins, regardless of how the turn ends.
func (c *AnthropicConversation) appendUser(content string) []conversation.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, conversation.Message{Role: conversation.RoleUser, Content: content})
	return append([]conversation.Message(nil), c.history...)
}

func (c *AnthropicConversation) buildParams(history []conversation.Message) anthropic.MessageNewParams {
	c.mu.Lock()
	system := c.system
	model := c.model
	maxToks := c.maxToks
	c.mu.Unlock()

	msgs := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		block := anthropic.NewTextBlock(m.Content)
		switch m.Role {
		case conversation.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}

	if maxToks <= 0 {
		maxToks = 8192
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  msgs,
		MaxTokens: maxToks,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

// Send performs a non-streaming round trip, retried with backoff. The Think
// step and the context-prune fork both stream, so nothing in this module
// calls Send.
func (c *AnthropicConversation) Send(ctx context.Context, text string) (conversation.Response, error) {
	c.appendUser(text)
	params := c.buildParams(c.GetHistory())

	var msg *anthropic.Message
	err := retryLoop(ctx, defaultRetryConfig(), func(attempt int) (bool, error) {
		var apiErr error
		msg, apiErr = c.client.Messages.New(ctx, params)
		if apiErr == nil {
			return false, nil
		}
		var respErr *anthropic.Error
		if errors.As(apiErr, &respErr) {
			retry := respErr.StatusCode == http.StatusTooManyRequests || respErr.StatusCode >= 500
			return retry, apiErr
		}
		return true, apiErr
	})
	if err != nil {
		return conversation.Response{}, fmt.Errorf("anthropic send: %w", err)
	}

	text2 := extractText(msg)
	c.AppendAssistant(text2)
	return conversation.Response{Text: text2}, nil
}

func extractText(msg *anthropic.Message) string {
	var sb []byte
	for _, block := range msg.Content {
		if tb := block.AsAny(); tb != nil {
			if t, ok := tb.(anthropic.TextBlock); ok {
				sb = append(sb, t.Text...)
			}
		}
	}
	return string(sb)
}

// Stream starts a streaming turn. The returned channel closes when the
// underlying SSE stream ends or errors; a reader that abandons the channel
// mid-stream (cancellation, or an early complete-tool-block break) simply
// stops receiving — the producer goroutine notices ctx.Done() on its next
// iteration and exits without the caller ever awaiting its teardown.
func (c *AnthropicConversation) Stream(ctx context.Context, text string) (<-chan conversation.StreamEvent, error) {
	c.appendUser(text)
	params := c.buildParams(c.GetHistory())
	out := make(chan conversation.StreamEvent, 16)

	go func() {
		defer close(out)
		stream := c.client.Messages.NewStreaming(ctx, params)
		var full []byte

		for stream.Next() {
			if ctx.Err() != nil {
				return
			}
			event := stream.Current()
			if delta := event.AsContentBlockDelta(); delta.Delta.Text != "" {
				full = append(full, delta.Delta.Text...)
				select {
				case out <- conversation.StreamEvent{TextDelta: delta.Delta.Text}:
				case <-ctx.Done():
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case out <- conversation.StreamEvent{Err: fmt.Errorf("anthropic stream: %w", err)}:
			case <-ctx.Done():
			}
			return
		}

		c.AppendAssistant(string(full))
	}()

	return out, nil
}

var _ conversation.Conversation = (*AnthropicConversation)(nil)

func init() {
	// Re-applies the global zerolog logger at its current level, which
	// leaves it unchanged. The SDK does not log through zerolog, so its own
	// output is not affected by this.
	log.Logger = log.Logger.Level(log.Logger.GetLevel())
}
