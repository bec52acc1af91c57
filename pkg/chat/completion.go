package chat

import (
	"context"
	"strings"

	"github.com/nullticket/helpdesk/pkg/errs"
	"github.com/nullticket/helpdesk/pkg/llm"
)

const (
	// contextWindow is the number of prior turns sent alongside the new
	// user message.
	contextWindow = 5

	completionMaxTokens   = 500
	completionTemperature = 0.7

	// Returned when the provider answers successfully but with no usable
	// text. A degraded reply, not an error.
	apologyReply = "I apologize, but I could not generate a response at this time."
)

// Completer invokes the chat-completion provider with the support persona
// and a sliding window of conversation context.
type Completer struct {
	provider llm.Provider
	model    string
}

// NewCompleter wraps a provider. A nil provider is allowed and yields a
// configuration error on every call, so an unconfigured deployment still
// serves everything except the AI path.
func NewCompleter(provider llm.Provider, model string) *Completer {
	return &Completer{provider: provider, model: model}
}

// Complete sends the system prompt, the last turns of history, and the new
// user message, returning the raw completion text.
func (c *Completer) Complete(ctx context.Context, message string, history []Message) (string, error) {
	if c == nil || c.provider == nil {
		return "", errs.Config("AI chat is not configured: no completion API key is set")
	}

	if len(history) > contextWindow {
		history = history[len(history)-contextWindow:]
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: message})

	resp, err := c.provider.SendMessage(ctx, llm.MessageRequest{
		Messages:     msgs,
		SystemPrompt: SystemPrompt,
		MaxTokens:    completionMaxTokens,
		Temperature:  completionTemperature,
		Model:        c.model,
	})
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(resp.Content) == "" {
		return apologyReply, nil
	}
	return resp.Content, nil
}
