package llm

import (
	"context"
)

type Provider interface {
	SendMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
	GetName() string
	GetSupportedModels() []string
	ValidateConfig(config ProviderConfig) error
}

type MessageRequest struct {
	Messages     []Message
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
	Model        string
}

type MessageResponse struct {
	Content      string
	Usage        Usage
	FinishReason string
}

type ProviderConfig struct {
	Type    string // "openai", "anthropic"
	APIKey  string
	BaseURL string // for OpenAI-compatible endpoints (Groq)
	Model   string
}

type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
