package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nullticket/helpdesk/pkg/errs"
	"github.com/nullticket/helpdesk/pkg/llm"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider speaks the OpenAI chat-completions protocol. With a custom
// BaseURL it also covers compatible endpoints such as Groq.
type OpenAIProvider struct {
	client *openai.Client
	config llm.ProviderConfig
}

func NewOpenAIProvider(config llm.ProviderConfig) *OpenAIProvider {
	client := openai.NewClient(config.APIKey)
	if config.BaseURL != "" {
		cfg := openai.DefaultConfig(config.APIKey)
		cfg.BaseURL = config.BaseURL
		client = openai.NewClientWithConfig(cfg)
	}

	return &OpenAIProvider{
		client: client,
		config: config,
	}
}

func (p *OpenAIProvider) SendMessage(ctx context.Context, req llm.MessageRequest) (*llm.MessageResponse, error) {
	openaiMessages := convertToOpenAIMessages(req.Messages)

	if req.SystemPrompt != "" {
		systemMsg := openai.ChatCompletionMessage{
			Role:    "system",
			Content: req.SystemPrompt,
		}
		openaiMessages = append([]openai.ChatCompletionMessage{systemMsg}, openaiMessages...)
	}

	model := "gpt-4o"
	if req.Model != "" {
		model = req.Model
	} else if p.config.Model != "" {
		model = p.config.Model
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    openaiMessages,
		Temperature: req.Temperature,
	}

	if req.MaxTokens > 0 {
		openaiReq.MaxTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	return convertFromOpenAIResponse(resp), nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return errs.Upstream(apiErr.HTTPStatusCode, fmt.Sprintf("completion API error: %s", apiErr.Message))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return errs.Upstream(reqErr.HTTPStatusCode, fmt.Sprintf("completion API error: %v", reqErr.Err))
	}
	return errs.Network("calling completion API failed", err)
}

func (p *OpenAIProvider) GetName() string {
	return "openai"
}

func (p *OpenAIProvider) GetSupportedModels() []string {
	return []string{
		"llama-3.1-8b-instant",
		"llama-3.3-70b-versatile",
		"gpt-4o-2024-08-06",
		"gpt-4.1-2025-04-14",
		"o4-mini-2025-04-16",
	}
}

func (p *OpenAIProvider) ValidateConfig(config llm.ProviderConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("API key is required for OpenAI provider")
	}
	// Only enforce the OpenAI key prefix against the real OpenAI endpoint;
	// compatible providers (Groq) issue keys with their own prefixes.
	if config.BaseURL == "" && !strings.HasPrefix(config.APIKey, "sk-") {
		return fmt.Errorf("invalid OpenAI API key format - should start with 'sk-'")
	}
	return nil
}

func convertToOpenAIMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	var openaiMessages []openai.ChatCompletionMessage

	for _, msg := range messages {
		openaiMsg := openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
		openaiMessages = append(openaiMessages, openaiMsg)
	}

	return openaiMessages
}

func convertFromOpenAIResponse(resp openai.ChatCompletionResponse) *llm.MessageResponse {
	var content string
	var finishReason string

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		content = choice.Message.Content
		finishReason = string(choice.FinishReason)
	}

	usage := llm.Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}

	return &llm.MessageResponse{
		Content:      content,
		Usage:        usage,
		FinishReason: finishReason,
	}
}
