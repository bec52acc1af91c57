package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullticket/helpdesk/pkg/errs"
	"github.com/nullticket/helpdesk/pkg/llm"
)

type fakeProvider struct {
	resp    llm.MessageResponse
	err     error
	lastReq llm.MessageRequest
}

func (f *fakeProvider) SendMessage(_ context.Context, req llm.MessageRequest) (*llm.MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &f.resp, nil
}

func (f *fakeProvider) GetName() string                           { return "fake" }
func (f *fakeProvider) GetSupportedModels() []string              { return nil }
func (f *fakeProvider) ValidateConfig(_ llm.ProviderConfig) error { return nil }

func TestCompleteNilProvider(t *testing.T) {
	c := NewCompleter(nil, "")

	_, err := c.Complete(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))
}

func TestCompleteTruncatesHistory(t *testing.T) {
	p := &fakeProvider{resp: llm.MessageResponse{Content: "ok"}}
	c := NewCompleter(p, "test-model")

	history := make([]Message, 9)
	for i := range history {
		history[i] = Message{Role: RoleUser, Content: "old"}
	}

	_, err := c.Complete(context.Background(), "new question", history)
	require.NoError(t, err)

	// 5 history turns plus the new message.
	require.Len(t, p.lastReq.Messages, 6)
	assert.Equal(t, "new question", p.lastReq.Messages[5].Content)
	assert.Equal(t, "test-model", p.lastReq.Model)
	assert.Equal(t, SystemPrompt, p.lastReq.SystemPrompt)
	assert.Equal(t, 500, p.lastReq.MaxTokens)
}

func TestCompleteEmptyContentApologizes(t *testing.T) {
	p := &fakeProvider{resp: llm.MessageResponse{Content: "  \n "}}
	c := NewCompleter(p, "")

	got, err := c.Complete(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, apologyReply, got)
}

func TestCompletePropagatesProviderError(t *testing.T) {
	p := &fakeProvider{err: errs.Upstream(429, "rate limited")}
	c := NewCompleter(p, "")

	_, err := c.Complete(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindUpstream, errs.KindOf(err))
	assert.Equal(t, 429, errs.StatusOf(err))
}
