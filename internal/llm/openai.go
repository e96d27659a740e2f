package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// OpenAIOptions configures the OpenAI chat completions client. BaseURL
// also points it at any OpenAI-compatible endpoint.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
}

type openAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAI returns a Client speaking the OpenAI chat completions API.
func NewOpenAI(o OpenAIOptions) Client {
	cfg := openai.DefaultConfig(o.APIKey)
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.HTTPClient != nil {
		cfg.HTTPClient = o.HTTPClient
	}
	if o.Model == "" {
		o.Model = openai.GPT4oMini
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 1024
	}
	return &openAIClient{
		client:    openai.NewClientWithConfig(cfg),
		model:     o.Model,
		maxTokens: o.MaxTokens,
	}
}

func (c *openAIClient) Provider() string { return ProviderOpenAI }

// Invoke sends system as the first message, followed by history.
func (c *openAIClient) Invoke(ctx context.Context, system string, history []Turn) (*Reply, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, t := range history {
		role := openai.ChatMessageRoleUser
		switch t.Role {
		case domain.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case domain.RoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  msgs,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return nil, c.wrap(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: ErrMalformed, Provider: ProviderOpenAI, Err: errors.New("no choices")}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, &Error{Kind: ErrMalformed, Provider: ProviderOpenAI, Err: errors.New("empty content")}
	}

	return &Reply{
		Content: content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func (c *openAIClient) wrap(ctx context.Context, err error) error {
	if e := classify(ctx, ProviderOpenAI, err); e != nil {
		return e
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: ErrUpstream, Provider: ProviderOpenAI, Status: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Kind: ErrUpstream, Provider: ProviderOpenAI, Status: reqErr.HTTPStatusCode, Err: err}
	}
	return &Error{Kind: ErrMalformed, Provider: ProviderOpenAI, Err: err}
}
