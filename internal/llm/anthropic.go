package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// AnthropicOptions configures the Anthropic Messages client.
type AnthropicOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
}

type anthropicClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic returns a Client speaking the Anthropic Messages API.
func NewAnthropic(o AnthropicOptions) Client {
	opts := []option.RequestOption{
		option.WithAPIKey(o.APIKey),
		option.WithMaxRetries(0),
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	if o.Model == "" {
		o.Model = string(anthropic.ModelClaude4Sonnet20250514)
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 1024
	}
	return &anthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(o.Model),
		maxTokens: int64(o.MaxTokens),
	}
}

func (c *anthropicClient) Provider() string { return ProviderAnthropic }

// Invoke sends system in the dedicated system field. System-role turns in
// history are dropped, the API has no such role.
func (c *anthropicClient) Invoke(ctx context.Context, system string, history []Turn) (*Reply, error) {
	msgs := make([]anthropic.MessageParam, 0, len(history))
	for _, t := range history {
		switch t.Role {
		case domain.RoleUser:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		case domain.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  msgs,
	}
	if strings.TrimSpace(system) != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, c.wrap(ctx, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return nil, &Error{Kind: ErrMalformed, Provider: ProviderAnthropic, Err: errors.New("no text content")}
	}

	return &Reply{
		Content: content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

func (c *anthropicClient) wrap(ctx context.Context, err error) error {
	if e := classify(ctx, ProviderAnthropic, err); e != nil {
		return e
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &Error{Kind: ErrUpstream, Provider: ProviderAnthropic, Status: apiErr.StatusCode, Err: err}
	}
	return &Error{Kind: ErrMalformed, Provider: ProviderAnthropic, Err: err}
}
