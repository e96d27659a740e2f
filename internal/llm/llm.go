// Package llm talks to the language model that writes the tutor's replies.
//
// Two dialects are supported, Anthropic Messages and OpenAI chat
// completions. The provider is chosen once at startup by New; callers only
// see the Client interface and three error kinds (ErrTimeout, ErrUpstream,
// ErrMalformed) that they match with errors.Is.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/tbourn/go-tutor-backend/internal/config"
)

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Turn is one prior message of the conversation. Role is one of the
// domain.Role* constants.
type Turn struct {
	Role    string
	Content string
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }

// Reply is a completed model answer.
type Reply struct {
	Content string
	Usage   Usage
}

// Client sends a system prompt plus the ordered history and returns the
// model's reply. Implementations are safe for concurrent use and never
// retry.
type Client interface {
	Invoke(ctx context.Context, system string, history []Turn) (*Reply, error)
	Provider() string
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, system string, history []Turn) (*Reply, error)

func (f ClientFunc) Invoke(ctx context.Context, system string, history []Turn) (*Reply, error) {
	return f(ctx, system, history)
}

func (f ClientFunc) Provider() string { return "func" }

var (
	// ErrTimeout means the call did not finish before its deadline.
	ErrTimeout = errors.New("llm: timeout")
	// ErrUpstream means the provider answered with a non-2xx status or could
	// not be reached.
	ErrUpstream = errors.New("llm: upstream error")
	// ErrMalformed means the provider answered 2xx with a payload that
	// carries no usable text.
	ErrMalformed = errors.New("llm: malformed response")
)

// Error carries the provider, the HTTP status when known, and the cause.
// errors.Is matches it against its Kind.
type Error struct {
	Kind     error
	Provider string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	fmt.Fprintf(&b, " (%s", e.Provider)
	if e.Status != 0 {
		fmt.Fprintf(&b, ", status %d", e.Status)
	}
	b.WriteString(")")
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// classify maps transport-level failures shared by both dialects. It
// returns nil when err needs dialect-specific handling.
func classify(ctx context.Context, provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, Provider: provider, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &Error{Kind: ErrTimeout, Provider: provider, Err: err}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) || errors.As(err, &nerr) {
		return &Error{Kind: ErrUpstream, Provider: provider, Err: err}
	}
	return nil
}

// New builds the client for cfg.Provider. The returned client is bare; wrap
// it with WithTimeout and Instrument.
func New(cfg config.LLMConfig) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderAnthropic, "claude", "":
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("llm: ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return NewAnthropic(AnthropicOptions{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.AnthropicModel,
			BaseURL:   cfg.AnthropicBaseURL,
			MaxTokens: cfg.MaxTokens,
		}), nil
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("llm: OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAI(OpenAIOptions{
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.OpenAIModel,
			BaseURL:   cfg.OpenAIBaseURL,
			MaxTokens: cfg.MaxTokens,
		}), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
