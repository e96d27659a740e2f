package llm

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 60 * time.Second

type timeoutClient struct {
	next Client
	d    time.Duration
}

// WithTimeout bounds every Invoke on c by d (DefaultTimeout when d <= 0).
// A call that outlives d fails with ErrTimeout. A shorter deadline already
// on the caller's context still wins.
func WithTimeout(c Client, d time.Duration) Client {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &timeoutClient{next: c, d: d}
}

func (t *timeoutClient) Provider() string { return t.next.Provider() }

func (t *timeoutClient) Invoke(ctx context.Context, system string, history []Turn) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	reply, err := t.next.Invoke(ctx, system, history)
	if err != nil && !errors.Is(err, ErrTimeout) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, &Error{Kind: ErrTimeout, Provider: t.next.Provider(), Err: err}
	}
	return reply, err
}

var (
	llmCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of language model calls by outcome.",
		},
		[]string{"provider", "outcome"},
	)

	llmLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of language model calls in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60, 90},
		},
		[]string{"provider"},
	)

	llmTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Tokens consumed by language model calls.",
		},
		[]string{"provider", "kind"},
	)
)

func init() {
	prometheus.MustRegister(llmCalls, llmLat, llmTokens)
}

// Outcome returns the metric label for err.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

type instrumented struct {
	next Client
}

// Instrument records Prometheus metrics and an OpenTelemetry span for every
// call on c.
func Instrument(c Client) Client { return &instrumented{next: c} }

func (i *instrumented) Provider() string { return i.next.Provider() }

func (i *instrumented) Invoke(ctx context.Context, system string, history []Turn) (*Reply, error) {
	provider := i.next.Provider()
	ctx, span := otel.Tracer("internal/llm").Start(ctx, "llm.Invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", provider),
		attribute.Int("llm.history_len", len(history)),
	)

	start := time.Now()
	reply, err := i.next.Invoke(ctx, system, history)
	llmLat.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	llmCalls.WithLabelValues(provider, Outcome(err)).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Outcome(err))
		if s := StatusOf(err); s != 0 {
			span.SetAttributes(attribute.Int("llm.upstream_status", s))
		}
		return nil, err
	}
	llmTokens.WithLabelValues(provider, "prompt").Add(float64(reply.Usage.PromptTokens))
	llmTokens.WithLabelValues(provider, "completion").Add(float64(reply.Usage.CompletionTokens))
	span.SetAttributes(attribute.Int("llm.tokens", reply.Usage.Total()))
	return reply, nil
}
