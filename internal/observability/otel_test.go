package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/tbourn/go-tutor-backend/internal/config"
)

func preserveOTelGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func enabledCfg(insecure bool) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    insecure,
		Endpoint:    "localhost:4317",
		ServiceName: "go-tutor-backend",
		SampleRatio: 1.0,
	}
}

// inMemory exports into mem instead of a collector.
func inMemory(mem *tracetest.InMemoryExporter) tracing {
	return tracing{
		exporter: func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) { return mem, nil },
		resource: serviceResource,
	}
}

func TestSetupOTel_DisabledIsNoOp(t *testing.T) {
	preserveOTelGlobals(t)
	prev := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false}, "v0")
	if err != nil || shutdown == nil {
		t.Fatalf("SetupOTel: shutdown=%v err=%v", shutdown, err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Fatal("tracer provider replaced while disabled")
	}
}

func TestSetupOTel_InstallsOTLPProvider(t *testing.T) {
	for _, insecure := range []bool{true, false} {
		preserveOTelGlobals(t)

		shutdown, err := SetupOTel(context.Background(), enabledCfg(insecure), "v1.0.0")
		if err != nil {
			t.Fatalf("insecure=%v: %v", insecure, err)
		}
		if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
			t.Fatalf("insecure=%v: expected *sdktrace.TracerProvider", insecure)
		}

		sctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		_ = shutdown(sctx)
		cancel()
	}
}

func TestInstall_ExportsTutorSpans(t *testing.T) {
	preserveOTelGlobals(t)
	mem := tracetest.NewInMemoryExporter()
	ctx := context.Background()

	shutdown, err := inMemory(mem).install(ctx, enabledCfg(true), "v2.1.0")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	sctx, span := otel.Tracer("services/MessageService").Start(ctx, "Send")
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(sctx, carrier)
	span.End()
	if carrier.Get("traceparent") == "" {
		t.Fatal("traceparent not injected")
	}

	tp := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	if err := tp.ForceFlush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	spans := mem.GetSpans()
	if len(spans) != 1 || spans[0].Name != "Send" {
		t.Fatalf("exported spans = %+v", spans)
	}
	attrs := spans[0].Resource.Set()
	if v, ok := attrs.Value(semconv.ServiceNameKey); !ok || v.AsString() != "go-tutor-backend" {
		t.Fatalf("service.name = %v", v)
	}
	if v, ok := attrs.Value(semconv.ServiceVersionKey); !ok || v.AsString() != "v2.1.0" {
		t.Fatalf("service.version = %v", v)
	}
}

func TestInstall_ZeroRatioDropsRootSpans(t *testing.T) {
	preserveOTelGlobals(t)
	mem := tracetest.NewInMemoryExporter()
	ctx := context.Background()
	cfg := enabledCfg(true)
	cfg.SampleRatio = 0

	shutdown, err := inMemory(mem).install(ctx, cfg, "v0")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := otel.Tracer("test").Start(ctx, "Topics")
	span.End()
	_ = otel.GetTracerProvider().(*sdktrace.TracerProvider).ForceFlush(ctx)
	if n := len(mem.GetSpans()); n != 0 {
		t.Fatalf("exported %d spans at ratio 0", n)
	}
}

func TestInstall_FailuresLeaveGlobals(t *testing.T) {
	preserveOTelGlobals(t)
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	ctx := context.Background()

	badExporter := tracing{
		exporter: func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) {
			return nil, errors.New("collector unreachable")
		},
		resource: serviceResource,
	}
	if _, err := badExporter.install(ctx, enabledCfg(true), "v0"); err == nil || !strings.Contains(err.Error(), "otel exporter") {
		t.Fatalf("exporter failure err = %v", err)
	}

	mem := tracetest.NewInMemoryExporter()
	badResource := inMemory(mem)
	badResource.resource = func(context.Context, config.OTELConfig, string) (*resource.Resource, error) {
		return nil, errors.New("no host info")
	}
	if _, err := badResource.install(ctx, enabledCfg(true), "v0"); err == nil || !strings.Contains(err.Error(), "otel resource") {
		t.Fatalf("resource failure err = %v", err)
	}

	if otel.GetTracerProvider() != prevTP || otel.GetTextMapPropagator() != prevProp {
		t.Fatal("globals changed on failure")
	}
}

func TestSampler_ClampsRatio(t *testing.T) {
	if d := sampler(5).Description(); !strings.Contains(d, "AlwaysOnSampler") {
		t.Fatalf("ratio 5: %s", d)
	}
	if d := sampler(-1).Description(); !strings.Contains(d, "TraceIDRatioBased{0}") {
		t.Fatalf("ratio -1: %s", d)
	}
	if d := sampler(0.25).Description(); !strings.HasPrefix(d, "ParentBased") {
		t.Fatalf("ratio 0.25: %s", d)
	}
}
