package observability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tbourn/go-match-backend/internal/config"
)

// stubTracing restores the OTel globals and seams after the test and routes
// spans into an in-memory exporter.
func stubTracing(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	prevExp, prevRes := newExporter, newResource
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
		newExporter, newResource = prevExp, prevRes
	})

	mem := tracetest.NewInMemoryExporter()
	newExporter = func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) { return mem, nil }
	return mem
}

func enabledCfg() config.OTELConfig {
	return config.OTELConfig{Enabled: true, Insecure: true, Endpoint: "collector:4317", ServiceName: "matchd", SampleRatio: 1}
}

func TestSetupOTel_DisabledLeavesGlobals(t *testing.T) {
	stubTracing(t)
	before := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false}, "v1")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSetupOTel_ExportsSpansWithServiceResource(t *testing.T) {
	mem := stubTracing(t)
	ctx := context.Background()

	shutdown, err := SetupOTel(ctx, enabledCfg(), "1.4.0")
	require.NoError(t, err)
	defer func() { _ = shutdown(ctx) }()

	_, span := otel.Tracer("services/AvailabilityService").Start(ctx, "Submit")
	span.End()

	tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	require.True(t, ok)
	require.NoError(t, tp.ForceFlush(ctx))

	spans := mem.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "Submit", spans[0].Name)

	attrs := map[string]string{}
	for _, kv := range spans[0].Resource.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "matchd", attrs["service.name"])
	assert.Equal(t, "1.4.0", attrs["service.version"])
	assert.Equal(t, serviceNamespace, attrs["service.namespace"])
}

func TestSetupOTel_PropagatesTraceContext(t *testing.T) {
	stubTracing(t)
	ctx := context.Background()
	shutdown, err := SetupOTel(ctx, enabledCfg(), "v1")
	require.NoError(t, err)
	defer func() { _ = shutdown(ctx) }()

	spanCtx, span := otel.Tracer("t").Start(ctx, "outgoing")
	defer span.End()
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(spanCtx, carrier)
	assert.True(t, strings.HasPrefix(carrier.Get("traceparent"), "00-"+span.SpanContext().TraceID().String()))
}

func TestSetupOTel_ErrorsKeepGlobals(t *testing.T) {
	t.Run("exporter", func(t *testing.T) {
		stubTracing(t)
		newExporter = func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) {
			return nil, errors.New("dial failed")
		}
		before := otel.GetTracerProvider()
		_, err := SetupOTel(context.Background(), enabledCfg(), "v1")
		require.ErrorContains(t, err, "otlp exporter")
		assert.Equal(t, before, otel.GetTracerProvider())
	})
	t.Run("resource", func(t *testing.T) {
		stubTracing(t)
		newResource = func(context.Context, string, string) (*resource.Resource, error) {
			return nil, errors.New("bad attrs")
		}
		before := otel.GetTracerProvider()
		_, err := SetupOTel(context.Background(), enabledCfg(), "v1")
		require.ErrorContains(t, err, "otel resource")
		assert.Equal(t, before, otel.GetTracerProvider())
	})
}

func TestSetupOTel_RealExporterIsLazy(t *testing.T) {
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() { otel.SetTracerProvider(prevTP); otel.SetTextMapPropagator(prevProp) })

	for _, insecure := range []bool{true, false} {
		cfg := enabledCfg()
		cfg.Endpoint = "localhost:4317"
		cfg.Insecure = insecure
		shutdown, err := SetupOTel(context.Background(), cfg, "v1")
		require.NoError(t, err, "insecure=%v", insecure)
		require.NoError(t, shutdown(context.Background()))
	}
}

func TestExporterOptions(t *testing.T) {
	assert.Len(t, exporterOptions(config.OTELConfig{Endpoint: "c:4317", Insecure: true}), 2)
	assert.Len(t, exporterOptions(config.OTELConfig{Endpoint: "c:4317"}), 2)
}

func TestSampler(t *testing.T) {
	cases := map[float64]string{
		1:    "AlwaysOnSampler",
		2:    "AlwaysOnSampler",
		0:    "AlwaysOffSampler",
		-1:   "AlwaysOffSampler",
		0.25: "TraceIDRatioBased{0.25}",
	}
	for ratio, want := range cases {
		assert.Contains(t, sampler(ratio).Description(), want, "ratio %v", ratio)
	}
}
