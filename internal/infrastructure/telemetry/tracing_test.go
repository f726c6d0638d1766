package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value.Emit()
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartSpan(context.Background(), "reconcile.sync_orders",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, uuid.Nil),
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, 3),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "reconcile.sync_orders", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, uuid.Nil.String(), attrs[telemetry.SpanAttrTenantID])
	assert.Equal(t, "3", attrs[telemetry.SpanAttrItemCount])
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "quote", "resolve")
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, "quote.resolve", sr.Ended()[0].Name())
}

func TestStartClientSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartClientSpan(context.Background(), "bling", "GET", "/pedidos/vendas")
	telemetry.SetAttributes(span, telemetry.SpanAttrHTTPStatus, 200, 42, "ignored")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "bling", attrs[telemetry.SpanAttrProvider])
	assert.Equal(t, "200", attrs[telemetry.SpanAttrHTTPStatus])
	assert.Equal(t, "/pedidos/vendas", attrs[telemetry.SpanAttrHTTPPath])
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "failing")
	telemetry.RecordError(span, errors.New("boom"))
	telemetry.RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}
