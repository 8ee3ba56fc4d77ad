package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/lending-ledger/ledger/oteladapters"
)

func newCollector(t *testing.T) (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return oteladapters.NewTracingCollector(provider.Tracer("ledger-test")), exporter
}

func attributeValue(span tracetest.SpanStub, key string) (string, bool) {
	for _, kv := range span.Attributes {
		if kv.Key == attribute.Key(key) {
			return kv.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_When_SpanFinishes_Then_StartAndEndAttributesAreExported(t *testing.T) {
	// arrange
	collector, exporter := newCollector(t)

	// act
	_, span := collector.StartSpan(t.Context(), "ledger.borrow", map[string]string{"item_id": "i-1"})
	span.AddAttribute("user_id", "u-1")
	collector.FinishSpan(span, "success", map[string]string{"duration_ms": "1.50"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "ledger.borrow", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	for key, want := range map[string]string{"item_id": "i-1", "user_id": "u-1", "duration_ms": "1.50", "status": "success"} {
		got, ok := attributeValue(spans[0], key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status string
		want   codes.Code
	}{
		{status: "success", want: codes.Ok},
		{status: "rejected", want: codes.Ok},
		{status: "error", want: codes.Error},
		{status: "canceled", want: codes.Error},
		{status: "timeout", want: codes.Error},
		{status: "something-else", want: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			collector, exporter := newCollector(t)

			// act
			_, span := collector.StartSpan(t.Context(), "op", nil)
			collector.FinishSpan(span, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.want, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_When_SpansAreNested_Then_ChildSharesTheTrace(t *testing.T) {
	// arrange
	collector, exporter := newCollector(t)

	// act
	ctx, parent := collector.StartSpan(t.Context(), "commandhandler.handle", nil)
	_, child := collector.StartSpan(ctx, "ledger.transaction", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_FinishSpan_When_ForeignSpanContext_Then_Ignored(t *testing.T) {
	// arrange
	collector, exporter := newCollector(t)

	// act
	collector.FinishSpan(nil, "success", nil)

	// assert
	assert.Empty(t, exporter.GetSpans())
}
