package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// SpySpan is the span handed out by TracingCollectorSpy.
type SpySpan struct {
	Name            string
	StartAttributes map[string]string
	EndAttributes   map[string]string
	Status          string
	StatusChanges   int
	Finished        bool
	mu              sync.Mutex
}

// SetStatus implements ledger.SpanContext.
func (s *SpySpan) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = status
	s.StatusChanges++
}

// AddAttribute implements ledger.SpanContext.
func (s *SpySpan) AddAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.EndAttributes == nil {
		s.EndAttributes = make(map[string]string)
	}

	s.EndAttributes[key] = value
}

// TracingCollectorSpy captures spans. It implements ledger.TracingCollector.
type TracingCollectorSpy struct {
	spans []*SpySpan
	mu    sync.Mutex
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan implements ledger.TracingCollector.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, ledger.SpanContext) {
	span := &SpySpan{Name: name, StartAttributes: maps.Clone(attrs)}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans = append(s.spans, span)

	return ctx, span
}

// FinishSpan implements ledger.TracingCollector.
func (s *TracingCollectorSpy) FinishSpan(spanCtx ledger.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpan)
	if !ok {
		return
	}

	span.SetStatus(status)
	for k, v := range attrs {
		span.AddAttribute(k, v)
	}

	span.mu.Lock()
	span.Finished = true
	span.mu.Unlock()
}

// Spans returns all spans started so far.
func (s *TracingCollectorSpy) Spans() []*SpySpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*SpySpan(nil), s.spans...)
}

var _ ledger.TracingCollector = (*TracingCollectorSpy)(nil)
