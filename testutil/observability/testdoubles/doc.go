// Package testdoubles provides spies for the ledger observability interfaces:
//   - MetricsCollectorSpy captures duration, counter, and value records
//   - TracingCollectorSpy captures started and finished spans
//   - ContextualLoggerSpy captures contextual log calls per level
//
// They let tests verify instrumentation without a telemetry backend.
package testdoubles
