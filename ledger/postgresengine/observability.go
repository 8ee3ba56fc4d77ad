package postgresengine

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

const (
	metricOperationDuration    = "ledger_operation_duration_seconds"
	metricDatabaseErrors       = "ledger_database_errors_total"
	metricTransactionRetries   = "ledger_transaction_retries_total"
	metricTransactionRetryWait = "ledger_transaction_retry_delay_seconds"
	metricMaxRetriesReached    = "ledger_transaction_max_retries_reached_total"

	spanNamePrefix    = "ledger."
	spanAttrOperation = "operation"
	spanAttrErrorType = "error_type"
	spanAttrDuration  = "duration_ms"
	labelStatus       = "status"

	statusSuccess  = "success"
	statusRejected = "rejected"
	statusError    = "error"
)

// operationObserver records logs, metrics, and a span for one public Store operation.
type operationObserver struct {
	store     Store
	ctx       context.Context
	operation string
	start     time.Time
	span      ledger.SpanContext
}

// startOperation opens the span of an operation and starts its clock.
func (s Store) startOperation(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (context.Context, *operationObserver) {
	observer := &operationObserver{store: s, operation: operation, start: time.Now()}

	if s.tracingCollector != nil {
		spanAttrs := map[string]string{spanAttrOperation: operation}
		for k, v := range attrs {
			spanAttrs[k] = v
		}

		ctx, observer.span = s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	observer.ctx = ctx

	return ctx, observer
}

// finish classifies err and closes the operation. Business outcomes are "rejected", not "error".
func (o *operationObserver) finish(err error) {
	duration := time.Since(o.start)
	status := statusOf(err)

	o.store.recordDuration(o.ctx, metricOperationDuration, duration, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       status,
	})

	if status == statusError {
		o.store.incrementCounter(o.ctx, metricDatabaseErrors, map[string]string{
			spanAttrOperation: o.operation,
			spanAttrErrorType: errorTypeOf(err),
		})
	}

	if o.span == nil {
		return
	}

	attrs := map[string]string{spanAttrDuration: formatMilliseconds(duration)}
	if err != nil {
		attrs[spanAttrErrorType] = errorTypeOf(err)
	}

	o.store.tracingCollector.FinishSpan(o.span, status, attrs)
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case ledger.IsBusinessError(err):
		return statusRejected
	default:
		return statusError
	}
}

// errorTypeOf extracts a string representation of the error type for metrics labeling.
func errorTypeOf(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ledger.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ledger.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, ledger.ErrNotFound):
		return "not_found"
	case errors.Is(err, ledger.ErrAlreadyBorrowed):
		return "already_borrowed"
	case errors.Is(err, ledger.ErrNotBorrowedByUser):
		return "not_borrowed_by_user"
	case errors.Is(err, ledger.ErrValidation):
		return "validation"
	case errors.Is(err, ledger.ErrTransientStorage):
		return "transient"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	case errors.Is(err, ledger.ErrBuildingQueryFailed):
		return "build_query"
	case errors.Is(err, ledger.ErrScanningDBRowFailed):
		return "scan"
	case errors.Is(err, ledger.ErrQueryingFailed):
		return "query"
	case errors.Is(err, ledger.ErrWritingFailed):
		return "write"
	case errors.Is(err, ledger.ErrTransactionFailed):
		return "transaction"
	default:
		return "other"
	}
}

// logQueryWithDuration logs SQL statements with execution time at debug level if a logger is configured.
func (s Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	s.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
}

// logOperation logs operational information at info level if a logger is configured.
func (s Store) logOperation(ctx context.Context, action string, args ...any) {
	s.logInfo(ctx, logMsgOperation+action, args...)
}

// logError logs error information at the error level if a logger is configured.
func (s Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case s.logger != nil:
		s.logger.Error(message, allArgs...)
	}
}

func (s Store) logDebug(ctx context.Context, message string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.DebugContext(ctx, message, args...)
	case s.logger != nil:
		s.logger.Debug(message, args...)
	}
}

func (s Store) logInfo(ctx context.Context, message string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.InfoContext(ctx, message, args...)
	case s.logger != nil:
		s.logger.Info(message, args...)
	}
}

func (s Store) logWarn(ctx context.Context, message string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.WarnContext(ctx, message, args...)
	case s.logger != nil:
		s.logger.Warn(message, args...)
	}
}

// recordDuration records a duration with context if the collector supports it.
func (s Store) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

// incrementCounter increments a counter with context if the collector supports it.
func (s Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMilliseconds(d time.Duration) string {
	return strconv.FormatFloat(toMilliseconds(d), 'f', 3, 64)
}
