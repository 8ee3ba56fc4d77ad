package observable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger/app/shared/shell"
	"github.com/AntonStoeckl/lending-ledger/app/shared/shell/observable"
	"github.com/AntonStoeckl/lending-ledger/ledger"
	"github.com/AntonStoeckl/lending-ledger/testutil/observability/testdoubles"
)

type testCommand struct{ Name string }

func (testCommand) CommandType() string { return "TestCommand" }

func handlerReturning(result string, err error) shell.CommandHandlerFunc[testCommand, string] {
	return func(_ context.Context, _ testCommand) (string, error) {
		return result, err
	}
}

func Test_CommandWrapper_Handle_When_Successful_Then_RecordsSuccess(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()

	wrapper, err := observable.NewCommandWrapper[testCommand, string](
		handlerReturning("created", nil),
		observable.WithCommandMetrics[testCommand, string](metrics),
		observable.WithCommandTracing[testCommand, string](tracing),
		observable.WithCommandContextualLogging[testCommand, string](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(t.Context(), testCommand{Name: "x"})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "created", result)

	labels := map[string]string{shell.LogAttrCommandType: "TestCommand", shell.LogAttrStatus: shell.StatusSuccess}
	assert.True(t, metrics.HasDuration(shell.CommandHandlerDurationMetric, labels))
	assert.True(t, metrics.HasCounter(shell.CommandHandlerCallsMetric, labels))
	assert.False(t, metrics.HasCounter(shell.CommandHandlerRejectedMetric, nil))

	spans := tracing.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, shell.SpanNameCommandHandle, spans[0].Name)
	assert.Equal(t, shell.StatusSuccess, spans[0].Status)
	assert.True(t, spans[0].Finished)

	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandStarted))
	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandCompleted))
}

func Test_CommandWrapper_Handle_When_BusinessRuleRejects_Then_RecordsRejectedAndLogsInfo(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()

	wrapper, err := observable.NewCommandWrapper[testCommand, string](
		handlerReturning("", ledger.ErrAlreadyBorrowed),
		observable.WithCommandMetrics[testCommand, string](metrics),
		observable.WithCommandContextualLogging[testCommand, string](logger),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(t.Context(), testCommand{})

	// assert
	assert.ErrorIs(t, err, ledger.ErrAlreadyBorrowed, "errors pass through unchanged")
	assert.True(t, metrics.HasCounter(shell.CommandHandlerRejectedMetric,
		map[string]string{shell.LogAttrCommandType: "TestCommand"}))

	record, found := logger.Find("info", shell.LogMsgCommandRejected)
	require.True(t, found)
	reason, _ := record.Arg(shell.LogAttrReason)
	assert.Equal(t, ledger.ErrAlreadyBorrowed.Error(), reason)
	assert.False(t, logger.HasErrorLog(shell.LogMsgCommandFailed))
}

func Test_CommandWrapper_Handle_When_InfrastructureFails_Then_RecordsErrorAndLogsError(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()
	failure := errors.Join(ledger.ErrQueryingFailed, errors.New("connection reset"))

	wrapper, err := observable.NewCommandWrapper[testCommand, string](
		handlerReturning("", failure),
		observable.WithCommandMetrics[testCommand, string](metrics),
		observable.WithCommandTracing[testCommand, string](tracing),
		observable.WithCommandLogging[testCommand, string](logger),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(t.Context(), testCommand{})

	// assert
	assert.ErrorIs(t, err, ledger.ErrQueryingFailed)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerCallsMetric,
		map[string]string{shell.LogAttrStatus: shell.StatusError}))
	assert.Equal(t, failure.Error(), tracing.Spans()[0].EndAttributes[shell.LogAttrError])
	assert.True(t, logger.HasErrorLog(shell.LogMsgCommandFailed))
}

func Test_CommandWrapper_Handle_When_ContextCanceled_Then_RecordsCanceled(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()

	wrapper, err := observable.NewCommandWrapper[testCommand, string](
		handlerReturning("", errors.Join(ledger.ErrTransactionFailed, context.Canceled)),
		observable.WithCommandMetrics[testCommand, string](metrics),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(t.Context(), testCommand{})

	// assert
	assert.Error(t, err)
	assert.True(t, metrics.HasDuration(shell.CommandHandlerDurationMetric,
		map[string]string{shell.LogAttrStatus: shell.StatusCanceled}))
}

func Test_CommandWrapper_Handle_When_NoCollectorsConfigured_Then_OnlyDelegates(t *testing.T) {
	// arrange
	wrapper, err := observable.NewCommandWrapper[testCommand, string](handlerReturning("ok", nil))
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(t.Context(), testCommand{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func Test_NewCommandWrapper_When_OptionFails_Then_ReturnsError(t *testing.T) {
	// arrange
	optionErr := errors.New("bad option")
	failing := func(*observable.CommandWrapper[testCommand, string]) error { return optionErr }

	// act
	wrapper, err := observable.NewCommandWrapper[testCommand, string](handlerReturning("", nil), failing)

	// assert
	assert.ErrorIs(t, err, optionErr)
	assert.Nil(t, wrapper)
}
