package oteladapters_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-ledger/ledger/oteladapters"
)

func Test_SlogBridgeLogger_WithHandler_Then_WritesAllLevelsWithAttributes(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// act
	logger.DebugContext(t.Context(), "debug message", "operation", "borrow")
	logger.InfoContext(t.Context(), "info message")
	logger.WarnContext(t.Context(), "warn message")
	logger.ErrorContext(t.Context(), "error message", "error", "boom")

	// assert
	out := buf.String()
	assert.Contains(t, out, `level=DEBUG msg="debug message" operation=borrow`)
	assert.Contains(t, out, `level=INFO msg="info message"`)
	assert.Contains(t, out, `level=WARN msg="warn message"`)
	assert.Contains(t, out, `level=ERROR msg="error message" error=boom`)
}

func Test_NewSlogBridgeLogger_Then_UsesGlobalProviderWithoutPanicking(t *testing.T) {
	// arrange
	logger := oteladapters.NewSlogBridgeLogger("ledger-test")

	// act + assert
	assert.NotPanics(t, func() {
		logger.InfoContext(t.Context(), "goes to the no-op global provider")
	})
}
