package promadapters_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger/ledger/promadapters"
)

func Test_MetricsCollector_IncrementCounter_When_CalledWithLabels_Then_CountsPerLabelSet(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry, promadapters.WithNamespace("ledger"))

	// act
	collector.IncrementCounter("calls_total", map[string]string{"operation": "get_user", "status": "success"})
	collector.IncrementCounter("calls_total", map[string]string{"status": "success", "operation": "get_user"})
	collector.IncrementCounterContext(t.Context(), "calls_total", map[string]string{"operation": "borrow", "status": "rejected"})

	// assert
	expected := `
# HELP ledger_calls_total Count of calls_total.
# TYPE ledger_calls_total counter
ledger_calls_total{operation="borrow",status="rejected"} 1
ledger_calls_total{operation="get_user",status="success"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "ledger_calls_total"))
}

func Test_MetricsCollector_RecordValue_Then_GaugeHoldsLastValue(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// act
	collector.RecordValue("open_loans", 3, nil)
	collector.RecordValueContext(t.Context(), "open_loans", 5, nil)

	// assert
	expected := `
# HELP open_loans Current value of open_loans.
# TYPE open_loans gauge
open_loans 5
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "open_loans"))
}

func Test_MetricsCollector_RecordDuration_When_LabelSetDiffersLater_Then_RegisteredNamesWin(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry, promadapters.WithBuckets([]float64{0.01, 0.1, 1}))

	// act
	collector.RecordDuration("op_duration_seconds", 20*time.Millisecond, map[string]string{"operation": "a"})
	collector.RecordDurationContext(t.Context(), "op_duration_seconds", time.Second,
		map[string]string{"operation": "b", "unexpected": "dropped"})

	// assert
	count, err := testutil.GatherAndCount(registry, "op_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one histogram series per operation")
}

func Test_MetricsCollector_When_TwoCollectorsShareARegistry_Then_InstrumentsAreReused(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	first := promadapters.NewMetricsCollector(registry)
	second := promadapters.NewMetricsCollector(registry)

	// act
	first.IncrementCounter("shared_total", map[string]string{"k": "v"})
	second.IncrementCounter("shared_total", map[string]string{"k": "v"})

	// assert
	expected := `
# HELP shared_total Count of shared_total.
# TYPE shared_total counter
shared_total{k="v"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "shared_total"))
}

func Test_MetricsCollector_When_UsedConcurrently_Then_NoUpdatesAreLost(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// act
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			collector.IncrementCounter("concurrent_total", map[string]string{"status": "success"})
		}()
	}

	wg.Wait()

	// assert
	expected := `
# HELP concurrent_total Count of concurrent_total.
# TYPE concurrent_total counter
concurrent_total{status="success"} 50
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "concurrent_total"))
}
