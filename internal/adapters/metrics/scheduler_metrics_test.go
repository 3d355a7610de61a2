package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/seafaring-go/internal/adapters/metrics"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

func newCollector(t *testing.T) (*metrics.SchedulerMetricsCollector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	collector := metrics.NewSchedulerMetricsCollector()
	require.NoError(t, collector.Register(reg))
	return collector, reg
}

func TestSchedulerMetrics_RecordUpdate(t *testing.T) {
	// Arrange
	collector, reg := newCollector(t)

	// Act
	collector.RecordUpdate(5, 2)
	collector.RecordUpdate(6, 1)

	// Assert
	expected := `
# HELP seafaring_scheduler_ships_idle Ships with an empty plan after the last update
# TYPE seafaring_scheduler_ships_idle gauge
seafaring_scheduler_ships_idle 1
# HELP seafaring_scheduler_ships_tracked Ships with an entry in the plan table after the last update
# TYPE seafaring_scheduler_ships_tracked gauge
seafaring_scheduler_ships_tracked 6
# HELP seafaring_scheduler_updates_total Total number of completed scheduler updates
# TYPE seafaring_scheduler_updates_total counter
seafaring_scheduler_updates_total 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"seafaring_scheduler_ships_idle",
		"seafaring_scheduler_ships_tracked",
		"seafaring_scheduler_updates_total",
	)
	assert.NoError(t, err)
}

func TestSchedulerMetrics_RecordEvent(t *testing.T) {
	// Arrange
	collector, reg := newCollector(t)

	// Act
	collector.RecordEvent(shipping.AssignmentEvent{Ship: 1, Kind: shipping.AssignIdle, Quantity: 3})
	collector.RecordEvent(shipping.AssignmentEvent{Ship: 2, Kind: shipping.AssignIdle, Quantity: 2})
	collector.RecordEvent(shipping.AssignmentEvent{Ship: 3, Kind: shipping.AssignDetour, Quantity: 1})
	collector.RecordEvent(shipping.StrandedCargoEvent{Ship: 4, Items: 7})

	// Assert
	expected := `
# HELP seafaring_scheduler_cargo_assigned_total Cargo units committed to ships, by assignment kind
# TYPE seafaring_scheduler_cargo_assigned_total counter
seafaring_scheduler_cargo_assigned_total{kind="detour"} 1
seafaring_scheduler_cargo_assigned_total{kind="idle"} 5
# HELP seafaring_scheduler_events_total Scheduling events published, by event name
# TYPE seafaring_scheduler_events_total counter
seafaring_scheduler_events_total{event="assignment"} 3
seafaring_scheduler_events_total{event="stranded_cargo"} 1
# HELP seafaring_scheduler_stranded_items_total Cargo items left in a hold with no surviving port
# TYPE seafaring_scheduler_stranded_items_total counter
seafaring_scheduler_stranded_items_total 7
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"seafaring_scheduler_cargo_assigned_total",
		"seafaring_scheduler_events_total",
		"seafaring_scheduler_stranded_items_total",
	)
	assert.NoError(t, err)
	count, err := testutil.GatherAndCount(reg, "seafaring_scheduler_assignments_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSchedulerMetrics_RecordPass(t *testing.T) {
	// Arrange
	collector, reg := newCollector(t)

	// Act
	collector.RecordPass("demand", 3*time.Millisecond)
	collector.RecordPass("rebalance", time.Millisecond)

	// Assert
	count, err := testutil.GatherAndCount(reg, "seafaring_scheduler_pass_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSchedulerMetrics_RegisterWithoutRegistryIsNoOp(t *testing.T) {
	// Arrange
	collector := metrics.NewSchedulerMetricsCollector()

	// Act
	err := collector.Register(nil)

	// Assert
	assert.NoError(t, err)
	assert.False(t, metrics.IsEnabled())
}
