package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// SchedulerMetricsCollector records scheduler pass timings, table sizes and
// published events. It implements shipping.MetricsRecorder.
type SchedulerMetricsCollector struct {
	updatesTotal     prometheus.Counter
	passDuration     *prometheus.HistogramVec
	shipsTracked     prometheus.Gauge
	shipsIdle        prometheus.Gauge
	eventsTotal      *prometheus.CounterVec
	assignmentsTotal *prometheus.CounterVec
	cargoAssigned    *prometheus.CounterVec
	strandedItems    prometheus.Counter
	expeditionItems  prometheus.Counter
}

// NewSchedulerMetricsCollector creates a new scheduler metrics collector
func NewSchedulerMetricsCollector() *SchedulerMetricsCollector {
	return &SchedulerMetricsCollector{
		updatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "updates_total",
				Help:      "Total number of completed scheduler updates",
			},
		),

		passDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pass_duration_seconds",
				Help:      "Wall-clock duration of each scheduler pass",
				Buckets:   []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"pass"},
		),

		shipsTracked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ships_tracked",
				Help:      "Ships with an entry in the plan table after the last update",
			},
		),

		shipsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ships_idle",
				Help:      "Ships with an empty plan after the last update",
			},
		),

		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_total",
				Help:      "Scheduling events published, by event name",
			},
			[]string{"event"},
		),

		assignmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "assignments_total",
				Help:      "Work assignments handed to ships, by assignment kind",
			},
			[]string{"kind"},
		),

		cargoAssigned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cargo_assigned_total",
				Help:      "Cargo units committed to ships, by assignment kind",
			},
			[]string{"kind"},
		),

		strandedItems: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stranded_items_total",
				Help:      "Cargo items left in a hold with no surviving port",
			},
		),

		expeditionItems: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "expedition_items_total",
				Help:      "Cargo items carried away by launched expeditions",
			},
		),
	}
}

// Register registers all scheduler metrics with reg, or with the global
// registry when reg is nil
func (c *SchedulerMetricsCollector) Register(reg prometheus.Registerer) error {
	if reg == nil {
		if Registry == nil {
			return nil // Metrics not enabled
		}
		reg = Registry
	}

	metrics := []prometheus.Collector{
		c.updatesTotal,
		c.passDuration,
		c.shipsTracked,
		c.shipsIdle,
		c.eventsTotal,
		c.assignmentsTotal,
		c.cargoAssigned,
		c.strandedItems,
		c.expeditionItems,
	}

	for _, metric := range metrics {
		if err := reg.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordPass records the duration of one scheduler pass
func (c *SchedulerMetricsCollector) RecordPass(pass string, elapsed time.Duration) {
	c.passDuration.WithLabelValues(pass).Observe(elapsed.Seconds())
}

// RecordUpdate records the table size at the end of an update
func (c *SchedulerMetricsCollector) RecordUpdate(plans, idle int) {
	c.updatesTotal.Inc()
	c.shipsTracked.Set(float64(plans))
	c.shipsIdle.Set(float64(idle))
}

// RecordEvent counts a published scheduling event
func (c *SchedulerMetricsCollector) RecordEvent(event shipping.Event) {
	c.eventsTotal.WithLabelValues(event.EventName()).Inc()

	switch e := event.(type) {
	case shipping.AssignmentEvent:
		c.assignmentsTotal.WithLabelValues(string(e.Kind)).Inc()
		c.cargoAssigned.WithLabelValues(string(e.Kind)).Add(float64(e.Quantity))
	case shipping.StrandedCargoEvent:
		c.strandedItems.Add(float64(e.Items))
	case shipping.ExpeditionLaunchedEvent:
		c.expeditionItems.Add(float64(e.Items))
	}
}
