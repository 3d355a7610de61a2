package persistence

import (
	"context"

	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// Logger is the logging port used to report failed writes
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

// EventLog is a shipping.EventSink that appends every event to the
// schedule_events table. Write failures are logged and counted, never
// returned to the scheduler.
type EventLog struct {
	ctx      context.Context
	repo     shipping.ScheduleEventRepository
	fleet    string
	runID    string
	logger   Logger
	failures int
}

// NewEventLog creates a sink recording events for one simulation run
func NewEventLog(ctx context.Context, repo shipping.ScheduleEventRepository, fleet, runID string, logger Logger) *EventLog {
	return &EventLog{ctx: ctx, repo: repo, fleet: fleet, runID: runID, logger: logger}
}

// Publish implements shipping.EventSink
func (l *EventLog) Publish(event shipping.Event) {
	if err := l.repo.Record(l.ctx, l.fleet, l.runID, event); err != nil {
		l.failures++
		if l.logger != nil {
			l.logger.Log("ERROR", "[EventLog] Failed to record event", map[string]interface{}{
				"event": event.EventName(),
				"fleet": l.fleet,
				"error": err.Error(),
			})
		}
	}
}

// Failures returns how many events could not be recorded
func (l *EventLog) Failures() int {
	return l.failures
}
