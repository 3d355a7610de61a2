package shared

// Clock is an abstraction over simulated time so the scheduler can be driven
// deterministically by the surrounding simulation and by tests
type Clock interface {
	Now() Time
}

// ManualClock implements Clock with a controllable time
type ManualClock struct {
	CurrentTime Time
}

// Now returns the clock's current time
func (m *ManualClock) Now() Time {
	return m.CurrentTime
}

// Advance moves the clock forward by the given duration
func (m *ManualClock) Advance(d Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// SetTime sets the clock to a specific time
func (m *ManualClock) SetTime(t Time) {
	m.CurrentTime = t
}

// NewManualClock creates a ManualClock starting at the given time
func NewManualClock(start Time) *ManualClock {
	return &ManualClock{CurrentTime: start}
}
