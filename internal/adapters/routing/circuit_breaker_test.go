package routing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/seafaring-go/internal/adapters/routing"
)

type fakeNow struct {
	t time.Time
}

func (f *fakeNow) now() time.Time { return f.t }

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	// Arrange
	clock := &fakeNow{t: time.Unix(0, 0)}
	cb := routing.NewCircuitBreaker(2, time.Second, clock.now)
	boom := errors.New("boom")
	calls := 0
	failing := func() error { calls++; return boom }

	// Act
	first := cb.Call(failing)
	second := cb.Call(failing)
	third := cb.Call(failing)

	// Assert
	assert.ErrorIs(t, first, boom)
	assert.ErrorIs(t, second, boom)
	assert.ErrorIs(t, third, routing.ErrCircuitOpen)
	assert.Equal(t, 2, calls)
	assert.Equal(t, routing.CircuitOpen, cb.State())
}

func TestCircuitBreaker_TrialCallAfterCooldownCloses(t *testing.T) {
	// Arrange
	clock := &fakeNow{t: time.Unix(0, 0)}
	cb := routing.NewCircuitBreaker(1, time.Second, clock.now)
	_ = cb.Call(func() error { return errors.New("down") })

	// Act
	clock.t = clock.t.Add(time.Second)
	err := cb.Call(func() error { return nil })

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, routing.CircuitClosed, cb.State())
}

func TestCircuitBreaker_FailedTrialCallReopens(t *testing.T) {
	// Arrange
	clock := &fakeNow{t: time.Unix(0, 0)}
	cb := routing.NewCircuitBreaker(3, time.Second, clock.now)
	for i := 0; i < 3; i++ {
		_ = cb.Call(func() error { return errors.New("down") })
	}

	// Act
	clock.t = clock.t.Add(2 * time.Second)
	trial := cb.Call(func() error { return errors.New("still down") })
	after := cb.Call(func() error { return nil })

	// Assert
	assert.Error(t, trial)
	assert.ErrorIs(t, after, routing.ErrCircuitOpen)
	assert.Equal(t, routing.CircuitOpen, cb.State())
}
