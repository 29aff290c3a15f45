package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/registry"
)

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	clk := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := registry.NewCircuitBreaker(clk, 3, 2, time.Minute)

	for range 2 {
		assert.True(t, cb.Allow())
		cb.RecordFailure()
	}
	assert.Equal(t, registry.CircuitClosed, cb.State())

	cb.RecordSuccess()
	for range 3 {
		cb.RecordFailure()
	}
	assert.Equal(t, registry.CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	clk.Advance(time.Minute)
	assert.Equal(t, registry.CircuitHalfOpen, cb.State())
	assert.True(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, registry.CircuitOpen, cb.State())

	clk.Advance(time.Minute)
	assert.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, registry.CircuitHalfOpen, cb.State())
	cb.RecordSuccess()
	assert.Equal(t, registry.CircuitClosed, cb.State())

	cb.RecordFailure()
	cb.Reset()
	assert.Equal(t, registry.CircuitClosed, cb.State())
	assert.Equal(t, "half-open", registry.CircuitHalfOpen.String())
}

func TestCircuitBreaker_Defaults(t *testing.T) {
	t.Parallel()

	cb := registry.NewCircuitBreaker(nil, 0, 0, 0)
	for range 4 {
		cb.RecordFailure()
	}
	assert.True(t, cb.Allow())
	cb.RecordFailure()
	assert.False(t, cb.Allow())
}
