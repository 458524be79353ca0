package udf

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostConfiguredReflectsRegistrations(t *testing.T) {
	h := NewHost(0)
	assert.False(t, h.Configured())

	h.Register(SlotAdjustMortality, func(ctx context.Context, s State) (float64, error) {
		return 1.1, nil
	})
	assert.True(t, h.Configured())

	h.Register(SlotAdjustMortality, nil)
	assert.False(t, h.Configured())
}

func TestInvokeUnregisteredSlotReturnsOne(t *testing.T) {
	h := NewHost(0)
	var stats Stats
	m := h.Invoke(context.Background(), SlotAdjustLapse, State{Year: 1}, &stats)
	assert.Equal(t, 1.0, m)
	assert.Equal(t, 0, stats.CallCount)
}

func TestInvokeSuccessReturnsMultiplierAndUpdatesStats(t *testing.T) {
	h := NewHost(0)
	h.Register(SlotAdjustMortality, func(ctx context.Context, s State) (float64, error) {
		return 1.25, nil
	})

	var stats Stats
	m := h.Invoke(context.Background(), SlotAdjustMortality, State{Year: 3, Lives: 0.9}, &stats)
	assert.Equal(t, 1.25, m)
	assert.Equal(t, 1, stats.CallCount)
	assert.Equal(t, 0, stats.FailureCount)
}

func TestInvokeErrorIsIsolated(t *testing.T) {
	h := NewHost(0)
	h.Register(SlotAdjustLapse, func(ctx context.Context, s State) (float64, error) {
		return 0, errors.New("boom")
	})

	var stats Stats
	m := h.Invoke(context.Background(), SlotAdjustLapse, State{}, &stats)
	assert.Equal(t, 1.0, m)
	assert.Equal(t, 1, stats.CallCount)
	assert.Equal(t, 1, stats.FailureCount)
}

func TestInvokeNegativeMultiplierIsTreatedAsFailure(t *testing.T) {
	h := NewHost(0)
	h.Register(SlotAdjustMortality, func(ctx context.Context, s State) (float64, error) {
		return -0.5, nil
	})

	var stats Stats
	m := h.Invoke(context.Background(), SlotAdjustMortality, State{}, &stats)
	assert.Equal(t, 1.0, m)
	assert.Equal(t, 1, stats.FailureCount)
}

func TestInvokeTimeoutFallsBackToOne(t *testing.T) {
	h := NewHost(10 * time.Millisecond)
	h.Register(SlotAdjustMortality, func(ctx context.Context, s State) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	var stats Stats
	start := time.Now()
	m := h.Invoke(context.Background(), SlotAdjustMortality, State{}, &stats)
	elapsed := time.Since(start)

	assert.Equal(t, 1.0, m)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Less(t, elapsed, 200*time.Millisecond)
}

func TestInvokePanicIsIsolated(t *testing.T) {
	h := NewHost(0)
	h.Register(SlotAdjustLapse, func(ctx context.Context, s State) (float64, error) {
		panic("unexpected")
	})

	var stats Stats
	m := h.Invoke(context.Background(), SlotAdjustLapse, State{}, &stats)
	assert.Equal(t, 1.0, m)
	assert.Equal(t, 1, stats.FailureCount)
}

func TestNewHostDefaultsTimeout(t *testing.T) {
	h := NewHost(0)
	require.Equal(t, DefaultTimeout, h.timeout)
}
