package simtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/des/simtime"
)

func TestZeroAndMaxOrdering(t *testing.T) {
	require.True(t, simtime.Zero.Before(simtime.Max))
	require.False(t, simtime.Max.Before(simtime.Zero))
}

func TestAddSaturatesAtMax(t *testing.T) {
	got := simtime.Max.Add(time.Second)
	assert.Equal(t, simtime.Max, got)
}

func TestAddNegativeDurationClampsAtZero(t *testing.T) {
	got := simtime.Zero.Add(-time.Second)
	assert.Equal(t, simtime.Zero, got)
}

func TestAddOrdinary(t *testing.T) {
	got := simtime.Zero.Add(80 * time.Millisecond).Add(time.Millisecond)
	assert.Equal(t, simtime.FromDuration(81*time.Millisecond), got)
}

func TestFromDurationRejectsNegative(t *testing.T) {
	assert.Equal(t, simtime.Zero, simtime.FromDuration(-5))
}
