package fes_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/des/fes"
	"github.com/GoCodeAlone/des/simtime"
)

// newSets returns one instance of each FES variant under test, so every
// property below is checked against both implementations.
func newSets(t *testing.T) map[string]fes.Set {
	t.Helper()
	return map[string]fes.Set{
		"heap":     fes.NewHeap(simtime.Zero),
		"calendar": fes.NewCalendar(simtime.Zero, 8, time.Millisecond),
	}
}

func TestDequeueOrdersByDeadline(t *testing.T) {
	for name, s := range newSets(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Enqueue("c", simtime.FromDuration(30*time.Millisecond), 3))
			require.NoError(t, s.Enqueue("a", simtime.FromDuration(10*time.Millisecond), 1))
			require.NoError(t, s.Enqueue("b", simtime.FromDuration(20*time.Millisecond), 2))

			var order []string
			for s.Len() > 0 {
				n, ok := s.DequeueMin()
				require.True(t, ok)
				order = append(order, n.Payload.(string))
			}
			assert.Equal(t, []string{"a", "b", "c"}, order)
		})
	}
}

func TestSameDeadlineFIFOByCookie(t *testing.T) {
	for name, s := range newSets(t) {
		t.Run(name, func(t *testing.T) {
			at := simtime.FromDuration(5 * time.Second)
			require.NoError(t, s.Enqueue("m1", at, 1))
			require.NoError(t, s.Enqueue("m2", at, 2))

			n1, _ := s.DequeueMin()
			n2, _ := s.DequeueMin()
			assert.Equal(t, "m1", n1.Payload)
			assert.Equal(t, "m2", n2.Payload)
			assert.Equal(t, n1.Deadline, n2.Deadline)
		})
	}
}

func TestZeroDelaySelfConsistency(t *testing.T) {
	// I3: enqueuing at "now" with zero delay places it after all events
	// already queued at "now" but before any strictly-later event.
	for name, s := range newSets(t) {
		t.Run(name, func(t *testing.T) {
			now := simtime.Zero
			require.NoError(t, s.Enqueue("first-at-now", now, 1))
			require.NoError(t, s.Enqueue("later", simtime.FromDuration(time.Millisecond), 3))
			require.NoError(t, s.Enqueue("second-at-now", now, 2))

			n, _ := s.DequeueMin()
			assert.Equal(t, "first-at-now", n.Payload)
			n, _ = s.DequeueMin()
			assert.Equal(t, "second-at-now", n.Payload)
			n, _ = s.DequeueMin()
			assert.Equal(t, "later", n.Payload)
		})
	}
}

func TestEnqueueInPastIsRejected(t *testing.T) {
	for name, s := range newSets(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Enqueue("x", simtime.FromDuration(10*time.Millisecond), 1))
			_, _ = s.DequeueMin()
			err := s.Enqueue("y", simtime.Zero, 2)
			assert.ErrorIs(t, err, fes.ErrDeadlineInPast)
		})
	}
}

func TestPeekMinTimeDoesNotRemove(t *testing.T) {
	for name, s := range newSets(t) {
		t.Run(name, func(t *testing.T) {
			at := simtime.FromDuration(time.Second)
			require.NoError(t, s.Enqueue("only", at, 1))
			peeked, ok := s.PeekMinTime()
			require.True(t, ok)
			assert.Equal(t, at, peeked)
			assert.Equal(t, 1, s.Len())
		})
	}
}

func TestEmptySetReportsNoMin(t *testing.T) {
	for name, s := range newSets(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := s.PeekMinTime()
			assert.False(t, ok)
			_, ok = s.DequeueMin()
			assert.False(t, ok)
		})
	}
}

// TestCalendarWindowShift exercises the calendar queue's window-rotation
// path explicitly: more buckets of deadlines than fit in the finite window
// at construction time, forcing overflow drain on shift.
func TestCalendarWindowShift(t *testing.T) {
	c := fes.NewCalendar(simtime.Zero, 4, time.Millisecond)
	for i := 0; i < 20; i++ {
		require.NoError(t, c.Enqueue(i, simtime.FromDuration(time.Duration(i)*time.Millisecond), fes.Cookie(i)))
	}
	var order []int
	for c.Len() > 0 {
		n, ok := c.DequeueMin()
		require.True(t, ok)
		order = append(order, n.Payload.(int))
	}
	expect := make([]int, 20)
	for i := range expect {
		expect[i] = i
	}
	assert.Equal(t, expect, order)
}
