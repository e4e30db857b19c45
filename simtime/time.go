// Package simtime defines the virtual clock scalar used throughout the
// simulation kernel. Virtual time is unrelated to wall-clock time: it only
// ever advances when the runtime driver dequeues an event (des.Runtime).
package simtime

import (
	"fmt"
	"time"
)

// Time is a non-negative simulation timestamp with nanosecond resolution,
// represented as a count of nanoseconds since Zero (a run's clock begins at
// its configured start time, Zero by default).
// It is totally ordered and never decreases within a run (des invariant I1).
type Time int64

// Zero is the distinguished start-of-run timestamp.
const Zero Time = 0

// Max is the sentinel "never" timestamp, used as an initial value for
// "soonest deadline seen so far" comparisons and as the saturation bound
// of Add.
const Max Time = Time(1<<63 - 1)

// FromDuration converts a time.Duration to a Time, saturating at Max
// instead of overflowing.
func FromDuration(d time.Duration) Time {
	if d < 0 {
		return Zero
	}
	return Time(d)
}

// Duration converts back to a time.Duration for display and interop with
// code that measures delays in wall-clock units (latency, jitter, bitrate
// math all borrow time.Duration as their unit of real elapsed time).
func (t Time) Duration() time.Duration {
	return time.Duration(t)
}

// Add returns t+d, saturating at Max rather than overflowing. Channel
// propagation-delay and transmission-time math funnels through this so a
// pathological bitrate/jitter configuration degrades to "never arrives"
// instead of wrapping around to a negative timestamp.
func (t Time) Add(d time.Duration) Time {
	if d < 0 {
		return t.sub(Time(-d))
	}
	sum := int64(t) + int64(d)
	if sum < int64(t) || sum > int64(Max) {
		return Max
	}
	return Time(sum)
}

func (t Time) sub(d Time) Time {
	if d > t {
		return Zero
	}
	return t - d
}

// Before reports whether t is strictly earlier than u.
func (t Time) Before(u Time) bool { return t < u }

// After reports whether t is strictly later than u.
func (t Time) After(u Time) bool { return t > u }

// String renders the timestamp as fractional seconds, matching the
// reference implementation's Clock::StringMS/String rendering.
func (t Time) String() string {
	return fmt.Sprintf("%.9fs", time.Duration(t).Seconds())
}
