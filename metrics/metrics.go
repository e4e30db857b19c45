// Package metrics provides the RuntimeProfile the kernel returns from a
// completed run (spec.md §6: "event_count, wall_time, metrics"), plus the
// time-value sample recording and running-moment accumulators the
// original implementation's stats/outvec machinery exposes
// (des/src/stats/outvec.rs, des/src/stats/mean.rs, des/src/stats/stddev.rs)
// but that spec.md itself leaves unspecified in shape.
package metrics

import (
	"math"
	"time"

	"github.com/GoCodeAlone/des/simtime"
)

// Sample is one (virtual-time, value) observation recorded into an OutVec.
type Sample struct {
	At    simtime.Time
	Value float64
}

// OutVec accumulates a named time series of samples — e.g. a channel's
// queue depth over virtual time, or per-message end-to-end latency.
// Grounded on the reference implementation's OutVec: a flat, append-only
// sample vector rather than a pre-aggregated histogram, so a consumer can
// choose its own downstream bucketing.
type OutVec struct {
	Name    string
	samples []Sample
}

// NewOutVec creates an empty named output vector.
func NewOutVec(name string) *OutVec {
	return &OutVec{Name: name}
}

// Record appends one sample.
func (o *OutVec) Record(at simtime.Time, value float64) {
	o.samples = append(o.samples, Sample{At: at, Value: value})
}

// Samples returns the recorded series in insertion order. The returned
// slice must not be mutated by the caller.
func (o *OutVec) Samples() []Sample { return o.samples }

// Mean is a running arithmetic-mean accumulator (des/src/stats/mean.rs):
// O(1) per-update, no retained sample history.
type Mean struct {
	n     int64
	total float64
}

// Push folds one more observation into the running mean.
func (m *Mean) Push(v float64) {
	m.n++
	m.total += v
}

// Value returns the current mean, or 0 if nothing has been pushed.
func (m *Mean) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.total / float64(m.n)
}

// Count returns the number of observations folded in so far.
func (m *Mean) Count() int64 { return m.n }

// StdDev is a running standard-deviation accumulator using Welford's
// online algorithm (des/src/stats/stddev.rs), avoiding the numerical
// instability of a naive sum-of-squares formulation.
type StdDev struct {
	n    int64
	mean float64
	m2   float64
}

// Push folds one more observation into the running variance estimate.
func (s *StdDev) Push(v float64) {
	s.n++
	delta := v - s.mean
	s.mean += delta / float64(s.n)
	delta2 := v - s.mean
	s.m2 += delta * delta2
}

// Value returns the current (population) standard deviation, or 0 if
// fewer than two observations have been pushed.
func (s *StdDev) Value() float64 {
	if s.n < 2 {
		return 0
	}
	variance := s.m2 / float64(s.n)
	if variance < 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// Profile is returned from a completed Runtime.Run: the normal-termination
// counterpart to RuntimeError on the failing path.
type Profile struct {
	EventCount int64
	FinalTime  simtime.Time
	WallTime   time.Duration
	Metrics    map[string]*OutVec

	// ChannelDrops counts ChannelDropBusy diagnostics per channel name,
	// the testable property from spec.md §8 ("no two messages have
	// overlapping busy intervals... Drop mode").
	ChannelDrops map[string]int64
}

// NewProfile returns a Profile with its maps initialized.
func NewProfile() *Profile {
	return &Profile{
		Metrics:      make(map[string]*OutVec),
		ChannelDrops: make(map[string]int64),
	}
}

// OutVec returns the named series, creating it on first use.
func (p *Profile) OutVec(name string) *OutVec {
	if v, ok := p.Metrics[name]; ok {
		return v
	}
	v := NewOutVec(name)
	p.Metrics[name] = v
	return v
}
