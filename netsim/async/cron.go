package async

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/GoCodeAlone/des"
	"github.com/GoCodeAlone/des/netsim"
)

// CronSource turns a standard five-field cron expression into a recurring
// virtual-time timer (SPEC_FULL.md §2: cron.Schedule.Next driving
// schedule_at the way the teacher's scheduler module drives wall-clock
// jobs). It has no goroutine of its own; a module re-arms it from its own
// message handler each time the recurring message fires, the same
// self-rescheduling shape as spec.md §8's max-time termination scenario.
type CronSource struct {
	schedule cron.Schedule
	epoch    time.Time
	kind     netsim.MessageKind
}

// NewCronSource parses expr as a standard cron expression ("* * * * *",
// optionally with a seconds field via "@every" style descriptors — see
// cron.ParseStandard). epoch anchors simtime.Zero to a wall-clock instant
// so the cron library's calendar arithmetic (day-of-week, month boundaries)
// has something concrete to operate on; callers that don't care about
// calendar alignment can pass any fixed reference time.
func NewCronSource(expr string, epoch time.Time, kind netsim.MessageKind) (*CronSource, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("async: parse cron expression %q: %w", expr, err)
	}
	return &CronSource{schedule: schedule, epoch: epoch, kind: kind}, nil
}

// ScheduleNext enqueues the source's own message at the next time the cron
// schedule fires, measured from rt.Clock(). Call it once from AtSimStart to
// seed the first tick, then again from the message handler each time the
// tick fires to keep the timer recurring.
func (c *CronSource) ScheduleNext(rt *des.Runtime) error {
	now := c.epoch.Add(rt.Clock().Duration())
	next := c.schedule.Next(now)
	delay := next.Sub(now)
	msg := netsim.NewMessage(c.kind, nil, 0, rt.Clock())
	return netsim.ScheduleAt(rt, msg, rt.Clock().Add(delay))
}
