package des

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/GoCodeAlone/des/simtime"
	"github.com/golobby/cast"
)

func simtimeFromSeconds(secs float64) simtime.Time {
	return simtime.FromDuration(time.Duration(secs * float64(time.Second)))
}

// Config mirrors the Builder options documented in spec.md §6, loadable
// from a `[runtime]` TOML table (the teacher's configFeeders.go idiom of
// reading a file-backed section into a typed struct, SPEC_FULL.md §1.3).
// Every field is a pointer/zero-value-means-unset so LoadConfig only
// overrides what the file actually specifies, letting CLI flags layer on
// top of it in cmd/desrun.
type Config struct {
	Runtime RuntimeConfig `toml:"runtime"`
}

// RuntimeConfig holds the raw TOML scalars before coercion into Builder
// Option values. Fields are loosely typed (any) because TOML authors
// write numbers as either ints or floats; golobby/cast normalises them
// into the strict types Builder expects.
// Every time value, cqueue_bucket_timespan included, is a number of
// seconds; unit-suffixed strings such as "2.5ms" are not accepted.
type RuntimeConfig struct {
	Seed                  any    `toml:"seed"`
	MaxIterations         any    `toml:"max_itr"`
	MaxTimeSeconds        any    `toml:"max_time_seconds"`
	StartTimeSeconds      any    `toml:"start_time_seconds"`
	Quiet                 any    `toml:"quiet"`
	FESVariant            string `toml:"fes_variant"` // "heap" (default) or "calendar"
	CalendarQueueBuckets  any    `toml:"cqueue_num_buckets"`
	CalendarQueueTimespan any    `toml:"cqueue_bucket_timespan"`
}

// LoadConfig reads path as TOML and returns the Option values it
// describes, ready to be passed to NewRuntime alongside (and overridden
// by) any CLI-sourced options.
func LoadConfig(path string) ([]Option, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("des: load config %s: %w", path, err)
	}
	return cfg.Runtime.toOptions()
}

func (rc RuntimeConfig) toOptions() ([]Option, error) {
	var opts []Option

	if rc.Seed != nil {
		seed, err := cast.ToUint64(rc.Seed)
		if err != nil {
			return nil, fmt.Errorf("des: config seed: %w", err)
		}
		opts = append(opts, WithSeed(seed))
	}
	if rc.MaxIterations != nil {
		n, err := cast.ToInt64(rc.MaxIterations)
		if err != nil {
			return nil, fmt.Errorf("des: config max_itr: %w", err)
		}
		opts = append(opts, WithMaxIterations(n))
	}
	if rc.MaxTimeSeconds != nil {
		secs, err := cast.ToFloat64(rc.MaxTimeSeconds)
		if err != nil {
			return nil, fmt.Errorf("des: config max_time_seconds: %w", err)
		}
		opts = append(opts, WithMaxTime(simtimeFromSeconds(secs)))
	}
	if rc.StartTimeSeconds != nil {
		secs, err := cast.ToFloat64(rc.StartTimeSeconds)
		if err != nil {
			return nil, fmt.Errorf("des: config start_time_seconds: %w", err)
		}
		opts = append(opts, WithStartTime(simtimeFromSeconds(secs)))
	}
	if rc.Quiet != nil {
		q, err := cast.ToBool(rc.Quiet)
		if err != nil {
			return nil, fmt.Errorf("des: config quiet: %w", err)
		}
		opts = append(opts, WithQuiet(q))
	}
	switch rc.FESVariant {
	case "", "heap":
	case "calendar":
		opts = append(opts, WithFESVariant(VariantCalendar))
	default:
		return nil, fmt.Errorf("des: config fes_variant: unknown value %q", rc.FESVariant)
	}
	if rc.CalendarQueueBuckets != nil {
		n, err := cast.ToInt(rc.CalendarQueueBuckets)
		if err != nil {
			return nil, fmt.Errorf("des: config cqueue_num_buckets: %w", err)
		}
		opts = append(opts, WithCalendarQueueBuckets(n))
	}
	if rc.CalendarQueueTimespan != nil {
		secs, err := cast.ToFloat64(rc.CalendarQueueTimespan)
		if err != nil {
			return nil, fmt.Errorf("des: config cqueue_bucket_timespan: %w", err)
		}
		opts = append(opts, WithCalendarQueueTimespan(time.Duration(secs*float64(time.Second))))
	}
	return opts, nil
}
