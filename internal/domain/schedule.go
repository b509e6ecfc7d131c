package domain

import (
	"fmt"
	"strings"
)

// ScheduleInterval represents the recurrence of a job.
// Values include IntervalOnce, IntervalDaily, and IntervalWeekly.
type ScheduleInterval string

const (
	IntervalOnce   ScheduleInterval = "once"
	IntervalDaily  ScheduleInterval = "daily"
	IntervalWeekly ScheduleInterval = "weekly"
)

// NormalizeInterval maps a raw interval label to a canonical value.
// Unknown or empty input yields IntervalOnce.
func NormalizeInterval(raw string) ScheduleInterval {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "daily":
		return IntervalDaily
	case "weekly":
		return IntervalWeekly
	default:
		return IntervalOnce
	}
}

// Schedule is the recurrence configuration attached to a Job. Time is a
// 24-hour "HH:MM" string interpreted as UTC; no timezone conversion
// happens anywhere in this core. Time is required unless the interval is
// IntervalOnce.
type Schedule struct {
	Interval ScheduleInterval `json:"interval"`
	Time     string           `json:"time,omitempty"`
}

// Validate checks the schedule before it is sent to the worker.
// Returns:
//   - error: ErrInvalidSchedule (wrapped) when a recurring interval is
//     missing a well-formed time; nil otherwise.
func (s Schedule) Validate() error {
	switch s.Interval {
	case IntervalOnce:
		if s.Time != "" && !validClockTime(s.Time) {
			return fmt.Errorf("%w: malformed time %q", ErrInvalidSchedule, s.Time)
		}
		return nil
	case IntervalDaily, IntervalWeekly:
		if s.Time == "" {
			return fmt.Errorf("%w: %s schedule requires a time", ErrInvalidSchedule, s.Interval)
		}
		if !validClockTime(s.Time) {
			return fmt.Errorf("%w: malformed time %q", ErrInvalidSchedule, s.Time)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown interval %q", ErrInvalidSchedule, s.Interval)
	}
}

// String formats the schedule for display.
func (s Schedule) String() string {
	switch s.Interval {
	case IntervalDaily:
		return "Daily " + s.Time + " UTC"
	case IntervalWeekly:
		return "Weekly " + s.Time + " UTC"
	default:
		if s.Time == "" {
			return "Manual"
		}
		return "Once at " + s.Time + " UTC"
	}
}

// validClockTime reports whether t is a well-formed 24-hour "HH:MM"
// string.
func validClockTime(t string) bool {
	if len(t) != 5 || t[2] != ':' {
		return false
	}
	hh, ok1 := twoDigits(t[0], t[1])
	mm, ok2 := twoDigits(t[3], t[4])
	return ok1 && ok2 && hh < 24 && mm < 60
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
