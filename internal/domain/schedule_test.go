package domain

import (
	"errors"
	"testing"
)

func TestScheduleValidate(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		wantErr  bool
	}{
		{name: "once without time", schedule: Schedule{Interval: IntervalOnce}, wantErr: false},
		{name: "once with valid time", schedule: Schedule{Interval: IntervalOnce, Time: "09:30"}, wantErr: false},
		{name: "once with malformed time", schedule: Schedule{Interval: IntervalOnce, Time: "9:30"}, wantErr: true},
		{name: "daily with time", schedule: Schedule{Interval: IntervalDaily, Time: "00:00"}, wantErr: false},
		{name: "daily without time", schedule: Schedule{Interval: IntervalDaily}, wantErr: true},
		{name: "weekly with time", schedule: Schedule{Interval: IntervalWeekly, Time: "23:59"}, wantErr: false},
		{name: "weekly without time", schedule: Schedule{Interval: IntervalWeekly}, wantErr: true},
		{name: "hour out of range", schedule: Schedule{Interval: IntervalDaily, Time: "24:00"}, wantErr: true},
		{name: "minute out of range", schedule: Schedule{Interval: IntervalDaily, Time: "12:60"}, wantErr: true},
		{name: "missing colon", schedule: Schedule{Interval: IntervalDaily, Time: "12-30"}, wantErr: true},
		{name: "non numeric", schedule: Schedule{Interval: IntervalWeekly, Time: "ab:cd"}, wantErr: true},
		{name: "unknown interval", schedule: Schedule{Interval: "hourly", Time: "12:00"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate(%+v) = nil, want error", tt.schedule)
				}
				if !errors.Is(err, ErrInvalidSchedule) {
					t.Errorf("Validate(%+v) error = %v, want ErrInvalidSchedule", tt.schedule, err)
				}
			} else if err != nil {
				t.Errorf("Validate(%+v) = %v, want nil", tt.schedule, err)
			}
		})
	}
}

func TestNormalizeInterval(t *testing.T) {
	tests := []struct {
		raw      string
		expected ScheduleInterval
	}{
		{raw: "daily", expected: IntervalDaily},
		{raw: " Weekly ", expected: IntervalWeekly},
		{raw: "once", expected: IntervalOnce},
		{raw: "", expected: IntervalOnce},
		{raw: "hourly", expected: IntervalOnce},
	}

	for _, tt := range tests {
		if got := NormalizeInterval(tt.raw); got != tt.expected {
			t.Errorf("NormalizeInterval(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}

func TestScheduleString(t *testing.T) {
	tests := []struct {
		schedule Schedule
		expected string
	}{
		{schedule: Schedule{Interval: IntervalOnce}, expected: "Manual"},
		{schedule: Schedule{Interval: IntervalOnce, Time: "08:00"}, expected: "Once at 08:00 UTC"},
		{schedule: Schedule{Interval: IntervalDaily, Time: "14:30"}, expected: "Daily 14:30 UTC"},
		{schedule: Schedule{Interval: IntervalWeekly, Time: "06:15"}, expected: "Weekly 06:15 UTC"},
	}

	for _, tt := range tests {
		if got := tt.schedule.String(); got != tt.expected {
			t.Errorf("String(%+v) = %q, want %q", tt.schedule, got, tt.expected)
		}
	}
}
