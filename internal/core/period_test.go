package core

import (
	"testing"
	"time"
)

func TestResolveWindow(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

	t.Run("monthly", func(t *testing.T) {
		start, end, err := ResolveWindow(Monthly, now)
		if err != nil {
			t.Fatalf("ResolveWindow(monthly) error: %v", err)
		}
		wantStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		if !start.Equal(wantStart) {
			t.Errorf("start = %v, want %v", start, wantStart)
		}
		if end.Month() != time.March || end.Day() != 31 {
			t.Errorf("end = %v, want last instant of March", end)
		}
		if !end.Before(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("end %v should precede April 1", end)
		}
	})

	t.Run("yearly", func(t *testing.T) {
		start, end, err := ResolveWindow(Yearly, now)
		if err != nil {
			t.Fatalf("ResolveWindow(yearly) error: %v", err)
		}
		if start.Year() != 2024 || start.Month() != time.January || start.Day() != 1 {
			t.Errorf("start = %v, want 2024-01-01", start)
		}
		if end.Year() != 2024 || end.Month() != time.December {
			t.Errorf("end = %v, want last instant of 2024", end)
		}
	})

	t.Run("unknown period", func(t *testing.T) {
		_, _, err := ResolveWindow("weekly", now)
		if err == nil {
			t.Fatal("expected error for unknown period")
		}
		if !IsValidationError(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})
}

func TestPeriodLabel(t *testing.T) {
	ts := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	if got := PeriodLabel(Monthly, ts); got != "2024-01" {
		t.Errorf("monthly label = %q, want 2024-01", got)
	}
	if got := PeriodLabel(Yearly, ts); got != "2024" {
		t.Errorf("yearly label = %q, want 2024", got)
	}
}
