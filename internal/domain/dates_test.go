package domain

import (
	"testing"
	"time"
)

func TestDayOfNormalizesToMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 20:30 UTC on Jan 1 is already Jan 2 in Kolkata.
	instant := time.Date(2024, 1, 1, 20, 30, 0, 0, time.UTC)
	got := DayOf(instant, loc)
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWholeDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			name: "ten whole days",
			from: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC),
			want: 10,
		},
		{
			name: "same day regardless of time",
			from: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 2, 1, 23, 59, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "calendar days not elapsed hours",
			from: time.Date(2024, 2, 1, 23, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 2, 2, 1, 0, 0, 0, time.UTC),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WholeDaysBetween(tt.from, tt.to, time.UTC)
			if got != tt.want {
				t.Fatalf("expected %d days, got %d", tt.want, got)
			}
		})
	}
}

func TestAddMonthsUsesCalendarArithmetic(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := AddMonths(start, 3)
	want := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestOpenPause(t *testing.T) {
	closed := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	sub := Subscription{
		Pauses: []PauseInterval{
			{StartDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), EndDate: &closed},
			{StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	open := sub.OpenPause()
	if open == nil {
		t.Fatal("expected an open pause interval")
	}
	if !open.StartDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected open pause start: %v", open.StartDate)
	}

	sub.Pauses = sub.Pauses[:1]
	if sub.OpenPause() != nil {
		t.Fatal("expected no open pause interval")
	}
}
