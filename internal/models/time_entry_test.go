package models

import (
	"testing"
	"time"
)

func TestCrossesDayBoundary(t *testing.T) {
	day := func(h, m int) time.Time {
		return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected bool
	}{
		{"same day morning", day(9, 0), day(12, 30), false},
		{"ends exactly at midnight", day(20, 0), time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), false},
		{"crosses midnight", day(23, 0), time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), true},
		{"spans full day", day(0, 0), time.Date(2026, 3, 12, 0, 30, 0, 0, time.UTC), true},
		{"one minute past midnight", day(23, 59), time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CrossesDayBoundary(tt.start, tt.end); got != tt.expected {
				t.Errorf("CrossesDayBoundary(%v, %v) = %v, want %v", tt.start, tt.end, got, tt.expected)
			}
		})
	}
}

func TestTimeEntryOverlaps(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
	}
	entry := &TimeEntry{StartedAt: at(10, 0), EndedAt: at(12, 0)}

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected bool
	}{
		{"fully inside", at(10, 30), at(11, 30), true},
		{"fully contains", at(9, 0), at(13, 0), true},
		{"overlaps start", at(9, 0), at(10, 30), true},
		{"overlaps end", at(11, 30), at(13, 0), true},
		{"identical", at(10, 0), at(12, 0), true},

		// Half-open intervals: touching endpoints do not overlap
		{"ends at entry start", at(9, 0), at(10, 0), false},
		{"starts at entry end", at(12, 0), at(13, 0), false},
		{"entirely before", at(7, 0), at(8, 0), false},
		{"entirely after", at(13, 0), at(14, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.Overlaps(tt.start, tt.end); got != tt.expected {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.start, tt.end, got, tt.expected)
			}
		})
	}
}
