package services

import (
	"testing"
	"time"

	"github.com/expert-marketplace/backend/internal/apperr"
)

func TestValidateInterval(t *testing.T) {
	at := func(day, h, m int) time.Time {
		return time.Date(2026, 3, day, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name        string
		start       time.Time
		end         time.Time
		wantMinutes int
		wantCode    string
	}{
		{"two hours", at(10, 9, 0), at(10, 11, 0), 120, ""},
		{"one minute", at(10, 9, 0), at(10, 9, 1), 1, ""},
		{"ends at midnight", at(10, 12, 0), at(11, 0, 0), 720, ""},

		{"start equals end", at(10, 9, 0), at(10, 9, 0), 0, apperr.CodeValidation},
		{"start after end", at(10, 11, 0), at(10, 9, 0), 0, apperr.CodeValidation},
		{"crosses midnight", at(10, 23, 0), at(11, 1, 0), 0, apperr.CodeCrossesDayBoundary},
		{"sub-minute interval", at(10, 9, 0), at(10, 9, 0).Add(30 * time.Second), 0, apperr.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minutes, err := validateInterval(tt.start, tt.end)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if minutes != tt.wantMinutes {
					t.Errorf("minutes = %d, want %d", minutes, tt.wantMinutes)
				}
				return
			}
			if !apperr.Is(err, tt.wantCode) {
				t.Errorf("expected code %q, got %v", tt.wantCode, err)
			}
		})
	}
}
