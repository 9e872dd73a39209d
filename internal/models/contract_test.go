package models

import "testing"

func TestIsValidContractTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{ContractStatusPending, ContractStatusActive, true},
		{ContractStatusActive, ContractStatusCompleted, true},
		{ContractStatusActive, ContractStatusPaused, true},
		{ContractStatusPaused, ContractStatusActive, true},

		// Ending a contract early
		{ContractStatusPending, ContractStatusDeclined, true},
		{ContractStatusPending, ContractStatusCancelled, true},
		{ContractStatusActive, ContractStatusCancelled, true},
		{ContractStatusPaused, ContractStatusCancelled, true},

		// Invalid transitions
		{ContractStatusPending, ContractStatusCompleted, false},
		{ContractStatusPending, ContractStatusPaused, false},
		{ContractStatusActive, ContractStatusDeclined, false},
		{ContractStatusPaused, ContractStatusCompleted, false},
		{ContractStatusCompleted, ContractStatusActive, false},
		{ContractStatusCancelled, ContractStatusActive, false},
		{ContractStatusDeclined, ContractStatusPending, false},
		{"nonexistent", ContractStatusActive, false},
		{ContractStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidContractTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidContractTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestIsTerminalContractStatus(t *testing.T) {
	terminal := []string{ContractStatusCompleted, ContractStatusCancelled, ContractStatusDeclined}
	for _, s := range terminal {
		if !IsTerminalContractStatus(s) {
			t.Errorf("expected %q to be terminal", s)
		}
	}

	open := []string{ContractStatusPending, ContractStatusActive, ContractStatusPaused}
	for _, s := range open {
		if IsTerminalContractStatus(s) {
			t.Errorf("expected %q to be non-terminal", s)
		}
	}

	if IsTerminalContractStatus("nonexistent") {
		t.Error("unknown status must not be terminal")
	}
}
