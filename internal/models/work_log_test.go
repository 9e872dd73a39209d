package models

import "testing"

func TestIsValidWorkUnitTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{WorkUnitStatusDraft, WorkUnitStatusSubmitted, true},
		{WorkUnitStatusSubmitted, WorkUnitStatusApproved, true},
		{WorkUnitStatusSubmitted, WorkUnitStatusRejected, true},

		// Review outcomes are terminal
		{WorkUnitStatusApproved, WorkUnitStatusRejected, false},
		{WorkUnitStatusRejected, WorkUnitStatusSubmitted, false},
		{WorkUnitStatusApproved, WorkUnitStatusSubmitted, false},

		{WorkUnitStatusDraft, WorkUnitStatusApproved, false},
		{"nonexistent", WorkUnitStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidWorkUnitTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidWorkUnitTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestIsEditableWorkUnitStatus(t *testing.T) {
	if !IsEditableWorkUnitStatus(WorkUnitStatusDraft) || !IsEditableWorkUnitStatus(WorkUnitStatusSubmitted) {
		t.Error("draft and submitted units must be editable")
	}
	if IsEditableWorkUnitStatus(WorkUnitStatusApproved) || IsEditableWorkUnitStatus(WorkUnitStatusRejected) {
		t.Error("reviewed units must not be editable")
	}
}

func TestWorkLogTypeForModel(t *testing.T) {
	tests := []struct {
		model    string
		expected string
	}{
		{EngagementDaily, WorkLogTypeDailyLog},
		{EngagementSprint, WorkLogTypeSprintSubmission},
		{EngagementFixed, WorkLogTypeMilestoneRequest},
		{EngagementHourly, ""},
		{"nonexistent", ""},
	}

	for _, tt := range tests {
		if got := WorkLogTypeForModel(tt.model); got != tt.expected {
			t.Errorf("WorkLogTypeForModel(%q) = %q, want %q", tt.model, got, tt.expected)
		}
	}
}
