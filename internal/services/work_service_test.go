package services

import (
	"testing"

	"github.com/expert-marketplace/backend/internal/apperr"
	"github.com/expert-marketplace/backend/internal/models"
)

func TestValidateUnitFields(t *testing.T) {
	amount := func(v float64) *float64 { return &v }

	tests := []struct {
		name            string
		logType         string
		checklist       []string
		requestedAmount *float64
		wantErr         bool
	}{
		{"daily log needs nothing extra", models.WorkLogTypeDailyLog, nil, nil, false},
		{"sprint with checklist", models.WorkLogTypeSprintSubmission, []string{"api endpoints", "tests"}, nil, false},
		{"sprint without checklist", models.WorkLogTypeSprintSubmission, nil, nil, true},
		{"sprint with empty checklist", models.WorkLogTypeSprintSubmission, []string{}, nil, true},
		{"milestone with amount", models.WorkLogTypeMilestoneRequest, nil, amount(1500), false},
		{"milestone without amount", models.WorkLogTypeMilestoneRequest, nil, nil, true},
		{"milestone with zero amount", models.WorkLogTypeMilestoneRequest, nil, amount(0), true},
		{"milestone with negative amount", models.WorkLogTypeMilestoneRequest, nil, amount(-100), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUnitFields(tt.logType, tt.checklist, tt.requestedAmount)
			if tt.wantErr {
				if !apperr.Is(err, apperr.CodeValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestReviewOutcome(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		approve    bool
		wantStatus string
		wantNoop   bool
		wantErr    bool
	}{
		{"approve submitted", models.WorkUnitStatusSubmitted, true, models.WorkUnitStatusApproved, false, false},
		{"reject submitted", models.WorkUnitStatusSubmitted, false, models.WorkUnitStatusRejected, false, false},
		{"re-approve approved", models.WorkUnitStatusApproved, true, models.WorkUnitStatusApproved, true, false},
		{"reject approved", models.WorkUnitStatusApproved, false, "", false, true},
		{"approve rejected", models.WorkUnitStatusRejected, true, "", false, true},
		{"reject rejected", models.WorkUnitStatusRejected, false, "", false, true},
		{"approve draft", models.WorkUnitStatusDraft, true, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, noop, err := reviewOutcome(tt.current, tt.approve)
			if tt.wantErr {
				if !apperr.Is(err, apperr.CodeInvalidStateTransition) {
					t.Errorf("expected transition error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if noop != tt.wantNoop {
				t.Errorf("noop = %v, want %v", noop, tt.wantNoop)
			}
		})
	}
}
