package dto

import (
	"encoding/json"
	"testing"

	"github.com/expert-marketplace/backend/internal/models"
)

func TestPaymentTermsRequestTerms(t *testing.T) {
	tests := []struct {
		name  string
		model string
		body  string
		check func(t *testing.T, terms models.PaymentTerms)
	}{
		{
			"sprint", models.EngagementSprint,
			`{"sprint_rate":1000,"sprint_duration_days":14,"total_sprints":3}`,
			func(t *testing.T, terms models.PaymentTerms) {
				if terms.Sprint == nil {
					t.Fatal("Sprint variant not populated")
				}
				if terms.Sprint.SprintRate != 1000 || terms.Sprint.SprintDurationDays != 14 || terms.Sprint.TotalSprints != 3 {
					t.Errorf("sprint terms = %+v", terms.Sprint)
				}
				if terms.Sprint.CurrentSprint != 1 {
					t.Errorf("CurrentSprint = %d, want 1", terms.Sprint.CurrentSprint)
				}
			},
		},
		{
			"daily", models.EngagementDaily,
			`{"daily_rate":500,"total_days":20}`,
			func(t *testing.T, terms models.PaymentTerms) {
				if terms.Daily == nil {
					t.Fatal("Daily variant not populated")
				}
				if terms.Daily.DailyRate != 500 || terms.Daily.TotalDays != 20 {
					t.Errorf("daily terms = %+v", terms.Daily)
				}
			},
		},
		{
			"fixed", models.EngagementFixed,
			`{"total_amount":25000}`,
			func(t *testing.T, terms models.PaymentTerms) {
				if terms.Fixed == nil {
					t.Fatal("Fixed variant not populated")
				}
				if terms.Fixed.TotalAmount != 25000 {
					t.Errorf("fixed terms = %+v", terms.Fixed)
				}
			},
		},
		{
			"hourly", models.EngagementHourly,
			`{"hourly_rate":80,"estimated_hours":120}`,
			func(t *testing.T, terms models.PaymentTerms) {
				if terms.Hourly == nil {
					t.Fatal("Hourly variant not populated")
				}
				if terms.Hourly.HourlyRate != 80 || terms.Hourly.EstimatedHours != 120 {
					t.Errorf("hourly terms = %+v", terms.Hourly)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req PaymentTermsRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			terms := req.Terms(tt.model)
			tt.check(t, terms)
			if err := terms.Validate(tt.model); err != nil {
				t.Errorf("Validate(%s) = %v, want nil", tt.model, err)
			}
		})
	}
}

func TestPaymentTermsRequestWrongModel(t *testing.T) {
	var req PaymentTermsRequest
	body := `{"sprint_rate":1000,"sprint_duration_days":14,"total_sprints":3}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Sprint fields posted against a daily model leave the daily variant
	// zero-valued and must fail validation.
	terms := req.Terms(models.EngagementDaily)
	if terms.Sprint != nil {
		t.Error("sprint variant populated for a daily model")
	}
	if err := terms.Validate(models.EngagementDaily); err == nil {
		t.Error("expected validation error for mismatched fields")
	}

	if unknown := req.Terms("retainer"); unknown.Daily != nil || unknown.Sprint != nil || unknown.Fixed != nil || unknown.Hourly != nil {
		t.Error("unknown model must yield empty terms")
	}
}
