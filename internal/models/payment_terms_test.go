package models

import (
	"testing"

	"github.com/expert-marketplace/backend/internal/apperr"
)

func TestPaymentTermsValidate(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		terms   PaymentTerms
		wantErr bool
	}{
		{"valid daily", EngagementDaily, PaymentTerms{Daily: &DailyTerms{DailyRate: 500, TotalDays: 10}}, false},
		{"daily missing variant", EngagementDaily, PaymentTerms{}, true},
		{"daily zero rate", EngagementDaily, PaymentTerms{Daily: &DailyTerms{DailyRate: 0, TotalDays: 10}}, true},
		{"daily negative days", EngagementDaily, PaymentTerms{Daily: &DailyTerms{DailyRate: 500, TotalDays: -1}}, true},

		{"valid sprint", EngagementSprint, PaymentTerms{Sprint: &SprintTerms{SprintRate: 2000, SprintDurationDays: 14, TotalSprints: 4}}, false},
		{"sprint missing variant", EngagementSprint, PaymentTerms{}, true},
		{"sprint zero duration", EngagementSprint, PaymentTerms{Sprint: &SprintTerms{SprintRate: 2000, SprintDurationDays: 0, TotalSprints: 4}}, true},
		{"sprint zero total", EngagementSprint, PaymentTerms{Sprint: &SprintTerms{SprintRate: 2000, SprintDurationDays: 14, TotalSprints: 0}}, true},

		{"valid fixed", EngagementFixed, PaymentTerms{Fixed: &FixedTerms{TotalAmount: 10000}}, false},
		{"fixed missing variant", EngagementFixed, PaymentTerms{}, true},
		{"fixed zero amount", EngagementFixed, PaymentTerms{Fixed: &FixedTerms{TotalAmount: 0}}, true},

		{"valid hourly", EngagementHourly, PaymentTerms{Hourly: &HourlyTerms{HourlyRate: 80, EstimatedHours: 100}}, false},
		{"hourly missing variant", EngagementHourly, PaymentTerms{}, true},
		{"hourly zero rate", EngagementHourly, PaymentTerms{Hourly: &HourlyTerms{HourlyRate: 0, EstimatedHours: 100}}, true},
		{"hourly zero estimate", EngagementHourly, PaymentTerms{Hourly: &HourlyTerms{HourlyRate: 80, EstimatedHours: 0}}, true},

		{"unknown model", "retainer", PaymentTerms{Fixed: &FixedTerms{TotalAmount: 10000}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.terms.Validate(tt.model)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !apperr.Is(err, apperr.CodeInvalidPaymentTerms) {
					t.Errorf("expected code %q, got %v", apperr.CodeInvalidPaymentTerms, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPaymentTermsContractValue(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		terms    PaymentTerms
		expected float64
	}{
		{"daily", EngagementDaily, PaymentTerms{Daily: &DailyTerms{DailyRate: 500, TotalDays: 10}}, 5000},
		{"sprint", EngagementSprint, PaymentTerms{Sprint: &SprintTerms{SprintRate: 2000, SprintDurationDays: 14, TotalSprints: 4}}, 8000},
		{"fixed", EngagementFixed, PaymentTerms{Fixed: &FixedTerms{TotalAmount: 12500}}, 12500},
		{"hourly estimate", EngagementHourly, PaymentTerms{Hourly: &HourlyTerms{HourlyRate: 80, EstimatedHours: 100}}, 8000},
		{"missing variant", EngagementDaily, PaymentTerms{}, 0},
		{"unknown model", "retainer", PaymentTerms{Fixed: &FixedTerms{TotalAmount: 12500}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.terms.ContractValue(tt.model); got != tt.expected {
				t.Errorf("ContractValue(%q) = %v, want %v", tt.model, got, tt.expected)
			}
		})
	}
}

func TestPaymentTermsContractTotal(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		terms    PaymentTerms
		budget   float64
		expected float64
	}{
		{"computable terms win over budget", EngagementDaily, PaymentTerms{Daily: &DailyTerms{DailyRate: 500, TotalDays: 10}}, 99999, 5000},
		{"hourly estimate wins over budget", EngagementHourly, PaymentTerms{Hourly: &HourlyTerms{HourlyRate: 80, EstimatedHours: 100}}, 99999, 8000},
		{"missing variant falls back to budget", EngagementDaily, PaymentTerms{}, 7500, 7500},
		{"unknown model falls back to budget", "retainer", PaymentTerms{Fixed: &FixedTerms{TotalAmount: 12500}}, 7500, 7500},
		{"no terms and no budget", EngagementFixed, PaymentTerms{}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.terms.ContractTotal(tt.model, tt.budget); got != tt.expected {
				t.Errorf("ContractTotal(%q, %v) = %v, want %v", tt.model, tt.budget, got, tt.expected)
			}
		})
	}
}

func TestIsValidEngagementModel(t *testing.T) {
	for _, m := range []string{EngagementDaily, EngagementSprint, EngagementFixed, EngagementHourly} {
		if !IsValidEngagementModel(m) {
			t.Errorf("expected %q to be valid", m)
		}
	}
	if IsValidEngagementModel("retainer") || IsValidEngagementModel("") {
		t.Error("unknown models must be invalid")
	}
}
