package models

import (
	"testing"

	"github.com/expert-marketplace/backend/internal/apperr"
)

func f64(v float64) *float64 { return &v }

func TestDeriveTimeEntryAmount(t *testing.T) {
	hourly := PaymentTerms{Hourly: &HourlyTerms{HourlyRate: 90, EstimatedHours: 100}}

	tests := []struct {
		name     string
		entry    TimeEntry
		terms    PaymentTerms
		expected float64
	}{
		{"precomputed amount wins", TimeEntry{Minutes: 60, Amount: f64(123.45)}, hourly, 123.45},
		{"full hour", TimeEntry{Minutes: 60}, hourly, 90},
		{"half hour", TimeEntry{Minutes: 30}, hourly, 45},
		{"zero precomputed falls through", TimeEntry{Minutes: 120, Amount: f64(0)}, hourly, 180},
		{"no hourly terms", TimeEntry{Minutes: 60}, PaymentTerms{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTimeEntryAmount(&tt.entry, tt.terms); got != tt.expected {
				t.Errorf("DeriveTimeEntryAmount = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDeriveWorkLogInvoice(t *testing.T) {
	daily := PaymentTerms{Daily: &DailyTerms{DailyRate: 400, TotalDays: 20}}
	sprint := PaymentTerms{Sprint: &SprintTerms{SprintRate: 3000, SprintDurationDays: 14, TotalSprints: 3}}

	t.Run("daily log bills the daily rate", func(t *testing.T) {
		typ, amount, err := DeriveWorkLogInvoice(&WorkLog{LogType: WorkLogTypeDailyLog}, daily, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if typ != InvoiceTypePeriodic || amount != 400 {
			t.Errorf("got (%q, %v), want (%q, 400)", typ, amount, InvoiceTypePeriodic)
		}
	})

	t.Run("sprint submission bills the sprint rate", func(t *testing.T) {
		typ, amount, err := DeriveWorkLogInvoice(&WorkLog{LogType: WorkLogTypeSprintSubmission}, sprint, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if typ != InvoiceTypeSprint || amount != 3000 {
			t.Errorf("got (%q, %v), want (%q, 3000)", typ, amount, InvoiceTypeSprint)
		}
	})

	t.Run("milestone prefers the approved amount", func(t *testing.T) {
		log := &WorkLog{LogType: WorkLogTypeMilestoneRequest, RequestedAmount: f64(5000)}
		typ, amount, err := DeriveWorkLogInvoice(log, PaymentTerms{}, f64(4200))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if typ != InvoiceTypeMilestone || amount != 4200 {
			t.Errorf("got (%q, %v), want (%q, 4200)", typ, amount, InvoiceTypeMilestone)
		}
	})

	t.Run("milestone falls back to the requested amount", func(t *testing.T) {
		log := &WorkLog{LogType: WorkLogTypeMilestoneRequest, RequestedAmount: f64(5000)}
		_, amount, err := DeriveWorkLogInvoice(log, PaymentTerms{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if amount != 5000 {
			t.Errorf("amount = %v, want 5000", amount)
		}
	})

	t.Run("milestone without any amount fails", func(t *testing.T) {
		_, _, err := DeriveWorkLogInvoice(&WorkLog{LogType: WorkLogTypeMilestoneRequest}, PaymentTerms{}, nil)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("daily log without daily terms fails", func(t *testing.T) {
		_, _, err := DeriveWorkLogInvoice(&WorkLog{LogType: WorkLogTypeDailyLog}, PaymentTerms{}, nil)
		if !apperr.Is(err, apperr.CodeInvalidPaymentTerms) {
			t.Errorf("expected code %q, got %v", apperr.CodeInvalidPaymentTerms, err)
		}
	})

	t.Run("unknown log type fails", func(t *testing.T) {
		_, _, err := DeriveWorkLogInvoice(&WorkLog{LogType: "nonexistent"}, PaymentTerms{}, nil)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestDeriveFinalFixedAmount(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		prior    float64
		expected float64
	}{
		{"nothing invoiced", 10000, 0, 10000},
		{"partially invoiced", 10000, 6500, 3500},
		{"fully invoiced", 10000, 10000, 0},
		{"over-invoiced clamps to zero", 10000, 12000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveFinalFixedAmount(tt.total, tt.prior); got != tt.expected {
				t.Errorf("DeriveFinalFixedAmount(%v, %v) = %v, want %v", tt.total, tt.prior, got, tt.expected)
			}
		})
	}
}
