package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/expert-marketplace/backend/internal/models"
)

func renderFixture() *models.Contract {
	return &models.Contract{
		ID:              uuid.MustParse("0b8c41de-9f5a-4d2e-8a1c-3e7f6b2d9c10"),
		EngagementModel: models.EngagementSprint,
		PaymentTerms: models.PaymentTerms{
			Sprint: &models.SprintTerms{SprintRate: 2500, SprintDurationDays: 14, TotalSprints: 4, CurrentSprint: 1},
		},
		TotalAmount: 10000,
		NDARequired: true,
	}
}

func TestRenderServiceAgreementDeterministic(t *testing.T) {
	c := renderFixture()
	first := RenderServiceAgreement(c, "Search relevance overhaul", "Acme Corp", "Priya Sharma", "INR")
	second := RenderServiceAgreement(c, "Search relevance overhaul", "Acme Corp", "Priya Sharma", "INR")
	if first != second {
		t.Fatal("rendering the same contract twice must produce identical content")
	}

	for _, want := range []string{
		"SERVICE AGREEMENT",
		c.ID.String(),
		"Search relevance overhaul",
		"Acme Corp",
		"Priya Sharma",
		"sprint engagement",
		"10000.00 INR",
		"Confidentiality",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("agreement missing %q", want)
		}
	}
}

func TestRenderServiceAgreementOmitsNDAClauseWhenNotRequired(t *testing.T) {
	c := renderFixture()
	c.NDARequired = false
	body := RenderServiceAgreement(c, "Search relevance overhaul", "Acme Corp", "Priya Sharma", "INR")
	if strings.Contains(body, "Confidentiality") {
		t.Error("agreement must not carry the NDA clause when none is required")
	}
}

func TestRenderNDA(t *testing.T) {
	c := renderFixture()
	body := RenderNDA(c, "Search relevance overhaul", "Acme Corp", "Priya Sharma")
	if body != RenderNDA(c, "Search relevance overhaul", "Acme Corp", "Priya Sharma") {
		t.Fatal("NDA rendering must be deterministic")
	}
	for _, want := range []string{"NON-DISCLOSURE AGREEMENT", c.ID.String(), "Acme Corp", "Priya Sharma"} {
		if !strings.Contains(body, want) {
			t.Errorf("NDA missing %q", want)
		}
	}
}

func TestTermsSummary(t *testing.T) {
	tests := []struct {
		name  string
		model string
		terms models.PaymentTerms
		want  string
	}{
		{
			"daily",
			models.EngagementDaily,
			models.PaymentTerms{Daily: &models.DailyTerms{DailyRate: 400, TotalDays: 20}},
			"a daily rate of 400.00 INR for 20 working days",
		},
		{
			"sprint",
			models.EngagementSprint,
			models.PaymentTerms{Sprint: &models.SprintTerms{SprintRate: 2500, SprintDurationDays: 14, TotalSprints: 4}},
			"4 sprints of 14 days each at 2500.00 INR per sprint",
		},
		{
			"fixed",
			models.EngagementFixed,
			models.PaymentTerms{Fixed: &models.FixedTerms{TotalAmount: 9999.5}},
			"a fixed price of 9999.50 INR payable against approved milestones",
		},
		{
			"hourly",
			models.EngagementHourly,
			models.PaymentTerms{Hourly: &models.HourlyTerms{HourlyRate: 85, EstimatedHours: 120}},
			"an hourly rate of 85.00 INR for an estimated 120.0 hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := termsSummary(tt.model, tt.terms, "INR"); got != tt.want {
				t.Errorf("termsSummary = %q, want %q", got, tt.want)
			}
		})
	}

	if got := termsSummary("nonexistent", models.PaymentTerms{}, "INR"); got != "" {
		t.Errorf("unknown model must render empty, got %q", got)
	}
}
