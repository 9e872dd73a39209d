package models

import (
	"testing"

	"github.com/expert-marketplace/backend/internal/apperr"
)

func TestEvidenceValidateLinks(t *testing.T) {
	tests := []struct {
		name    string
		links   []string
		wantErr bool
	}{
		{"empty", nil, false},
		{"https link", []string{"https://github.com/org/repo/pull/42"}, false},
		{"http link", []string{"http://ci.example.com/build/17"}, false},
		{"localhost", []string{"http://localhost:8080/report"}, false},
		{"multiple valid", []string{"https://example.com/a", "https://example.com/b"}, false},

		{"ftp scheme", []string{"ftp://example.com/file"}, true},
		{"no scheme", []string{"example.com/page"}, true},
		{"javascript scheme", []string{"javascript:alert(1)"}, true},
		{"dotless host", []string{"https://intranet/page"}, true},
		{"empty host", []string{"https:///path"}, true},
		{"second link bad", []string{"https://example.com/ok", "not a url at all"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Evidence{Links: tt.links}.ValidateLinks()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !apperr.Is(err, apperr.CodeInvalidEvidenceLink) {
					t.Errorf("expected code %q, got %v", apperr.CodeInvalidEvidenceLink, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
