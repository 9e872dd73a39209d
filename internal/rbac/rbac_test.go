package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       string
		permission string
		expected   bool
	}{
		{RoleBuyer, PermCreateContract, true},
		{RoleBuyer, PermFundEscrow, true},
		{RoleBuyer, PermReviewWork, true},
		{RoleBuyer, PermCreateNDA, true},
		{RoleBuyer, PermSendInvitation, true},
		{RoleBuyer, PermSubmitWork, false},
		{RoleBuyer, PermSubmitProposal, false},
		{RoleBuyer, PermResolveDispute, false},

		{RoleExpert, PermSubmitWork, true},
		{RoleExpert, PermDeclineContract, true},
		{RoleExpert, PermSubmitProposal, true},
		{RoleExpert, PermSignDocument, true},
		{RoleExpert, PermCreateContract, false},
		{RoleExpert, PermPayInvoice, false},
		{RoleExpert, PermReviewWork, false},

		{RoleAdmin, PermResolveDispute, true},
		{RoleAdmin, PermReviewWork, true},
		{RoleAdmin, PermPayInvoice, true},
		{RoleAdmin, PermCreateContract, false},

		{"nonexistent", PermCreateContract, false},
		{RoleBuyer, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.permission, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.permission); got != tt.expected {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.permission, got, tt.expected)
			}
		})
	}
}

func TestIsFinancialOperation(t *testing.T) {
	if !IsFinancialOperation(PermPayInvoice) || !IsFinancialOperation(PermFundEscrow) {
		t.Error("paying invoices and funding escrow move money")
	}
	if IsFinancialOperation(PermSubmitWork) || IsFinancialOperation(PermSignDocument) {
		t.Error("non-financial permissions must not be flagged")
	}
}
