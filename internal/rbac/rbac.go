package rbac

// Role constants
const (
	RoleBuyer  = "buyer"
	RoleExpert = "expert"
	RoleAdmin  = "admin"
)

// Permission constants
const (
	PermCreateContract   = "create_contract"
	PermDeclineContract  = "decline_contract"
	PermFundEscrow       = "fund_escrow"
	PermSubmitWork       = "submit_work"
	PermReviewWork       = "review_work"
	PermSignDocument     = "sign_document"
	PermCreateNDA        = "create_nda"
	PermPayInvoice       = "pay_invoice"
	PermSendInvitation   = "send_invitation"
	PermAcceptInvitation = "accept_invitation"
	PermSubmitProposal   = "submit_proposal"
	PermReviewProposal   = "review_proposal"
	PermResolveDispute   = "resolve_dispute"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleBuyer: {
		PermCreateContract, PermFundEscrow, PermReviewWork, PermSignDocument,
		PermCreateNDA, PermPayInvoice, PermSendInvitation, PermReviewProposal,
	},
	RoleExpert: {
		PermDeclineContract, PermSubmitWork, PermSignDocument,
		PermAcceptInvitation, PermSubmitProposal,
	},
	RoleAdmin: {
		PermReviewWork, PermPayInvoice, PermResolveDispute,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsFinancialOperation checks if permission moves money.
func IsFinancialOperation(permission string) bool {
	return permission == PermPayInvoice || permission == PermFundEscrow
}
