package models

import (
	"testing"
	"time"
)

func TestDocumentSignatureHelpers(t *testing.T) {
	now := time.Now()

	unsigned := &ContractDocument{}
	if unsigned.IsFullySigned() || unsigned.HasAnySignature() {
		t.Error("fresh document must have no signatures")
	}
	if unsigned.SignedBy(SignerBuyer) || unsigned.SignedBy(SignerExpert) {
		t.Error("fresh document must not report any signer")
	}

	buyerOnly := &ContractDocument{BuyerSignedAt: &now}
	if buyerOnly.IsFullySigned() {
		t.Error("buyer-only signature must not count as fully signed")
	}
	if !buyerOnly.HasAnySignature() {
		t.Error("buyer signature must count as a signature")
	}
	if !buyerOnly.SignedBy(SignerBuyer) || buyerOnly.SignedBy(SignerExpert) {
		t.Error("only the buyer has signed")
	}

	both := &ContractDocument{BuyerSignedAt: &now, ExpertSignedAt: &now}
	if !both.IsFullySigned() {
		t.Error("both signatures must count as fully signed")
	}

	if both.SignedBy("nonexistent") {
		t.Error("unknown party must not report as signed")
	}
}
