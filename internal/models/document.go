package models

import (
	"time"

	"github.com/google/uuid"
)

// Document types
const (
	DocumentTypeServiceAgreement = "service_agreement"
	DocumentTypeNDA              = "nda"
)

// Document statuses
const (
	DocumentStatusPending = "pending"
	DocumentStatusSigned  = "signed"
)

// Signing parties
const (
	SignerBuyer  = "buyer"
	SignerExpert = "expert"
)

type ContractDocument struct {
	ID                  uuid.UUID  `json:"id"`
	ContractID          uuid.UUID  `json:"contract_id"`
	DocumentType        string     `json:"document_type"`
	Content             string     `json:"content"`
	Status              string     `json:"status"`
	BuyerSignedAt       *time.Time `json:"buyer_signed_at,omitempty"`
	BuyerSignatureName  *string    `json:"buyer_signature_name,omitempty"`
	BuyerSignatureIP    *string    `json:"buyer_signature_ip,omitempty"`
	ExpertSignedAt      *time.Time `json:"expert_signed_at,omitempty"`
	ExpertSignatureName *string    `json:"expert_signature_name,omitempty"`
	ExpertSignatureIP   *string    `json:"expert_signature_ip,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsFullySigned is true iff both party timestamps are set.
func (d *ContractDocument) IsFullySigned() bool {
	return d.BuyerSignedAt != nil && d.ExpertSignedAt != nil
}

// SignedBy reports whether the given party has already signed.
func (d *ContractDocument) SignedBy(party string) bool {
	switch party {
	case SignerBuyer:
		return d.BuyerSignedAt != nil
	case SignerExpert:
		return d.ExpertSignedAt != nil
	}
	return false
}

// HasAnySignature reports whether either party has signed. Content becomes
// immutable at the first signature, not only once fully signed.
func (d *ContractDocument) HasAnySignature() bool {
	return d.BuyerSignedAt != nil || d.ExpertSignedAt != nil
}
