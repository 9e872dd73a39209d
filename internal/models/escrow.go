package models

import (
	"time"

	"github.com/google/uuid"
)

// Escrow ledger entry directions.
const (
	EscrowEntryDeposit  = "deposit"   // buyer funds moved into escrow
	EscrowEntryRelease  = "release"   // escrow paid out against an invoice
	EscrowEntryWriteOff = "write_off" // dispute resolution reduced the balance
	EscrowEntryRefund   = "refund"    // remaining escrow returned on cancellation
)

// EscrowEntry is an append-only ledger row. The contract's escrow_balance and
// released_total columns are the rollup; the ledger is the source of truth for
// reconciliation.
type EscrowEntry struct {
	ID         uuid.UUID  `json:"id"`
	ContractID uuid.UUID  `json:"contract_id"`
	InvoiceID  *uuid.UUID `json:"invoice_id,omitempty"`
	Direction  string     `json:"direction"`
	Amount     float64    `json:"amount"`
	Note       *string    `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
