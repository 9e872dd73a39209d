package events

import "context"

// Pub/sub channels, one per domain area. The websocket hub subscribes to all
// of them; services publish to the one matching the entity they touched.
const (
	ChannelContract = "events:contract"
	ChannelWork     = "events:work"
	ChannelBilling  = "events:billing"
)

// Event types
const (
	EventContractStatusChanged = "contract_status_changed"
	EventDocumentSigned        = "document_signed"
	EventWorkSubmitted         = "work_submitted"
	EventWorkReviewed          = "work_reviewed"
	EventInvoiceCreated        = "invoice_created"
	EventInvoicePaid           = "invoice_paid"
	EventInvitationResponded   = "invitation_responded"
	EventDisputeRaised         = "dispute_raised"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, handler func(Event), channels ...string) error
}
