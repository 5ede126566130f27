package eventlog

import "time"

// Record is an append-only trail entry for a received webhook delivery.
//
// Invariants:
//   - Records are never updated except to stamp the processing outcome.
//   - The trail is observational: reconciliation idempotency comes from the
//     payments unique constraint, never from this table. Do not consult it to
//     decide whether to process an event.
type Record struct {
	ID string `json:"id" db:"id"`

	// StripeEventID is the processor's event id (evt_...). Duplicated rows for
	// retried deliveries are expected and harmless.
	StripeEventID string `json:"stripe_event_id" db:"stripe_event_id"`
	EventType     string `json:"event_type" db:"event_type"`

	// Account is the connected-account id, empty for platform events.
	Account string `json:"account,omitempty" db:"account"`

	// Payload is the raw event body (JSONB) for ops debugging and replay
	// analysis.
	Payload string `json:"payload,omitempty" db:"payload"`

	ReceivedAt   time.Time  `json:"received_at" db:"received_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty" db:"processed_at"`
	ProcessError string     `json:"process_error,omitempty" db:"process_error"`
}
