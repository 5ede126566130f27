package booking

import "time"

// Booking is a tenant-scoped reservation.
//
// Invariants:
//   - Status only moves forward: pending -> paid (terminal-success) or
//     pending -> cancelled (terminal-failure). Reconciliation must never re-open
//     a paid booking.
//   - A pending booking holds its slot until ExpiresAt; a payment event must not
//     act on an expired hold.
type Booking struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`

	Status Status `json:"status" db:"status"`

	// ExpiresAt bounds the pending hold. Cleared when the booking is paid.
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// CanTransition reports whether moving from -> to is a legal forward step.
// paid, confirmed and cancelled are terminal.
func CanTransition(from, to Status) bool {
	if from != StatusPending {
		return false
	}
	switch to {
	case StatusPaid, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Appointment is the older booking model kept for tenants that have not
// migrated. Reconciliation only confirms it; everything else is legacy-frozen.
type Appointment struct {
	ID        string     `json:"id" db:"id"`
	TenantID  string     `json:"tenant_id" db:"tenant_id"`
	Status    Status     `json:"status" db:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
