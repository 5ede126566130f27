package ledger

import "time"

// Payment is the platform's authoritative mirror of a processor transaction.
//
// Invariants:
//   - stripe_payment_intent_id is unique; the unique constraint is the sole
//     idempotency mechanism for reconciliation inserts.
//   - Once Status is succeeded, only refunded or disputed are valid forward
//     transitions. failed is terminal unless no row exists yet.
//
// Multi-tenant invariant: tenant_id is required on every row.
type Payment struct {
	ID                    string `json:"id" db:"id"`
	TenantID              string `json:"tenant_id" db:"tenant_id"`
	StripePaymentIntentID string `json:"stripe_payment_intent_id" db:"stripe_payment_intent_id"`
	StripeChargeID        string `json:"stripe_charge_id,omitempty" db:"stripe_charge_id"`
	StripeSessionID       string `json:"stripe_session_id,omitempty" db:"stripe_session_id"`

	BookingID string `json:"booking_id,omitempty" db:"booking_id"`
	ServiceID string `json:"service_id,omitempty" db:"service_id"`

	CustomerName  string `json:"customer_name,omitempty" db:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty" db:"customer_email"`

	// Amount is in major units, converted from the processor's minor-unit value.
	// deposit/total_price arrive as decimal strings in session metadata.
	Amount     float64 `json:"amount" db:"amount"`
	Deposit    float64 `json:"deposit,omitempty" db:"deposit"`
	TotalPrice float64 `json:"total_price,omitempty" db:"total_price"`
	Currency   string  `json:"currency" db:"currency"`

	Status        PaymentStatus `json:"status" db:"status"`
	BalanceStatus BalanceStatus `json:"balance_status" db:"balance_status"`

	// Metadata is the raw metadata bag stamped by the checkout flow (JSONB).
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusDisputed  PaymentStatus = "disputed"
)

// BalanceStatus models the connected-account settlement lifecycle:
// pending on collection, available on balance.available, adjusted on refund.
type BalanceStatus string

const (
	BalanceStatusPending   BalanceStatus = "pending"
	BalanceStatusAvailable BalanceStatus = "available"
	BalanceStatusAdjusted  BalanceStatus = "adjusted"
)

// InternalIntent is the platform's own payment-intent record, distinct from the
// processor's. The checkout flow creates it; reconciliation only promotes it.
type InternalIntent struct {
	ID        string       `json:"id" db:"id"`
	TenantID  string       `json:"tenant_id" db:"tenant_id"`
	BookingID string       `json:"booking_id,omitempty" db:"booking_id"`
	Status    IntentStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

type IntentStatus string

const (
	IntentStatusRequiresPayment IntentStatus = "requires_payment"
	IntentStatusPaid            IntentStatus = "paid"
)

// MinorToAmount converts a processor minor-unit value (e.g. cents) to major units.
func MinorToAmount(minor int64) float64 {
	return float64(minor) / 100
}
