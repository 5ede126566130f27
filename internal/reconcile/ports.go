package reconcile

import (
	"context"

	"booking-platform/internal/gateway"
	"booking-platform/internal/ledger"
	"booking-platform/internal/tenant"

	"github.com/stripe/stripe-go/v83"
)

// The ports below are the only surfaces handlers touch. They are satisfied by
// the Postgres stores and the Stripe client; tests substitute in-memory fakes.

// LedgerStore covers payment rows and the internal payment_intents mirror.
type LedgerStore interface {
	// InsertPayment must return ledger.ErrDuplicatePayment on a unique-key
	// conflict; handlers treat that as "already processed".
	InsertPayment(ctx context.Context, p ledger.Payment) error
	PaymentByIntent(ctx context.Context, intentID string) (ledger.Payment, bool, error)
	MarkPaymentSucceeded(ctx context.Context, intentID string) error
	MarkPaymentFailed(ctx context.Context, intentID string) error
	AttachCharge(ctx context.Context, intentID, chargeID string) error
	MarkPaymentRefunded(ctx context.Context, intentID, chargeID string) error
	MarkBalanceAvailableByCharge(ctx context.Context, chargeID string) error
	MarkPaymentDisputedByCharge(ctx context.Context, chargeID string) error
	ResolveDisputeByCharge(ctx context.Context, chargeID string, won bool) error
	PromotePaymentIntent(ctx context.Context, tenantID, intentID string) error
}

// BookingStore covers the guarded booking/appointment transitions. The bool
// return reports whether the guard matched; a false is not an error.
type BookingStore interface {
	MarkPaid(ctx context.Context, tenantID, bookingID string) (bool, error)
	Cancel(ctx context.Context, tenantID, bookingID string) (bool, error)
	ConfirmAppointment(ctx context.Context, tenantID, appointmentID string) (bool, error)
}

// TenantStore resolves connected accounts to tenants. Read-only.
type TenantStore interface {
	ByStripeAccount(ctx context.Context, accountID string) (tenant.Tenant, bool, error)
}

// Gateway is the read-only processor client.
type Gateway interface {
	PaymentIntent(ctx context.Context, id, account string) (*stripe.PaymentIntent, error)
	BalanceTransactions(ctx context.Context, account string) ([]gateway.BalanceTxn, error)
}
