package tenant

import "time"

// Tenant is read-only for the reconciliation subsystem.
//
// A tenant has zero or one connected payment account. Reconciliation resolves
// tenancy either from event metadata (tenant_id) or by matching the event's
// connected-account id against StripeAccountID.
type Tenant struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// StripeAccountID is empty for tenants without a connected account.
	StripeAccountID string `json:"stripe_account_id,omitempty" db:"stripe_account_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
