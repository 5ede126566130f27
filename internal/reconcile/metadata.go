package reconcile

import (
	"strconv"
)

// Metadata is the typed view of the loosely-typed metadata bag the upstream
// checkout flow stamps onto sessions and payment intents.
//
// tenant_id is the only required key: without it no reconciliation can be
// attributed. Everything else is optional and validated once here instead of
// null-checked in every handler.
type Metadata struct {
	TenantID string

	BookingID     string
	AppointmentID string // legacy booking model
	ServiceID     string

	// InternalIntentID is the platform's own payment_intents row id, distinct
	// from the processor's payment intent.
	InternalIntentID string

	Deposit    string
	TotalPrice string
}

func parseMetadata(bag map[string]string) Metadata {
	return Metadata{
		TenantID:         bag["tenant_id"],
		BookingID:        bag["booking_id"],
		AppointmentID:    bag["appointment_id"],
		ServiceID:        bag["service_id"],
		InternalIntentID: bag["payment_intent_id"],
		Deposit:          bag["deposit"],
		TotalPrice:       bag["total_price"],
	}
}

// DepositAmount parses the deposit metadata value; malformed or absent values
// come back as 0 (ad hoc upstream data, never fatal).
func (m Metadata) DepositAmount() float64 {
	return parseDecimal(m.Deposit)
}

// TotalPriceAmount parses total_price, falling back to the settled amount when
// the checkout flow did not stamp one.
func (m Metadata) TotalPriceAmount(fallback float64) float64 {
	if m.TotalPrice == "" {
		return fallback
	}
	if v := parseDecimal(m.TotalPrice); v > 0 {
		return v
	}
	return fallback
}

func parseDecimal(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
