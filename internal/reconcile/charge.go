package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v83"
)

// Charge events carry no usable metadata of their own; tenancy is resolved by
// retrieving the owning payment intent from the gateway.

func handleChargeSucceeded(ctx context.Context, hc *Context) Result {
	ch, intentID, res := decodeCharge(hc)
	if res != nil {
		return *res
	}

	pi, err := hc.Gateway.PaymentIntent(ctx, intentID, hc.Account)
	if err != nil {
		return fail(err)
	}
	if pi.Metadata["tenant_id"] == "" {
		return reject(fmt.Sprintf("no tenant_id on intent %s for charge %s", intentID, ch.ID))
	}

	if err := hc.Ledger.AttachCharge(ctx, intentID, ch.ID); err != nil {
		return fail(err)
	}
	return ok(fmt.Sprintf("charge %s attached to %s", ch.ID, intentID))
}

func handleChargeRefunded(ctx context.Context, hc *Context) Result {
	ch, intentID, res := decodeCharge(hc)
	if res != nil {
		return *res
	}

	pi, err := hc.Gateway.PaymentIntent(ctx, intentID, hc.Account)
	if err != nil {
		return fail(err)
	}
	meta := parseMetadata(pi.Metadata)
	if meta.TenantID == "" {
		return reject(fmt.Sprintf("no tenant_id on intent %s for charge %s", intentID, ch.ID))
	}

	if err := hc.Ledger.MarkPaymentRefunded(ctx, intentID, ch.ID); err != nil {
		return fail(err)
	}

	if meta.BookingID != "" {
		released, err := hc.Bookings.Cancel(ctx, meta.TenantID, meta.BookingID)
		if err != nil {
			return fail(err)
		}
		if !released {
			hc.Log.Warn("booking not cancelled on refund",
				"tenant_id", meta.TenantID,
				"booking_id", meta.BookingID)
		}
	}

	return ok(fmt.Sprintf("charge %s refunded", ch.ID))
}

func decodeCharge(hc *Context) (stripe.Charge, string, *Result) {
	var ch stripe.Charge
	if err := json.Unmarshal(hc.Event.Data.Raw, &ch); err != nil {
		r := fail(fmt.Errorf("decode charge: %w", err))
		return stripe.Charge{}, "", &r
	}
	if ch.PaymentIntent == nil || ch.PaymentIntent.ID == "" {
		r := reject(fmt.Sprintf("charge %s has no payment intent", ch.ID))
		return stripe.Charge{}, "", &r
	}
	return ch, ch.PaymentIntent.ID, nil
}
