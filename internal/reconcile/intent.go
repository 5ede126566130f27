package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"booking-platform/internal/ledger"

	"github.com/stripe/stripe-go/v83"
)

// handlePaymentIntentSucceeded is the out-of-order tolerance point. Whether
// this event lands before or after checkout.session.completed, the end state
// converges to one payment row with status=succeeded.
func handlePaymentIntentSucceeded(ctx context.Context, hc *Context) Result {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(hc.Event.Data.Raw, &pi); err != nil {
		return fail(fmt.Errorf("decode payment intent: %w", err))
	}

	meta := parseMetadata(pi.Metadata)
	if meta.TenantID == "" {
		return reject("no tenant_id in metadata")
	}

	_, found, err := hc.Ledger.PaymentByIntent(ctx, pi.ID)
	if err != nil {
		return fail(err)
	}
	if found {
		if err := hc.Ledger.MarkPaymentSucceeded(ctx, pi.ID); err != nil {
			return fail(err)
		}
		return ok(fmt.Sprintf("payment %s marked succeeded", pi.ID))
	}

	// Arrived before the checkout event: create the row directly from the
	// intent so the ledger converges regardless of delivery order.
	amount := ledger.MinorToAmount(pi.Amount)
	rawMeta, _ := json.Marshal(pi.Metadata)
	p := ledger.Payment{
		TenantID:              meta.TenantID,
		StripePaymentIntentID: pi.ID,
		BookingID:             meta.BookingID,
		ServiceID:             meta.ServiceID,
		Amount:                amount,
		Deposit:               meta.DepositAmount(),
		TotalPrice:            meta.TotalPriceAmount(amount),
		Currency:              string(pi.Currency),
		Status:                ledger.PaymentStatusSucceeded,
		BalanceStatus:         ledger.BalanceStatusPending,
		Metadata:              string(rawMeta),
	}
	if err := hc.Ledger.InsertPayment(ctx, p); err != nil {
		if errors.Is(err, ledger.ErrDuplicatePayment) {
			return ok(fmt.Sprintf("payment already recorded for %s", pi.ID))
		}
		return fail(err)
	}
	return ok(fmt.Sprintf("payment recorded from intent %s", pi.ID))
}

// handlePaymentIntentFailed marks the payment failed and releases the booking
// hold. Cancellation is the one backward-looking exception: cancelled is a
// legitimate terminal state reachable from pending.
func handlePaymentIntentFailed(ctx context.Context, hc *Context) Result {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(hc.Event.Data.Raw, &pi); err != nil {
		return fail(fmt.Errorf("decode payment intent: %w", err))
	}

	meta := parseMetadata(pi.Metadata)
	if meta.TenantID == "" {
		return reject("no tenant_id in metadata")
	}

	if err := hc.Ledger.MarkPaymentFailed(ctx, pi.ID); err != nil {
		return fail(err)
	}

	if meta.BookingID != "" {
		released, err := hc.Bookings.Cancel(ctx, meta.TenantID, meta.BookingID)
		if err != nil {
			return fail(err)
		}
		if !released {
			hc.Log.Warn("booking hold not released",
				"tenant_id", meta.TenantID,
				"booking_id", meta.BookingID)
		}
	}

	return ok(fmt.Sprintf("payment %s marked failed", pi.ID))
}
