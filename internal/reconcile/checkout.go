package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"booking-platform/internal/ledger"

	"github.com/stripe/stripe-go/v83"
)

// handleCheckoutSessionCompleted reconciles a completed checkout session:
// at most one new payment row, at most one forward booking transition.
//
// Idempotency rests entirely on the payments unique constraint. A duplicate
// insert short-circuits before the booking steps, so a retry after a partial
// failure will not re-apply them; the event log keeps the trail for ops.
func handleCheckoutSessionCompleted(ctx context.Context, hc *Context) Result {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(hc.Event.Data.Raw, &session); err != nil {
		return fail(fmt.Errorf("decode checkout session: %w", err))
	}

	meta := parseMetadata(session.Metadata)
	if meta.TenantID == "" {
		return reject("no tenant_id in metadata")
	}

	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		// The session payload carries only an intent reference; the settled
		// amount and status live on the intent itself.
		pi, err := hc.Gateway.PaymentIntent(ctx, session.PaymentIntent.ID, hc.Account)
		if err != nil {
			return fail(err)
		}

		amount := ledger.MinorToAmount(pi.Amount)
		rawMeta, _ := json.Marshal(session.Metadata)

		p := ledger.Payment{
			TenantID:              meta.TenantID,
			StripePaymentIntentID: pi.ID,
			StripeSessionID:       session.ID,
			BookingID:             meta.BookingID,
			ServiceID:             meta.ServiceID,
			Amount:                amount,
			Deposit:               meta.DepositAmount(),
			TotalPrice:            meta.TotalPriceAmount(amount),
			Currency:              string(pi.Currency),
			Status:                statusFromIntent(pi.Status),
			BalanceStatus:         ledger.BalanceStatusPending,
			Metadata:              string(rawMeta),
		}
		if session.CustomerDetails != nil {
			p.CustomerName = session.CustomerDetails.Name
			p.CustomerEmail = session.CustomerDetails.Email
		}

		if err := hc.Ledger.InsertPayment(ctx, p); err != nil {
			if errors.Is(err, ledger.ErrDuplicatePayment) {
				return ok(fmt.Sprintf("payment already recorded for %s", pi.ID))
			}
			return fail(err)
		}
	}

	if meta.InternalIntentID != "" {
		if err := hc.Ledger.PromotePaymentIntent(ctx, meta.TenantID, meta.InternalIntentID); err != nil {
			return fail(err)
		}
	}

	if meta.BookingID != "" {
		moved, err := hc.Bookings.MarkPaid(ctx, meta.TenantID, meta.BookingID)
		if err != nil {
			return fail(err)
		}
		if !moved {
			hc.Log.Warn("booking not transitioned",
				"tenant_id", meta.TenantID,
				"booking_id", meta.BookingID,
				"reason", "not pending, expired, or missing")
		}
	}

	if meta.AppointmentID != "" {
		moved, err := hc.Bookings.ConfirmAppointment(ctx, meta.TenantID, meta.AppointmentID)
		if err != nil {
			return fail(err)
		}
		if !moved {
			hc.Log.Warn("appointment not confirmed",
				"tenant_id", meta.TenantID,
				"appointment_id", meta.AppointmentID)
		}
	}

	return ok("checkout session reconciled")
}

func statusFromIntent(s stripe.PaymentIntentStatus) ledger.PaymentStatus {
	if s == stripe.PaymentIntentStatusSucceeded {
		return ledger.PaymentStatusSucceeded
	}
	return ledger.PaymentStatusPending
}
