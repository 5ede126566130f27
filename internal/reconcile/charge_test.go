package reconcile

import (
	"context"
	"testing"

	"booking-platform/internal/booking"
	"booking-platform/internal/ledger"

	"github.com/stripe/stripe-go/v83"
)

func seedPayment(t *testing.T, e *env, p ledger.Payment) {
	t.Helper()
	if err := e.ledger.InsertPayment(context.Background(), p); err != nil {
		t.Fatalf("seed insert: %v", err)
	}
}

func tenantIntent(id string, meta map[string]string) *stripe.PaymentIntent {
	return &stripe.PaymentIntent{
		ID:       id,
		Status:   stripe.PaymentIntentStatusSucceeded,
		Metadata: meta,
	}
}

func TestChargeSucceeded_AttachesChargeToPayment(t *testing.T) {
	e := newEnv()
	e.gateway.intents["pi_1"] = tenantIntent("pi_1", map[string]string{"tenant_id": "t-1"})
	seedPayment(t, e, ledger.Payment{TenantID: "t-1", StripePaymentIntentID: "pi_1"})

	raw := `{"id": "ch_1", "payment_intent": "pi_1"}`
	res := e.dispatch(t, stripe.EventTypeChargeSucceeded, "acct_1", raw)
	if !res.Success || res.Err != nil {
		t.Fatalf("expected success, got %+v", res)
	}
	p := e.ledger.payments["pi_1"]
	if p.StripeChargeID != "ch_1" || p.Status != ledger.PaymentStatusSucceeded {
		t.Fatalf("charge not attached: %+v", p)
	}
}

func TestChargeSucceeded_NoTenantOnIntentRejected(t *testing.T) {
	e := newEnv()
	e.gateway.intents["pi_1"] = tenantIntent("pi_1", nil)
	seedPayment(t, e, ledger.Payment{TenantID: "t-1", StripePaymentIntentID: "pi_1"})

	raw := `{"id": "ch_1", "payment_intent": "pi_1"}`
	res := e.dispatch(t, stripe.EventTypeChargeSucceeded, "acct_1", raw)
	if res.Success || res.Err != nil {
		t.Fatalf("expected reject, got %+v", res)
	}
	if e.ledger.payments["pi_1"].StripeChargeID != "" {
		t.Fatal("reject must not attach the charge")
	}
}

func TestChargeSucceeded_NoPaymentIntentRejected(t *testing.T) {
	e := newEnv()
	res := e.dispatch(t, stripe.EventTypeChargeSucceeded, "acct_1", `{"id": "ch_orphan"}`)
	if res.Success || res.Err != nil {
		t.Fatalf("expected reject, got %+v", res)
	}
}

func TestChargeRefunded_CascadesToLedgerAndBooking(t *testing.T) {
	e := newEnv()
	e.gateway.intents["pi_1"] = tenantIntent("pi_1", map[string]string{
		"tenant_id":  "t-1",
		"booking_id": "b-1",
	})
	e.bookings.bookings["b-1"] = booking.StatusPending
	seedPayment(t, e, ledger.Payment{
		TenantID:              "t-1",
		StripePaymentIntentID: "pi_1",
		BookingID:             "b-1",
		Status:                ledger.PaymentStatusSucceeded,
	})

	raw := `{"id": "ch_1", "payment_intent": "pi_1"}`
	res := e.dispatch(t, stripe.EventTypeChargeRefunded, "acct_1", raw)
	if !res.Success || res.Err != nil {
		t.Fatalf("expected success, got %+v", res)
	}

	p := e.ledger.payments["pi_1"]
	if p.Status != ledger.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", p.Status)
	}
	if p.BalanceStatus != ledger.BalanceStatusAdjusted {
		t.Fatalf("expected balance adjusted, got %s", p.BalanceStatus)
	}
	if e.bookings.bookings["b-1"] != booking.StatusCancelled {
		t.Fatalf("expected booking cancelled, got %s", e.bookings.bookings["b-1"])
	}
}

func TestChargeRefunded_PaidBookingStaysPaid(t *testing.T) {
	e := newEnv()
	e.gateway.intents["pi_1"] = tenantIntent("pi_1", map[string]string{
		"tenant_id":  "t-1",
		"booking_id": "b-1",
	})
	e.bookings.bookings["b-1"] = booking.StatusPaid
	seedPayment(t, e, ledger.Payment{
		TenantID:              "t-1",
		StripePaymentIntentID: "pi_1",
		BookingID:             "b-1",
		Status:                ledger.PaymentStatusSucceeded,
	})

	raw := `{"id": "ch_1", "payment_intent": "pi_1"}`
	res := e.dispatch(t, stripe.EventTypeChargeRefunded, "acct_1", raw)
	if !res.Success || res.Err != nil {
		t.Fatalf("expected success, got %+v", res)
	}
	if e.ledger.payments["pi_1"].Status != ledger.PaymentStatusRefunded {
		t.Fatal("refund must still land on the ledger")
	}
	if e.bookings.bookings["b-1"] != booking.StatusPaid {
		t.Fatalf("paid booking must never be reopened, got %s", e.bookings.bookings["b-1"])
	}
}
