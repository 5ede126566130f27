package reconcile

import (
	"context"
	"testing"

	"booking-platform/internal/booking"
	"booking-platform/internal/ledger"

	"github.com/stripe/stripe-go/v83"
)

const intentSucceededJSON = `{
	"id": "pi_1",
	"amount": 5000,
	"currency": "usd",
	"status": "succeeded",
	"metadata": {"tenant_id": "t-1", "booking_id": "b-1"}
}`

func TestIntentSucceeded_AfterCheckoutMarksExistingRow(t *testing.T) {
	e := newEnv()
	e.gateway.intents["pi_1"] = succeededIntent("pi_1", 5000)
	e.bookings.bookings["b-1"] = booking.StatusPending

	if res := e.dispatch(t, stripe.EventTypeCheckoutSessionCompleted, "acct_1", checkoutSessionJSON); !res.Success {
		t.Fatalf("checkout dispatch failed: %+v", res)
	}
	if res := e.dispatch(t, stripe.EventTypePaymentIntentSucceeded, "acct_1", intentSucceededJSON); !res.Success {
		t.Fatalf("intent dispatch failed: %+v", res)
	}

	if len(e.ledger.payments) != 1 {
		t.Fatalf("expected exactly one payment row, got %d", len(e.ledger.payments))
	}
	if e.ledger.payments["pi_1"].Status != ledger.PaymentStatusSucceeded {
		t.Fatalf("expected succeeded, got %s", e.ledger.payments["pi_1"].Status)
	}
}

func TestIntentSucceeded_BeforeCheckoutConvergesToOneRow(t *testing.T) {
	e := newEnv()
	e.gateway.intents["pi_1"] = succeededIntent("pi_1", 5000)
	e.bookings.bookings["b-1"] = booking.StatusPending

	// Reverse delivery order: the intent event arrives first.
	if res := e.dispatch(t, stripe.EventTypePaymentIntentSucceeded, "acct_1", intentSucceededJSON); !res.Success {
		t.Fatalf("intent dispatch failed: %+v", res)
	}
	res := e.dispatch(t, stripe.EventTypeCheckoutSessionCompleted, "acct_1", checkoutSessionJSON)
	if !res.Success || res.Err != nil {
		t.Fatalf("checkout replay must ack, got %+v", res)
	}

	if len(e.ledger.payments) != 1 {
		t.Fatalf("expected exactly one payment row, got %d", len(e.ledger.payments))
	}
	p := e.ledger.payments["pi_1"]
	if p.Status != ledger.PaymentStatusSucceeded || p.Amount != 50.00 {
		t.Fatalf("ledger did not converge: %+v", p)
	}
}

func TestIntentSucceeded_MissingTenantRejected(t *testing.T) {
	e := newEnv()
	raw := `{"id": "pi_1", "amount": 5000, "metadata": {}}`
	res := e.dispatch(t, stripe.EventTypePaymentIntentSucceeded, "", raw)
	if res.Success || res.Err != nil {
		t.Fatalf("expected reject, got %+v", res)
	}
	if len(e.ledger.payments) != 0 {
		t.Fatal("reject must not write payments")
	}
}

func TestIntentFailed_MarksPaymentAndReleasesHold(t *testing.T) {
	e := newEnv()
	e.bookings.bookings["b-1"] = booking.StatusPending
	if err := e.ledger.InsertPayment(context.Background(), ledger.Payment{
		TenantID:              "t-1",
		StripePaymentIntentID: "pi_1",
		BookingID:             "b-1",
	}); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	raw := `{"id": "pi_1", "metadata": {"tenant_id": "t-1", "booking_id": "b-1"}}`
	res := e.dispatch(t, stripe.EventTypePaymentIntentPaymentFailed, "acct_1", raw)
	if !res.Success || res.Err != nil {
		t.Fatalf("expected success, got %+v", res)
	}
	if e.ledger.payments["pi_1"].Status != ledger.PaymentStatusFailed {
		t.Fatalf("expected failed, got %s", e.ledger.payments["pi_1"].Status)
	}
	if e.bookings.bookings["b-1"] != booking.StatusCancelled {
		t.Fatalf("expected booking cancelled, got %s", e.bookings.bookings["b-1"])
	}
}

func TestIntentFailed_PaidBookingStaysPaid(t *testing.T) {
	e := newEnv()
	e.bookings.bookings["b-1"] = booking.StatusPaid

	raw := `{"id": "pi_1", "metadata": {"tenant_id": "t-1", "booking_id": "b-1"}}`
	res := e.dispatch(t, stripe.EventTypePaymentIntentPaymentFailed, "acct_1", raw)
	if !res.Success || res.Err != nil {
		t.Fatalf("stale failure must still ack, got %+v", res)
	}
	if e.bookings.bookings["b-1"] != booking.StatusPaid {
		t.Fatalf("paid booking must never be reopened, got %s", e.bookings.bookings["b-1"])
	}
}
