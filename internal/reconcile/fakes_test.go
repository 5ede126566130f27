package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"booking-platform/internal/booking"
	"booking-platform/internal/gateway"
	"booking-platform/internal/ledger"
	"booking-platform/internal/tenant"

	"github.com/stripe/stripe-go/v83"
)

// In-memory fakes mirroring the store guards: duplicate inserts surface
// ErrDuplicatePayment, booking transitions only fire from pending.

type fakeLedger struct {
	payments map[string]*ledger.Payment // keyed by processor intent id
	byCharge map[string]string          // charge id -> intent id
	promoted [][2]string                // (tenant id, internal intent id)

	insertErr error
	lookupErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		payments: map[string]*ledger.Payment{},
		byCharge: map[string]string{},
	}
}

func (f *fakeLedger) InsertPayment(_ context.Context, p ledger.Payment) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if p.TenantID == "" || p.StripePaymentIntentID == "" {
		return ledger.ErrInvalidArgument
	}
	if _, exists := f.payments[p.StripePaymentIntentID]; exists {
		return ledger.ErrDuplicatePayment
	}
	if p.Status == "" {
		p.Status = ledger.PaymentStatusPending
	}
	if p.BalanceStatus == "" {
		p.BalanceStatus = ledger.BalanceStatusPending
	}
	cp := p
	f.payments[p.StripePaymentIntentID] = &cp
	if p.StripeChargeID != "" {
		f.byCharge[p.StripeChargeID] = p.StripePaymentIntentID
	}
	return nil
}

func (f *fakeLedger) PaymentByIntent(_ context.Context, intentID string) (ledger.Payment, bool, error) {
	if f.lookupErr != nil {
		return ledger.Payment{}, false, f.lookupErr
	}
	p, ok := f.payments[intentID]
	if !ok {
		return ledger.Payment{}, false, nil
	}
	return *p, true, nil
}

func (f *fakeLedger) MarkPaymentSucceeded(_ context.Context, intentID string) error {
	if p, ok := f.payments[intentID]; ok {
		p.Status = ledger.PaymentStatusSucceeded
		p.BalanceStatus = ledger.BalanceStatusPending
	}
	return nil
}

func (f *fakeLedger) MarkPaymentFailed(_ context.Context, intentID string) error {
	if p, ok := f.payments[intentID]; ok {
		p.Status = ledger.PaymentStatusFailed
	}
	return nil
}

func (f *fakeLedger) AttachCharge(_ context.Context, intentID, chargeID string) error {
	if p, ok := f.payments[intentID]; ok {
		p.StripeChargeID = chargeID
		p.Status = ledger.PaymentStatusSucceeded
		f.byCharge[chargeID] = intentID
	}
	return nil
}

func (f *fakeLedger) MarkPaymentRefunded(_ context.Context, intentID, chargeID string) error {
	if p, ok := f.payments[intentID]; ok {
		if chargeID != "" {
			p.StripeChargeID = chargeID
			f.byCharge[chargeID] = intentID
		}
		p.Status = ledger.PaymentStatusRefunded
		p.BalanceStatus = ledger.BalanceStatusAdjusted
	}
	return nil
}

func (f *fakeLedger) MarkBalanceAvailableByCharge(_ context.Context, chargeID string) error {
	if id, ok := f.byCharge[chargeID]; ok {
		if p := f.payments[id]; p.BalanceStatus == ledger.BalanceStatusPending {
			p.BalanceStatus = ledger.BalanceStatusAvailable
		}
	}
	return nil
}

func (f *fakeLedger) MarkPaymentDisputedByCharge(_ context.Context, chargeID string) error {
	if id, ok := f.byCharge[chargeID]; ok {
		f.payments[id].Status = ledger.PaymentStatusDisputed
	}
	return nil
}

func (f *fakeLedger) ResolveDisputeByCharge(_ context.Context, chargeID string, won bool) error {
	if id, ok := f.byCharge[chargeID]; ok {
		if won {
			f.payments[id].Status = ledger.PaymentStatusSucceeded
		} else {
			f.payments[id].Status = ledger.PaymentStatusDisputed
		}
	}
	return nil
}

func (f *fakeLedger) PromotePaymentIntent(_ context.Context, tenantID, intentID string) error {
	f.promoted = append(f.promoted, [2]string{tenantID, intentID})
	return nil
}

type fakeBookings struct {
	bookings     map[string]booking.Status
	expired      map[string]bool
	appointments map[string]booking.Status
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{
		bookings:     map[string]booking.Status{},
		expired:      map[string]bool{},
		appointments: map[string]booking.Status{},
	}
}

func (f *fakeBookings) MarkPaid(_ context.Context, tenantID, bookingID string) (bool, error) {
	if tenantID == "" || bookingID == "" {
		return false, booking.ErrInvalidArgument
	}
	if f.bookings[bookingID] != booking.StatusPending || f.expired[bookingID] {
		return false, nil
	}
	f.bookings[bookingID] = booking.StatusPaid
	return true, nil
}

func (f *fakeBookings) Cancel(_ context.Context, tenantID, bookingID string) (bool, error) {
	if tenantID == "" || bookingID == "" {
		return false, booking.ErrInvalidArgument
	}
	if f.bookings[bookingID] != booking.StatusPending {
		return false, nil
	}
	f.bookings[bookingID] = booking.StatusCancelled
	return true, nil
}

func (f *fakeBookings) ConfirmAppointment(_ context.Context, tenantID, appointmentID string) (bool, error) {
	if tenantID == "" || appointmentID == "" {
		return false, booking.ErrInvalidArgument
	}
	if f.appointments[appointmentID] != booking.StatusPending || f.expired[appointmentID] {
		return false, nil
	}
	f.appointments[appointmentID] = booking.StatusConfirmed
	return true, nil
}

type fakeTenants struct {
	byAccount map[string]tenant.Tenant
}

func (f *fakeTenants) ByStripeAccount(_ context.Context, accountID string) (tenant.Tenant, bool, error) {
	t, ok := f.byAccount[accountID]
	return t, ok, nil
}

type fakeGateway struct {
	intents map[string]*stripe.PaymentIntent
	txns    []gateway.BalanceTxn
	err     error
}

func (f *fakeGateway) PaymentIntent(_ context.Context, id, _ string) (*stripe.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	pi, ok := f.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such intent %s", id)
	}
	return pi, nil
}

func (f *fakeGateway) BalanceTransactions(_ context.Context, _ string) ([]gateway.BalanceTxn, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.txns, nil
}

// env wires the fakes behind a real router so tests exercise the same dispatch
// path production uses.
type env struct {
	ledger   *fakeLedger
	bookings *fakeBookings
	tenants  *fakeTenants
	gateway  *fakeGateway
	router   *Router
}

func newEnv() *env {
	return &env{
		ledger:   newFakeLedger(),
		bookings: newFakeBookings(),
		tenants:  &fakeTenants{byAccount: map[string]tenant.Tenant{}},
		gateway:  &fakeGateway{intents: map[string]*stripe.PaymentIntent{}},
		router:   NewRouter(),
	}
}

func (e *env) dispatch(t *testing.T, typ stripe.EventType, account, raw string) Result {
	t.Helper()
	ev := &stripe.Event{
		ID:      "evt_test",
		Type:    typ,
		Account: account,
		Data:    &stripe.EventData{Raw: json.RawMessage(raw)},
	}
	hc := NewContext(ev, Deps{
		Ledger:   e.ledger,
		Bookings: e.bookings,
		Tenants:  e.tenants,
		Gateway:  e.gateway,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return e.router.Dispatch(context.Background(), hc)
}
