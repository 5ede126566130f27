package reconcile

import (
	"log/slog"

	"github.com/stripe/stripe-go/v83"
)

// Deps bundles the collaborators shared by every handler.
type Deps struct {
	Ledger   LedgerStore
	Bookings BookingStore
	Tenants  TenantStore
	Gateway  Gateway
	Log      *slog.Logger
}

// Context is the per-event handler context: the raw event, the injected ports,
// and the connected-account id when the event was delivered on behalf of a
// connected account rather than the platform account.
//
// Pure construction; no business logic happens here.
type Context struct {
	Event    *stripe.Event
	Ledger   LedgerStore
	Bookings BookingStore
	Tenants  TenantStore
	Gateway  Gateway
	Account  string
	Log      *slog.Logger
}

func NewContext(ev *stripe.Event, deps Deps) *Context {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	account := ""
	if ev != nil {
		account = ev.Account
	}
	return &Context{
		Event:    ev,
		Ledger:   deps.Ledger,
		Bookings: deps.Bookings,
		Tenants:  deps.Tenants,
		Gateway:  deps.Gateway,
		Account:  account,
		Log:      log,
	}
}
