package reconcile

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v83"
)

// HandlerFunc is one event-kind reconciler. It must always return a Result;
// the router treats anything that still escapes (panic) as a fatal failure.
type HandlerFunc func(ctx context.Context, hc *Context) Result

// Router maps event types to handlers. A plain map: no dynamic dispatch, no
// registration at runtime beyond construction.
type Router struct {
	handlers map[stripe.EventType]HandlerFunc
}

// NewRouter wires the full dispatch table.
func NewRouter() *Router {
	return &Router{
		handlers: map[stripe.EventType]HandlerFunc{
			stripe.EventTypeCheckoutSessionCompleted:   handleCheckoutSessionCompleted,
			stripe.EventTypePaymentIntentSucceeded:     handlePaymentIntentSucceeded,
			stripe.EventTypePaymentIntentPaymentFailed: handlePaymentIntentFailed,
			stripe.EventTypeChargeSucceeded:            handleChargeSucceeded,
			stripe.EventTypeChargeRefunded:             handleChargeRefunded,
			stripe.EventTypeBalanceAvailable:           handleBalanceAvailable,
			stripe.EventTypePayoutPaid:                 handlePayoutPaid,
			stripe.EventTypePayoutFailed:               handlePayoutFailed,
			stripe.EventTypeChargeDisputeCreated:       handleDisputeCreated,
			stripe.EventTypeChargeDisputeClosed:        handleDisputeClosed,
		},
	}
}

// Dispatch routes an event to its handler.
//
// Unknown event types are successfully ignored: the processor must not be told
// to retry events this system does not care about.
func (r *Router) Dispatch(ctx context.Context, hc *Context) (res Result) {
	if hc == nil || hc.Event == nil {
		return fail(fmt.Errorf("reconcile: nil event"))
	}

	h, found := r.handlers[hc.Event.Type]
	if !found {
		return ok(fmt.Sprintf("unsupported event: %s", hc.Event.Type))
	}

	// A handler must never take the whole delivery down; surface panics as a
	// structured failure so the caller still gets a Result.
	defer func() {
		if p := recover(); p != nil {
			res = fail(fmt.Errorf("reconcile: handler panic for %s: %v", hc.Event.Type, p))
		}
	}()

	return h(ctx, hc)
}

// Handles reports whether a handler is registered for the given type.
func (r *Router) Handles(t stripe.EventType) bool {
	_, found := r.handlers[t]
	return found
}
