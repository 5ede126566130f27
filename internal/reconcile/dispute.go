package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v83"
)

func handleDisputeCreated(ctx context.Context, hc *Context) Result {
	d, chargeID, res := decodeDispute(hc)
	if res != nil {
		return *res
	}

	if err := hc.Ledger.MarkPaymentDisputedByCharge(ctx, chargeID); err != nil {
		return fail(err)
	}
	return ok(fmt.Sprintf("dispute %s opened on charge %s", d.ID, chargeID))
}

// handleDisputeClosed restores succeeded only when the merchant won; any other
// outcome leaves the payment disputed.
func handleDisputeClosed(ctx context.Context, hc *Context) Result {
	d, chargeID, res := decodeDispute(hc)
	if res != nil {
		return *res
	}

	won := d.Status == stripe.DisputeStatusWon
	if err := hc.Ledger.ResolveDisputeByCharge(ctx, chargeID, won); err != nil {
		return fail(err)
	}
	return ok(fmt.Sprintf("dispute %s closed (%s) on charge %s", d.ID, d.Status, chargeID))
}

func decodeDispute(hc *Context) (stripe.Dispute, string, *Result) {
	var d stripe.Dispute
	if err := json.Unmarshal(hc.Event.Data.Raw, &d); err != nil {
		r := fail(fmt.Errorf("decode dispute: %w", err))
		return stripe.Dispute{}, "", &r
	}
	if d.Charge == nil || d.Charge.ID == "" {
		r := reject(fmt.Sprintf("dispute %s has no charge", d.ID))
		return stripe.Dispute{}, "", &r
	}
	return d, d.Charge.ID, nil
}
