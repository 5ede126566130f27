package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v83"
)

// Balance and payout events only make sense for connected accounts; the
// platform account's own balance is not reconciled here.

func handleBalanceAvailable(ctx context.Context, hc *Context) Result {
	if hc.Account == "" {
		return reject("balance event without connected account is not reconciled")
	}

	// The balance.available payload carries totals only; ask the gateway which
	// sources just settled and flip the matching charge-funded payments.
	txns, err := hc.Gateway.BalanceTransactions(ctx, hc.Account)
	if err != nil {
		return fail(err)
	}

	settled := 0
	for _, txn := range txns {
		if txn.Type != "charge" || txn.Source == "" {
			continue
		}
		if err := hc.Ledger.MarkBalanceAvailableByCharge(ctx, txn.Source); err != nil {
			return fail(err)
		}
		settled++
	}
	return ok(fmt.Sprintf("balance available for %d charge(s) on %s", settled, hc.Account))
}

func handlePayoutPaid(ctx context.Context, hc *Context) Result {
	return handlePayout(ctx, hc, "paid")
}

func handlePayoutFailed(ctx context.Context, hc *Context) Result {
	return handlePayout(ctx, hc, "failed")
}

// handlePayout logs the payout outcome for the owning tenant. No ledger
// mutation happens here; payouts settle against the connected account, not a
// single payment row. Unmatched accounts happen harmlessly for sandbox/test
// accounts and are rejected without error.
func handlePayout(ctx context.Context, hc *Context, outcome string) Result {
	if hc.Account == "" {
		return reject("payout event without connected account is not reconciled")
	}

	t, found, err := hc.Tenants.ByStripeAccount(ctx, hc.Account)
	if err != nil {
		return fail(err)
	}
	if !found {
		return reject(fmt.Sprintf("no tenant for account %s", hc.Account))
	}

	var payout stripe.Payout
	if err := json.Unmarshal(hc.Event.Data.Raw, &payout); err != nil {
		return fail(fmt.Errorf("decode payout: %w", err))
	}

	hc.Log.Info("payout "+outcome,
		"tenant_id", t.ID,
		"account", hc.Account,
		"payout_id", payout.ID,
		"amount", payout.Amount,
		"currency", payout.Currency)

	return ok(fmt.Sprintf("payout %s %s for tenant %s", payout.ID, outcome, t.ID))
}
