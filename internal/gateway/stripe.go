package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/client"
)

// Client is the read-only payment gateway port. The processor is the source of
// truth for intents, charges, payouts and disputes; this client never mutates
// anything on the processor side.
type Client struct {
	api *client.API
}

// New builds a gateway client from a platform secret key (sk_test_/sk_live_).
// Connected-account scoping happens per call, not per client.
func New(secretKey string) (*Client, error) {
	if secretKey == "" {
		return nil, errors.New("gateway: secret key is required")
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api}, nil
}

// PaymentIntent retrieves a payment intent, scoped to a connected account when
// account is non-empty.
func (c *Client) PaymentIntent(ctx context.Context, id, account string) (*stripe.PaymentIntent, error) {
	if id == "" {
		return nil, errors.New("gateway: payment intent id is required")
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	if account != "" {
		params.SetStripeAccount(account)
	}
	pi, err := c.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}
	return pi, nil
}

// BalanceTxn is the slice of a balance transaction that reconciliation needs:
// what kind of source funded it and which object that source was.
type BalanceTxn struct {
	Type   string
	Source string
}

// BalanceTransactions lists recent balance transactions for a connected
// account. The balance.available payload carries totals only, so the handler
// has to ask the processor which sources just settled.
func (c *Client) BalanceTransactions(ctx context.Context, account string) ([]BalanceTxn, error) {
	if account == "" {
		return nil, errors.New("gateway: connected account is required")
	}
	params := &stripe.BalanceTransactionListParams{}
	params.Context = ctx
	params.SetStripeAccount(account)
	params.Limit = stripe.Int64(100)

	var out []BalanceTxn
	iter := c.api.BalanceTransactions.List(params)
	for iter.Next() {
		bt := iter.BalanceTransaction()
		txn := BalanceTxn{Type: string(bt.Type)}
		if bt.Source != nil {
			txn.Source = bt.Source.ID
		}
		out = append(out, txn)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list balance transactions for %s: %w", account, err)
	}
	return out, nil
}
