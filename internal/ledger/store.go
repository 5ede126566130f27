package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"booking-platform/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store persists payments and the internal payment_intents mirror.
//
// All mutation goes through narrow single-row statements scoped by a unique key
// or by (id, tenant_id). No multi-row scans; the store's own constraints are the
// only locking.
//
// Assumed tables:
// - payments          UNIQUE (stripe_payment_intent_id)
// - payment_intents   internal mirror, keyed (id, tenant_id)
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, clock: time.Now}
}

var (
	ErrNotFound = errors.New("ledger: not found")

	// ErrDuplicatePayment reports an insert that hit the unique constraint on
	// stripe_payment_intent_id. Callers must treat it as "already processed",
	// never as a failure.
	ErrDuplicatePayment = errors.New("ledger: payment already recorded")

	ErrInvalidArgument = errors.New("ledger: invalid argument")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// InsertPayment creates the ledger row for a payment intent.
// Returns ErrDuplicatePayment when a row for the intent id already exists.
func (s *Store) InsertPayment(ctx context.Context, p Payment) error {
	if p.TenantID == "" || p.StripePaymentIntentID == "" {
		return ErrInvalidArgument
	}
	now := s.clock().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = PaymentStatusPending
	}
	if p.BalanceStatus == "" {
		p.BalanceStatus = BalanceStatusPending
	}

	const q = `
INSERT INTO payments (
  id, tenant_id, stripe_payment_intent_id, stripe_charge_id, stripe_session_id,
  booking_id, service_id, customer_name, customer_email,
  amount, deposit, total_price, currency, status, balance_status, metadata,
  created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$17
)
`
	_, err := s.db.ExecContext(ctx, q,
		p.ID,
		p.TenantID,
		p.StripePaymentIntentID,
		nullStr(p.StripeChargeID),
		nullStr(p.StripeSessionID),
		nullStr(p.BookingID),
		nullStr(p.ServiceID),
		nullStr(p.CustomerName),
		nullStr(p.CustomerEmail),
		p.Amount,
		p.Deposit,
		p.TotalPrice,
		p.Currency,
		p.Status,
		p.BalanceStatus,
		nullStr(p.Metadata),
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePayment
		}
		return err
	}
	return nil
}

// PaymentByIntent looks up the ledger row for a processor payment-intent id.
func (s *Store) PaymentByIntent(ctx context.Context, intentID string) (Payment, bool, error) {
	const q = selectPayment + ` WHERE stripe_payment_intent_id = $1`
	return s.queryPayment(ctx, q, intentID)
}

// PaymentByCharge looks up the ledger row that a charge was attached to.
func (s *Store) PaymentByCharge(ctx context.Context, chargeID string) (Payment, bool, error) {
	const q = selectPayment + ` WHERE stripe_charge_id = $1`
	return s.queryPayment(ctx, q, chargeID)
}

// MarkPaymentSucceeded records a successful capture: status=succeeded and
// settlement funds pending.
func (s *Store) MarkPaymentSucceeded(ctx context.Context, intentID string) error {
	const q = `
UPDATE payments
SET status = $2, balance_status = $3, updated_at = $4
WHERE stripe_payment_intent_id = $1
`
	return s.exec(ctx, q, intentID, PaymentStatusSucceeded, BalanceStatusPending, s.clock().UTC())
}

// MarkPaymentFailed records a failed capture. No-op when no row exists yet;
// payment_failed may legitimately arrive before any insert happened.
func (s *Store) MarkPaymentFailed(ctx context.Context, intentID string) error {
	const q = `
UPDATE payments
SET status = $2, updated_at = $3
WHERE stripe_payment_intent_id = $1
`
	res, err := s.db.ExecContext(ctx, q, intentID, PaymentStatusFailed, s.clock().UTC())
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// AttachCharge links a settled charge to the ledger row and marks it succeeded.
func (s *Store) AttachCharge(ctx context.Context, intentID, chargeID string) error {
	if intentID == "" || chargeID == "" {
		return ErrInvalidArgument
	}
	const q = `
UPDATE payments
SET stripe_charge_id = $2, status = $3, updated_at = $4
WHERE stripe_payment_intent_id = $1
`
	return s.exec(ctx, q, intentID, chargeID, PaymentStatusSucceeded, s.clock().UTC())
}

// MarkPaymentRefunded records a refund: status=refunded and settlement adjusted.
func (s *Store) MarkPaymentRefunded(ctx context.Context, intentID, chargeID string) error {
	const q = `
UPDATE payments
SET stripe_charge_id = COALESCE(NULLIF($2, ''), stripe_charge_id),
    status = $3, balance_status = $4, updated_at = $5
WHERE stripe_payment_intent_id = $1
`
	return s.exec(ctx, q, intentID, chargeID, PaymentStatusRefunded, BalanceStatusAdjusted, s.clock().UTC())
}

// MarkBalanceAvailableByCharge flips settlement to available for the payment
// whose charge funded the balance transaction.
func (s *Store) MarkBalanceAvailableByCharge(ctx context.Context, chargeID string) error {
	if chargeID == "" {
		return ErrInvalidArgument
	}
	const q = `
UPDATE payments
SET balance_status = $2, updated_at = $3
WHERE stripe_charge_id = $1 AND balance_status = $4
`
	res, err := s.db.ExecContext(ctx, q, chargeID, BalanceStatusAvailable, s.clock().UTC(), BalanceStatusPending)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// MarkPaymentDisputedByCharge flags the payment behind a disputed charge.
func (s *Store) MarkPaymentDisputedByCharge(ctx context.Context, chargeID string) error {
	if chargeID == "" {
		return ErrInvalidArgument
	}
	const q = `
UPDATE payments
SET status = $2, updated_at = $3
WHERE stripe_charge_id = $1
`
	return s.exec(ctx, q, chargeID, PaymentStatusDisputed, s.clock().UTC())
}

// ResolveDisputeByCharge closes out a dispute. A dispute won by the merchant
// restores succeeded; anything else keeps the row disputed.
func (s *Store) ResolveDisputeByCharge(ctx context.Context, chargeID string, won bool) error {
	if chargeID == "" {
		return ErrInvalidArgument
	}
	status := PaymentStatusDisputed
	if won {
		status = PaymentStatusSucceeded
	}
	const q = `
UPDATE payments
SET status = $2, updated_at = $3
WHERE stripe_charge_id = $1
`
	return s.exec(ctx, q, chargeID, status, s.clock().UTC())
}

// PromotePaymentIntent promotes the internal payment-intent mirror from
// requires_payment to paid and, when it links a pending booking, confirms that
// booking. Both writes happen in one transaction; a mirror already paid (or
// absent) is a no-op.
func (s *Store) PromotePaymentIntent(ctx context.Context, tenantID, intentID string) error {
	if tenantID == "" || intentID == "" {
		return ErrInvalidArgument
	}
	now := s.clock().UTC()

	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const promote = `
UPDATE payment_intents
SET status = $3, updated_at = $4
WHERE id = $1 AND tenant_id = $2 AND status = $5
RETURNING booking_id
`
		var bookingID sql.NullString
		err := tx.QueryRowContext(ctx, promote,
			intentID, tenantID, IntentStatusPaid, now, IntentStatusRequiresPayment,
		).Scan(&bookingID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if !bookingID.Valid || bookingID.String == "" {
			return nil
		}

		const confirm = `
UPDATE bookings
SET status = 'confirmed', updated_at = $3
WHERE id = $1 AND tenant_id = $2 AND status = 'pending'
`
		_, err = tx.ExecContext(ctx, confirm, bookingID.String, tenantID, now)
		return err
	})
}

const selectPayment = `
SELECT id, tenant_id, stripe_payment_intent_id,
       COALESCE(stripe_charge_id, ''), COALESCE(stripe_session_id, ''),
       COALESCE(booking_id, ''), COALESCE(service_id, ''),
       COALESCE(customer_name, ''), COALESCE(customer_email, ''),
       amount, deposit, total_price, currency, status, balance_status,
       COALESCE(metadata, ''), created_at, updated_at
FROM payments`

func (s *Store) queryPayment(ctx context.Context, q string, args ...any) (Payment, bool, error) {
	var p Payment
	err := s.db.QueryRowContext(ctx, q, args...).Scan(
		&p.ID,
		&p.TenantID,
		&p.StripePaymentIntentID,
		&p.StripeChargeID,
		&p.StripeSessionID,
		&p.BookingID,
		&p.ServiceID,
		&p.CustomerName,
		&p.CustomerEmail,
		&p.Amount,
		&p.Deposit,
		&p.TotalPrice,
		&p.Currency,
		&p.Status,
		&p.BalanceStatus,
		&p.Metadata,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, false, nil
	}
	if err != nil {
		return Payment{}, false, err
	}
	return p, true, nil
}

func (s *Store) exec(ctx context.Context, q string, args ...any) error {
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
