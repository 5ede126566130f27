package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Store persists bookings and legacy appointments.
//
// Every status transition is a single guarded UPDATE keyed by (id, tenant_id);
// the guard in SQL is what enforces the forward-only invariant under
// concurrent, duplicated event deliveries.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, clock: time.Now}
}

var (
	ErrNotFound        = errors.New("booking: not found")
	ErrInvalidArgument = errors.New("booking: invalid argument")
)

// ByID fetches a booking scoped to a tenant.
func (s *Store) ByID(ctx context.Context, tenantID, bookingID string) (Booking, error) {
	if tenantID == "" || bookingID == "" {
		return Booking{}, ErrInvalidArgument
	}
	const q = `
SELECT id, tenant_id, status, expires_at, created_at, updated_at
FROM bookings
WHERE id = $1 AND tenant_id = $2
`
	var b Booking
	err := s.db.QueryRowContext(ctx, q, bookingID, tenantID).Scan(
		&b.ID,
		&b.TenantID,
		&b.Status,
		&b.ExpiresAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	if err != nil {
		return Booking{}, err
	}
	return b, nil
}

// MarkPaid moves a booking to paid and clears its hold expiry.
//
// The guard only matches bookings that are still pending and whose hold has not
// expired, so a stale replay against an already-paid booking changes nothing.
// Returns false when the guard did not match (not found, already paid, expired).
func (s *Store) MarkPaid(ctx context.Context, tenantID, bookingID string) (bool, error) {
	if tenantID == "" || bookingID == "" {
		return false, ErrInvalidArgument
	}
	now := s.clock().UTC()
	const q = `
UPDATE bookings
SET status = $3, expires_at = NULL, updated_at = $4
WHERE id = $1 AND tenant_id = $2
  AND status = $5
  AND (expires_at IS NULL OR expires_at > $4)
`
	res, err := s.db.ExecContext(ctx, q, bookingID, tenantID, StatusPaid, now, StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Cancel releases a pending hold. cancelled is a legitimate terminal state
// reachable from pending, so this is the one transition a failure event may
// apply.
func (s *Store) Cancel(ctx context.Context, tenantID, bookingID string) (bool, error) {
	if tenantID == "" || bookingID == "" {
		return false, ErrInvalidArgument
	}
	const q = `
UPDATE bookings
SET status = $3, updated_at = $4
WHERE id = $1 AND tenant_id = $2 AND status = $5
`
	res, err := s.db.ExecContext(ctx, q, bookingID, tenantID, StatusCancelled, s.clock().UTC(), StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ConfirmAppointment applies the legacy-model equivalent of MarkPaid:
// not-already-confirmed, not-expired, then confirmed.
func (s *Store) ConfirmAppointment(ctx context.Context, tenantID, appointmentID string) (bool, error) {
	if tenantID == "" || appointmentID == "" {
		return false, ErrInvalidArgument
	}
	now := s.clock().UTC()
	const q = `
UPDATE appointments
SET status = $3, expires_at = NULL, updated_at = $4
WHERE id = $1 AND tenant_id = $2
  AND status = $5
  AND (expires_at IS NULL OR expires_at > $4)
`
	res, err := s.db.ExecContext(ctx, q, appointmentID, tenantID, StatusConfirmed, now, StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
