package tenant

import (
	"context"
	"database/sql"
	"errors"
)

// Store exposes read-only tenant lookups. Reconciliation never mutates tenants.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var ErrInvalidArgument = errors.New("tenant: invalid argument")

const selectTenant = `
SELECT id, name, COALESCE(stripe_account_id, ''), created_at
FROM tenants`

// ByID fetches a tenant.
func (s *Store) ByID(ctx context.Context, id string) (Tenant, bool, error) {
	if id == "" {
		return Tenant{}, false, ErrInvalidArgument
	}
	return s.query(ctx, selectTenant+` WHERE id = $1`, id)
}

// ByStripeAccount resolves the tenant owning a connected account.
// Not finding one is expected for sandbox/test accounts and is not an error.
func (s *Store) ByStripeAccount(ctx context.Context, accountID string) (Tenant, bool, error) {
	if accountID == "" {
		return Tenant{}, false, ErrInvalidArgument
	}
	return s.query(ctx, selectTenant+` WHERE stripe_account_id = $1`, accountID)
}

func (s *Store) query(ctx context.Context, q string, args ...any) (Tenant, bool, error) {
	var t Tenant
	err := s.db.QueryRowContext(ctx, q, args...).Scan(
		&t.ID,
		&t.Name,
		&t.StripeAccountID,
		&t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Tenant{}, false, nil
	}
	if err != nil {
		return Tenant{}, false, err
	}
	return t, true, nil
}
