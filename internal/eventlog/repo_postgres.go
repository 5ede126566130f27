package eventlog

import (
	"context"
	"database/sql"
	"time"
)

// PostgresRepo persists the trail in the webhook_events table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, rec Record) error {
	const q = `
INSERT INTO webhook_events (
  id, stripe_event_id, event_type, account, payload, received_at
) VALUES (
  $1,$2,$3,NULLIF($4,''),$5,$6
)
`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.StripeEventID,
		rec.EventType,
		rec.Account,
		rec.Payload,
		rec.ReceivedAt,
	)
	return err
}

func (r *PostgresRepo) MarkOutcome(ctx context.Context, id string, processedAt time.Time, processError string) error {
	const q = `
UPDATE webhook_events
SET processed_at = $2, process_error = NULLIF($3, '')
WHERE id = $1
`
	_, err := r.db.ExecContext(ctx, q, id, processedAt, processError)
	return err
}
