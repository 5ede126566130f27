package eventlog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for the webhook event trail.
type Repository interface {
	Append(ctx context.Context, r Record) error
	MarkOutcome(ctx context.Context, id string, processedAt time.Time, processError string) error
}

// Service records webhook deliveries and their outcomes.
//
// Best-effort by contract: callers must not block or fail reconciliation on a
// trail write going wrong.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidRecord = errors.New("eventlog: invalid record")

// Append stores a received-event record and returns its id for the later
// outcome stamp.
func (s *Service) Append(ctx context.Context, r Record) (string, error) {
	if s.repo == nil {
		return "", errors.New("eventlog: repository not configured")
	}
	if r.StripeEventID == "" || r.EventType == "" {
		return "", ErrInvalidRecord
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = s.clock().UTC()
	}
	if err := s.repo.Append(ctx, r); err != nil {
		return "", err
	}
	return r.ID, nil
}

// MarkProcessed stamps a successful outcome.
func (s *Service) MarkProcessed(ctx context.Context, id string) error {
	if s.repo == nil || id == "" {
		return ErrInvalidRecord
	}
	return s.repo.MarkOutcome(ctx, id, s.clock().UTC(), "")
}

// MarkFailed stamps a failed outcome with a truncated reason.
func (s *Service) MarkFailed(ctx context.Context, id, reason string) error {
	if s.repo == nil || id == "" {
		return ErrInvalidRecord
	}
	return s.repo.MarkOutcome(ctx, id, s.clock().UTC(), truncate(reason, 250))
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
