package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"booking-platform/internal/eventlog"
	"booking-platform/internal/reconcile"
	"booking-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

// Stripe recommends bounding webhook bodies to protect against oversized
// payloads.
const maxWebhookBody = 65536

// ReplayMarker records the first sighting of an event id. Advisory only: it
// feeds logs and the ops trail, never the processing decision.
type ReplayMarker interface {
	FirstSight(ctx context.Context, eventID string) (bool, error)
}

// WebhookHandler is the ingress for processor event deliveries.
//
// It verifies the signature, records the delivery, dispatches to the
// reconciliation router and maps the Result to a transport acknowledgment:
//   - Result.Err set    -> 500, the processor should retry
//   - anything else     -> 200, acknowledge-and-drop (non-fatal failures are
//     logged; retrying would reproduce the same gap)
type WebhookHandler struct {
	Router        *reconcile.Router
	Deps          reconcile.Deps
	Trail         *eventlog.Service
	Replay        ReplayMarker
	SigningSecret string
}

func (h *WebhookHandler) HandleEvent(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Router == nil || h.SigningSecret == "" {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "webhook handler not configured"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		log.Warn("webhook body read failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	event, err := webhook.ConstructEvent(body, c.GetHeader("Stripe-Signature"), h.SigningSecret)
	if err != nil {
		log.Warn("webhook signature verification failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	ctx := c.Request.Context()

	if h.Replay != nil {
		first, err := h.Replay.FirstSight(ctx, event.ID)
		if err != nil {
			log.Warn("replay marker unavailable", "err", err)
		} else if !first {
			log.Info("replayed delivery", "event_id", event.ID, "type", event.Type)
		}
	}

	trailID := h.appendTrail(ctx, log, &event, body)

	deps := h.Deps
	if deps.Log == nil {
		deps.Log = log
	}
	res := h.Router.Dispatch(ctx, reconcile.NewContext(&event, deps))

	h.stampTrail(ctx, log, trailID, res)

	if res.Err != nil {
		log.Error("reconciliation failed",
			"event_id", event.ID, "type", event.Type, "err", res.Err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}
	if !res.Success {
		log.Warn("event not attributed",
			"event_id", event.ID, "type", event.Type, "message", res.Message)
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "message": res.Message})
}

func (h *WebhookHandler) appendTrail(ctx context.Context, log *slog.Logger, ev *stripe.Event, body []byte) string {
	if h.Trail == nil {
		return ""
	}
	id, err := h.Trail.Append(ctx, eventlog.Record{
		StripeEventID: ev.ID,
		EventType:     string(ev.Type),
		Account:       ev.Account,
		Payload:       string(body),
	})
	if err != nil {
		log.Warn("event trail append failed", "event_id", ev.ID, "err", err)
		return ""
	}
	return id
}

func (h *WebhookHandler) stampTrail(ctx context.Context, log *slog.Logger, trailID string, res reconcile.Result) {
	if h.Trail == nil || trailID == "" {
		return
	}
	var err error
	switch {
	case res.Err != nil:
		err = h.Trail.MarkFailed(ctx, trailID, res.Err.Error())
	case !res.Success:
		err = h.Trail.MarkFailed(ctx, trailID, res.Message)
	default:
		err = h.Trail.MarkProcessed(ctx, trailID)
	}
	if err != nil {
		log.Warn("event trail outcome stamp failed", "trail_id", trailID, "err", err)
	}
}
