package httpapi

import (
	"errors"
	"net/http"

	"booking-platform/internal/auth"
	"booking-platform/internal/booking"
	"booking-platform/internal/ledger"

	"github.com/gin-gonic/gin"
)

// Handlers groups the read-only ops endpoints the dashboard consumes.
// Keep these thin: resolve tenant from claims, call the store, return JSON.
// Reconciliation state is only ever mutated by webhook deliveries.

type Handlers struct {
	Payments *ledger.Store
	Bookings *booking.Store
}

// GetPayment returns the ledger row for a processor payment-intent id,
// scoped to the caller's tenant.
func (h Handlers) GetPayment(c *gin.Context) {
	if h.Payments == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "ledger not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil || tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	intentID := c.Param("payment_intent_id")
	if intentID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "payment_intent_id required"})
		return
	}

	p, found, err := h.Payments.PaymentByIntent(c.Request.Context(), intentID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "payment lookup failed"})
		return
	}
	// Cross-tenant rows must be indistinguishable from missing rows.
	if !found || p.TenantID != tenantID {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetBooking returns a booking's reconciliation-visible state.
func (h Handlers) GetBooking(c *gin.Context) {
	if h.Bookings == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "bookings not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil || tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	bookingID := c.Param("booking_id")
	if bookingID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "booking_id required"})
		return
	}

	b, err := h.Bookings.ByID(c.Request.Context(), tenantID, bookingID)
	if errors.Is(err, booking.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "booking lookup failed"})
		return
	}
	c.JSON(http.StatusOK, b)
}
