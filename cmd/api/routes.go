package main

import (
	"booking-platform/internal/httpapi"
	"booking-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, webhook *httpapi.WebhookHandler, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Processor webhooks (public; authenticated by signature verification).
	r.POST("/webhooks/stripe", webhook.HandleEvent)

	// Read-only ops API consumed by the dashboard.
	v1 := r.Group("/v1")
	v1.Use(authMW)
	v1.Use(rbac.RequireTenant())
	{
		payments := v1.Group("/payments")
		payments.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleFinance))
		{
			payments.GET("/:payment_intent_id", h.GetPayment)
		}

		bookings := v1.Group("/bookings")
		bookings.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleStaff, rbac.RoleFinance))
		{
			bookings.GET("/:booking_id", h.GetBooking)
		}
	}
}
