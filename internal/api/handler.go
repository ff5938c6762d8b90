package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"marketplace-order-service/internal/auth"
	"marketplace-order-service/internal/service"
	"marketplace-order-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ActivityCounter serves the unseen-activity counters the notification worker
// maintains
type ActivityCounter interface {
	GetActivity(ctx context.Context, userID int64) (int64, error)
	ClearActivity(ctx context.Context, userID int64) error
}

// Handler contains HTTP handlers
type Handler struct {
	verifier *auth.Verifier
	orders   *service.OrderService
	messages *service.MessageService
	listings *service.ListingService
	activity ActivityCounter
}

// NewHandler creates a new HTTP handler
func NewHandler(verifier *auth.Verifier, orders *service.OrderService, messages *service.MessageService, listings *service.ListingService, activity ActivityCounter) *Handler {
	return &Handler{
		verifier: verifier,
		orders:   orders,
		messages: messages,
		listings: listings,
		activity: activity,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Listing browse is public.
		v1.GET("/listings", h.listListings)

		authed := v1.Group("")
		authed.Use(h.requireAuth())
		{
			authed.POST("/listings", h.createListing)
			authed.GET("/listings/mine", h.listMyListings)
			authed.PATCH("/listings/:id/pause", h.pauseListing)
			authed.PATCH("/listings/:id/activate", h.activateListing)
			authed.DELETE("/listings/:id", h.deleteListing)

			authed.POST("/orders", h.purchase)
			authed.GET("/orders/:id", h.getOrder)
			authed.PATCH("/orders/:id/ship", h.shipOrder)
			authed.PATCH("/orders/:id/deliver", h.deliverOrder)
			authed.PATCH("/orders/:id/complete", h.completeOrder)

			authed.GET("/orders/:id/messages", h.listMessages)
			authed.POST("/orders/:id/messages", h.postMessage)

			authed.GET("/me/orders", h.listMyPurchases)
			authed.GET("/me/sales", h.listMySales)
			authed.GET("/me/activity", h.getActivity)
			authed.DELETE("/me/activity", h.clearActivity)

			authed.GET("/admin/orders", h.listAllOrders)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getActivity handles GET /me/activity
func (h *Handler) getActivity(c *gin.Context) {
	count, err := h.activity.GetActivity(c.Request.Context(), principalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// clearActivity handles DELETE /me/activity
func (h *Handler) clearActivity(c *gin.Context) {
	if err := h.activity.ClearActivity(c.Request.Context(), principalFrom(c).UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// idParam parses the :id path parameter; a non-numeric ID is a 400
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_id"})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
