package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PurchaseRequest is the purchase payload
type PurchaseRequest struct {
	ListingID int64 `json:"listing_id" binding:"required"`
}

// purchase handles POST /orders
func (h *Handler) purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	order, err := h.orders.Purchase(c.Request.Context(), principalFrom(c), req.ListingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// getOrder handles GET /orders/:id
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// shipOrder handles PATCH /orders/:id/ship
func (h *Handler) shipOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.orders.Ship(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// deliverOrder handles PATCH /orders/:id/deliver
func (h *Handler) deliverOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.orders.Deliver(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// completeOrder handles PATCH /orders/:id/complete
func (h *Handler) completeOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.orders.Complete(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// listMyPurchases handles GET /me/orders
func (h *Handler) listMyPurchases(c *gin.Context) {
	orders, err := h.orders.ListForBuyer(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// listMySales handles GET /me/sales
func (h *Handler) listMySales(c *gin.Context) {
	orders, err := h.orders.ListForSeller(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// listAllOrders handles GET /admin/orders
func (h *Handler) listAllOrders(c *gin.Context) {
	orders, err := h.orders.ListAllForAdmin(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// MessageRequest is the post-message payload
type MessageRequest struct {
	Text string `json:"text"`
}

// listMessages handles GET /orders/:id/messages
func (h *Handler) listMessages(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	messages, err := h.messages.ListMessages(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// postMessage handles POST /orders/:id/messages
func (h *Handler) postMessage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	msg, err := h.messages.PostMessage(c.Request.Context(), principalFrom(c), id, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}
