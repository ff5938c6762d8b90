package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateListingRequest is the listing creation payload
type CreateListingRequest struct {
	Title string `json:"title"`
	Price *int64 `json:"price" binding:"required"`
}

// createListing handles POST /listings
func (h *Handler) createListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), principalFrom(c), req.Title, *req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// listListings handles GET /listings; ?q= filters by title substring
func (h *Handler) listListings(c *gin.Context) {
	listings, err := h.listings.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// listMyListings handles GET /listings/mine
func (h *Handler) listMyListings(c *gin.Context) {
	listings, err := h.listings.ListMine(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// pauseListing handles PATCH /listings/:id/pause
func (h *Handler) pauseListing(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	listing, err := h.listings.Pause(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// activateListing handles PATCH /listings/:id/activate
func (h *Handler) activateListing(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	listing, err := h.listings.Activate(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// deleteListing handles DELETE /listings/:id
func (h *Handler) deleteListing(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.listings.Delete(c.Request.Context(), principalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
