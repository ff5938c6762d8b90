package api

import (
	"errors"
	"net/http"

	"marketplace-order-service/internal/models"
	"marketplace-order-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a domain error to its HTTP status and a stable error
// code. Anything unmapped is a 500 and gets logged; domain rejections do not.
func respondError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": code})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrListingNotFound), errors.Is(err, models.ErrOrderNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrOwnListing):
		return http.StatusForbidden, "own_listing"
	case errors.Is(err, models.ErrAdminReadOnly):
		return http.StatusForbidden, "admin_view_only"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, models.ErrNotPurchasable):
		return http.StatusConflict, "not_purchasable"
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict, "invalid_status"
	case errors.Is(err, models.ErrOrderClosed):
		return http.StatusConflict, "completed"
	case errors.Is(err, models.ErrEmptyMessage):
		return http.StatusBadRequest, "empty"
	case errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
