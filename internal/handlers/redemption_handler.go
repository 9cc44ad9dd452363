package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sgazz/SuperMoment/internal/models"
	"github.com/sgazz/SuperMoment/internal/services"
)

type redeemRequest struct {
	Code string `json:"code" binding:"required"`
}

// RedeemVoucher answers 200 with the joined event and voucher, or 400 with
// the rejection reason.
func RedeemVoucher(rs *services.RedemptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		var req redeemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("voucher code is required"))
			return
		}

		result, err := rs.RedeemVoucher(c.Request.Context(), req.Code, identity)
		if err != nil {
			respondError(c, err)
			return
		}
		if !result.Success {
			c.JSON(http.StatusBadRequest, models.RedemptionResponse(result))
			return
		}

		c.JSON(http.StatusOK, models.RedemptionResponse(result))
	}
}
