package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sgazz/SuperMoment/internal/models"
	"github.com/sgazz/SuperMoment/internal/services"
)

type createVoucherRequest struct {
	EventID     string     `json:"event_id" binding:"required"`
	MaxUses     int        `json:"max_uses"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Description string     `json:"description"`
}

func CreateVoucher(vs *services.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		var req createVoucherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		eventID, err := uuid.Parse(req.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event_id format"))
			return
		}

		voucher, err := vs.CreateVoucher(c.Request.Context(), services.CreateVoucherInput{
			EventID:     eventID,
			MaxUses:     req.MaxUses,
			ExpiresAt:   req.ExpiresAt,
			Description: req.Description,
		}, identity)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(voucher, "Voucher created successfully"))
	}
}

func GetVoucher(vs *services.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		voucher, err := vs.GetOwnedVoucher(c.Request.Context(), c.Param("code"), identity)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(voucher, ""))
	}
}

func UpdateVoucher(vs *services.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		var patch models.VoucherPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		voucher, err := vs.UpdateVoucher(c.Request.Context(), c.Param("code"), &patch, identity)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(voucher, "Voucher updated successfully"))
	}
}

func CancelVoucher(vs *services.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		voucher, err := vs.CancelVoucher(c.Request.Context(), c.Param("code"), identity)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(voucher, "Voucher cancelled"))
	}
}

// ListEventVouchers lists the vouchers issued for an event to its admin.
func ListEventVouchers(vs *services.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		identity, ok := callerIdentity(c)
		if !ok {
			return
		}

		vouchers, err := vs.ListVouchersForEvent(c.Request.Context(), id, identity)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ListResponse(vouchers, len(vouchers)))
	}
}
