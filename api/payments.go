package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vporoshin/aeroreserve/internal/service/payment"
)

type PaymentHandler struct {
	gateway *payment.Gateway
}

type processPaymentRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Method    string    `json:"method"`
}

type paymentResponse struct {
	PaymentID       string           `json:"payment_id"`
	Status          string           `json:"status"`
	ConfirmationRef string           `json:"confirmation_ref,omitempty"`
	Booking         *bookingResponse `json:"booking,omitempty"`
}

func NewPaymentHandler(gateway *payment.Gateway) *PaymentHandler {
	return &PaymentHandler{gateway: gateway}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.process)
}

func (h *PaymentHandler) process(c *gin.Context) {
	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.gateway.Process(c.Request.Context(), req.BookingID)
	switch {
	case errors.Is(err, payment.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, paymentResponse{
			PaymentID: result.PaymentID.String(),
			Status:    result.Status,
		})
		return
	case err != nil:
		writeBookingError(c, err)
		return
	}

	resp := paymentResponse{
		PaymentID:       result.PaymentID.String(),
		Status:          result.Status,
		ConfirmationRef: result.ConfirmationRef,
	}
	if result.Booking != nil {
		b := toBookingResponse(result.Booking)
		resp.Booking = &b
	}
	c.JSON(http.StatusOK, resp)
}
