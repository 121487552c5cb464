package payment

import (
	"errors"
	"io"
	"net/http"

	"carexyz/internal/api"
	"carexyz/internal/auth"
	"carexyz/internal/booking"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type StartCheckoutRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}

type VerifyPaymentRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	BookingID string `json:"bookingId" binding:"required"`
}

type VerifyPaymentResponse struct {
	Success bool             `json:"success"`
	Booking *booking.Booking `json:"booking"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAlreadyPaid):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error(), Code: "already_paid"})
	case errors.Is(err, ErrPaymentIncomplete):
		c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: err.Error(), Code: "payment_incomplete"})
	case errors.Is(err, ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: ErrInvalidSignature.Error(), Code: "invalid_signature"})
	default:
		booking.RespondError(c, err)
	}
}

// StartCheckout godoc
// @Summary      Start checkout
// @Description  Creates a hosted checkout session for an unpaid booking owned by the caller.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      StartCheckoutRequest  true  "Booking to pay"
// @Success      200      {object}  Checkout
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse
// @Router       /payments/checkout [post]
func (h *Handler) StartCheckout(c *gin.Context) {
	caller, ok := auth.GetCaller(c)
	if !ok {
		respondError(c, booking.ErrUnauthorized)
		return
	}

	var req StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "bookingId is required", Code: "invalid_input"})
		return
	}

	checkout, err := h.service.StartCheckout(c.Request.Context(), req.BookingID, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkout)
}

// VerifyPayment godoc
// @Summary      Verify payment
// @Description  Confirms a completed checkout after the payment page redirects back and marks the booking paid.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      VerifyPaymentRequest  true  "Session and booking"
// @Success      200      {object}  VerifyPaymentResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      402      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse
// @Router       /payments/verify [post]
func (h *Handler) VerifyPayment(c *gin.Context) {
	caller, ok := auth.GetCaller(c)
	if !ok {
		respondError(c, booking.ErrUnauthorized)
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ErrMissingReference)
		return
	}

	b, err := h.service.VerifyPayment(c.Request.Context(), req.SessionID, req.BookingID, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyPaymentResponse{Success: true, Booking: b})
}

// Webhook godoc
// @Summary      Payment webhook
// @Description  Receives signed checkout events from the payment gateway.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header    string  true  "Webhook signature"
// @Success      200               {object}  WebhookResponse
// @Failure      400               {object}  api.ErrorResponse
// @Router       /payments/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unreadable body", Code: "invalid_input"})
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{Received: true})
}
