package booking

import (
	"errors"
	"net/http"

	"carexyz/internal/api"
	"carexyz/internal/auth"
	"carexyz/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// StatusFor maps lifecycle errors to an HTTP status and a stable error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrDuplicateBooking):
		return http.StatusConflict, "duplicate_booking"
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway, "upstream_failure"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// RespondError writes err using StatusFor. Upstream and unknown failures are
// logged and reported without internal detail.
func RespondError(c *gin.Context, err error) {
	status, code := StatusFor(err)

	resp := api.ErrorResponse{Error: err.Error(), Code: code}
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		resp.Error = "validation failed"
		resp.Details = inputErr.Fields
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		resp.Error = http.StatusText(status)
	}

	c.JSON(status, resp)
}

func caller(c *gin.Context) (auth.Caller, bool) {
	cl, ok := auth.GetCaller(c)
	if !ok {
		RespondError(c, ErrUnauthorized)
		return auth.Caller{}, false
	}
	return cl, true
}

// CreateBooking godoc
// @Summary      Create booking
// @Description  Books a caregiving service for the current user. One active booking per service per day.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateInput  true  "Booking request"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, invalidField("body", "json", "request body must be valid JSON: "+err.Error()))
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), cl.UserID, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// ListMyBookings godoc
// @Summary      List my bookings
// @Description  Returns the current user's bookings, newest first.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Booking
// @Failure      401  {object}  api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), cl.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking godoc
// @Summary      Get booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      string  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), c.Param("bookingID"), cl)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// UpdateStatus godoc
// @Summary      Update booking status
// @Description  Owner or admin sets the booking status. Payment status is not affected.
// @Tags         bookings,admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      string               true  "Booking ID"
// @Param        request    body      UpdateStatusRequest  true  "New status"
// @Success      200        {object}  Booking
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/status [put]
// @Router       /admin/bookings/{bookingID}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, invalidField("Status", "required", "Status is required"))
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), c.Param("bookingID"), cl, req.Status)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// CancelBooking godoc
// @Summary      Cancel booking
// @Description  Cancels a Pending or Confirmed booking of the current user.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      string  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("bookingID"), cl.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListAllBookings godoc
// @Summary      List all bookings
// @Description  Admin-only: every booking, newest first.
// @Tags         admin,bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Booking
// @Failure      403  {object}  api.ErrorResponse
// @Router       /admin/bookings [get]
func (h *Handler) ListAllBookings(c *gin.Context) {
	bookings, err := h.service.ListAllBookings(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}
