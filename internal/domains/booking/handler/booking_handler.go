package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edproton/xceltutors-next/internal/domains/booking/model"
	"github.com/edproton/xceltutors-next/internal/domains/booking/service"
	"github.com/edproton/xceltutors-next/internal/shared/response"
)

// =====================================================
// BOOKING HANDLER
// =====================================================
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterRoutes registers all booking routes
func (h *BookingHandler) RegisterRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)                     // POST   /v1/bookings
		bookings.GET("", h.ListBookings)                       // GET    /v1/bookings?page=1&limit=10&status=SCHEDULED
		bookings.GET("/:id", h.GetBooking)                     // GET    /v1/bookings/:id
		bookings.PATCH("/:id/reschedule", h.RescheduleBooking) // PATCH  /v1/bookings/:id/reschedule
		bookings.PATCH("/:id/cancel", h.CancelBooking)         // PATCH  /v1/bookings/:id/cancel
		bookings.PATCH("/:id/cancel/refund", h.RequestRefund)  // PATCH  /v1/bookings/:id/cancel/refund
		bookings.PATCH("/:id/confirm", h.ConfirmBooking)       // PATCH  /v1/bookings/:id/confirm
	}
}

// =====================================================
// CREATE BOOKING
// =====================================================

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidInput, "Invalid request body")
		return
	}

	result, err := h.bookingService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// =====================================================
// LIST / GET
// =====================================================

func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	var req model.ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidInput, "Invalid query parameters")
		return
	}
	req.ApplyDefaults()

	items, total, err := h.bookingService.List(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, response.NewMeta(req.Page, req.Limit, total))
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}
	bookingID, ok := h.bookingIDFromPath(c)
	if !ok {
		return
	}

	detail, err := h.bookingService.GetByID(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// =====================================================
// LIFECYCLE COMMANDS
// =====================================================

func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}
	bookingID, ok := h.bookingIDFromPath(c)
	if !ok {
		return
	}

	var req model.RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidInput, "Invalid request body")
		return
	}

	booking, err := h.bookingService.Reschedule(c.Request.Context(), userID, bookingID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	resp := model.NewBookingResponse(booking)
	response.Success(c, http.StatusOK, resp)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}
	bookingID, ok := h.bookingIDFromPath(c)
	if !ok {
		return
	}

	if err := h.bookingService.Cancel(c.Request.Context(), userID, bookingID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.StatusCanceled})
}

func (h *BookingHandler) RequestRefund(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}
	bookingID, ok := h.bookingIDFromPath(c)
	if !ok {
		return
	}

	if err := h.bookingService.RequestRefund(c.Request.Context(), userID, bookingID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.StatusAwaitingRefund})
}

func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}
	bookingID, ok := h.bookingIDFromPath(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Confirm(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	payload := gin.H{"status": booking.Status}
	if booking.Payment != nil && booking.Payment.SessionURL != nil {
		payload["paymentUrl"] = *booking.Payment.SessionURL
	}
	response.Success(c, http.StatusOK, payload)
}

// =====================================================
// HELPERS
// =====================================================

func (h *BookingHandler) userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	userID, ok := raw.(uuid.UUID)
	if !exists || !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, model.ErrCodeUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *BookingHandler) bookingIDFromPath(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidInput, "Booking id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BookingHandler) handleServiceError(c *gin.Context, err error) {
	var bookingErr *model.BookingError
	if errors.As(err, &bookingErr) {
		status := HTTPStatusForCode(bookingErr.Code)
		if bookingErr.Details != nil {
			response.ErrorWithDetails(c, status, bookingErr.Code, bookingErr.Message, bookingErr.Details)
			return
		}
		response.ErrorResponse(c, status, bookingErr.Code, bookingErr.Message)
		return
	}

	response.ErrorResponse(c, http.StatusInternalServerError, model.ErrCodeInternalServerError, "Internal server error")
}

// HTTPStatusForCode maps the stable error codes onto HTTP statuses:
// missing things 404, authorization 403, state and scheduling clashes
// 409, gateway call failures 502, everything else 400.
func HTTPStatusForCode(code string) int {
	switch code {
	case model.ErrCodeBookingNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized:
		return http.StatusForbidden
	case model.ErrCodeBookingConflict,
		model.ErrCodeOngoingFreeMeeting,
		model.ErrCodeRecurringTemplateConflict,
		model.ErrCodeOverrideConflict,
		model.ErrCodeInvalidStatus,
		model.ErrCodeInvalidStatusTutor,
		model.ErrCodeInvalidStatusStudent:
		return http.StatusConflict
	case model.ErrCodePaymentSessionCreationFailed,
		model.ErrCodePaymentCancellationFailed,
		model.ErrCodeRefundProcessingFailed:
		return http.StatusBadGateway
	case model.ErrCodeInternalServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
