package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bookingHandler "github.com/edproton/xceltutors-next/internal/domains/booking/handler"
	bookingModel "github.com/edproton/xceltutors-next/internal/domains/booking/model"
	"github.com/edproton/xceltutors-next/internal/domains/recurring/model"
	"github.com/edproton/xceltutors-next/internal/domains/recurring/service"
	"github.com/edproton/xceltutors-next/internal/shared/response"
)

// =====================================================
// RECURRING HANDLER
// =====================================================
type RecurringHandler struct {
	recurringService service.RecurringService
}

func NewRecurringHandler(recurringService service.RecurringService) *RecurringHandler {
	return &RecurringHandler{
		recurringService: recurringService,
	}
}

// RegisterRoutes registers the recurrence route under /bookings.
func (h *RecurringHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/bookings/recurring", h.CreateRecurringBookings)
}

// CreateRecurringBookings returns 201 with the template id when every
// occurrence could be placed, 200 with the conflict list otherwise.
func (h *RecurringHandler) CreateRecurringBookings(c *gin.Context) {
	raw, exists := c.Get("user_id")
	userID, ok := raw.(uuid.UUID)
	if !exists || !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, bookingModel.ErrCodeUnauthorized, "Authentication required")
		return
	}

	var req model.CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, bookingModel.ErrCodeInvalidInput, "Invalid request body")
		return
	}

	result, err := h.recurringService.CreateRecurringBookings(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if result.RecurringTemplateID == nil {
		response.Success(c, http.StatusOK, result)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

func (h *RecurringHandler) handleServiceError(c *gin.Context, err error) {
	var bookingErr *bookingModel.BookingError
	if errors.As(err, &bookingErr) {
		status := bookingHandler.HTTPStatusForCode(bookingErr.Code)
		if bookingErr.Details != nil {
			response.ErrorWithDetails(c, status, bookingErr.Code, bookingErr.Message, bookingErr.Details)
			return
		}
		response.ErrorResponse(c, status, bookingErr.Code, bookingErr.Message)
		return
	}

	response.ErrorResponse(c, http.StatusInternalServerError, bookingModel.ErrCodeInternalServerError, "Internal server error")
}
