package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edproton/xceltutors-next/internal/domains/payment/model"
	"github.com/edproton/xceltutors-next/internal/domains/payment/service"
	"github.com/edproton/xceltutors-next/internal/shared/response"
	"github.com/edproton/xceltutors-next/pkg/logger"
)

// SignatureHeader carries the gateway's payload signature.
const SignatureHeader = "Stripe-Signature"

// =====================================================
// PAYMENT WEBHOOK HANDLER
// =====================================================
type PaymentHandler struct {
	webhookService service.WebhookService
}

func NewPaymentHandler(webhookService service.WebhookService) *PaymentHandler {
	return &PaymentHandler{
		webhookService: webhookService,
	}
}

// RegisterRoutes registers the webhook route. It is unauthenticated;
// the signature check is the authentication.
func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/payments/webhook", h.HandleWebhook)
}

// HandleWebhook acknowledges only after the reduction committed; any
// other outcome is a non-2xx so the gateway redelivers.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	// Signature verification runs over the raw bytes, not a re-encoded
	// JSON body.
	payload, err := c.GetRawData()
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidSignature, "Could not read request body")
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if signature == "" {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidSignature, "Missing signature header")
		return
	}

	if err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature); err != nil {
		var paymentErr *model.PaymentError
		if errors.As(err, &paymentErr) {
			response.ErrorResponse(c, httpStatusForCode(paymentErr.Code), paymentErr.Code, paymentErr.Message)
			return
		}

		logger.Error("webhook processing failed", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Webhook processing failed")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"received": true})
}

func httpStatusForCode(code string) int {
	switch code {
	case model.ErrCodeInvalidSignature, model.ErrCodeInvalidMetadata:
		return http.StatusBadRequest
	case model.ErrCodeBookingNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
