package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	appbilling "github.com/promptatrium/backend/internal/application/billing"
	"github.com/promptatrium/backend/internal/domain/billing"
)

// PayPalWebhookHandler receives payout webhook deliveries from PayPal.
// The route is registered outside the JWT middleware; authenticity is
// established by verifying the transmission signature instead.
type PayPalWebhookHandler struct {
	BaseHandler
	webhookService *appbilling.PayPalWebhookService
}

// NewPayPalWebhookHandler creates a new PayPal webhook handler
func NewPayPalWebhookHandler(webhookService *appbilling.PayPalWebhookService) *PayPalWebhookHandler {
	return &PayPalWebhookHandler{webhookService: webhookService}
}

// HandleWebhook godoc
// @Summary      PayPal webhook
// @Description  Verify and process a PayPal payout webhook delivery
// @Tags         billing
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=appbilling.WebhookResult}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/paypal/webhook [post]
func (h *PayPalWebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		h.BadRequest(c, "Empty webhook body")
		return
	}

	verification := billing.WebhookVerification{
		TransmissionID:   c.GetHeader("PAYPAL-TRANSMISSION-ID"),
		TransmissionTime: c.GetHeader("PAYPAL-TRANSMISSION-TIME"),
		TransmissionSig:  c.GetHeader("PAYPAL-TRANSMISSION-SIG"),
		CertURL:          c.GetHeader("PAYPAL-CERT-URL"),
		AuthAlgo:         c.GetHeader("PAYPAL-AUTH-ALGO"),
		Event:            body,
	}
	if verification.TransmissionID == "" {
		h.BadRequest(c, "Missing PAYPAL-TRANSMISSION-ID header")
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), verification)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// PayPal retries anything that is not a 2xx, so duplicate and
	// irrelevant events still return 200 with Processed=false.
	h.Success(c, result)
}
