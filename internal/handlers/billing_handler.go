package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/metrics"
	"github.com/justsurfingit/hirepath/internal/pricing"
)

const maxWebhookBody = 64 << 10

// BillingHandler answers 503 when payments are not configured.
type BillingHandler struct {
	Billing *pricing.Billing
	Log     *slog.Logger
}

func NewBillingHandler(billing *pricing.Billing, log *slog.Logger) *BillingHandler {
	return &BillingHandler{Billing: billing, Log: log}
}

// Checkout is POST /billing/checkout
func (h *BillingHandler) Checkout(c *gin.Context) {
	if h.Billing == nil {
		unavailable(c, "billing")
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dtos.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.Billing.Checkout(c.Request.Context(), userID, req.PackID)
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		respondError(c, h.Log, err)
		return
	}
	result := "session"
	if session.ID == "" {
		result = "free"
	}
	metrics.CheckoutsTotal.WithLabelValues(result).Inc()
	c.JSON(http.StatusOK, dtos.CheckoutResponse{SessionID: session.ID, URL: session.URL})
}

// Webhook is POST /billing/webhook, called by Stripe.
func (h *BillingHandler) Webhook(c *gin.Context) {
	if h.Billing == nil {
		unavailable(c, "billing")
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}
	if err := h.Billing.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		h.Log.Warn("Webhook rejected", "error", err)
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
