package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/commands"
	paymentapp "homestay/internal/app/handlers/payments"
	"homestay/internal/infra/obs"
)

type PaymentHandler struct {
	Commands commands.Bus
	Metrics  obs.Metrics
}

type initializePaymentRequest struct {
	BookingID     string `json:"booking_id" binding:"required"`
	Currency      string `json:"currency"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email" binding:"required"`
	CustomerPhone string `json:"customer_phone"`
	ReturnURL     string `json:"return_url"`
}

func (h PaymentHandler) Initialize(c *gin.Context) {
	var req initializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}
	cmd := paymentapp.InitializePaymentCommand{
		BookingID:       req.BookingID,
		Currency:        req.Currency,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ReturnURL:       req.ReturnURL,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[paymentapp.InitializePaymentCommand, *paymentapp.InitializePaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.Metrics.PaymentInitialized("rejected")
		respondError(c, err)
		return
	}
	h.Metrics.PaymentInitialized(result.Status)
	c.JSON(http.StatusCreated, result)
}

func (h PaymentHandler) Verify(c *gin.Context) {
	cmd := paymentapp.VerifyPaymentCommand{Reference: c.Param("reference")}
	result, err := commands.Dispatch[paymentapp.VerifyPaymentCommand, *paymentapp.VerifyPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Metrics.PaymentVerified(result.Status)
	c.JSON(http.StatusOK, result)
}

type webhookPayload struct {
	TxRef     string `json:"tx_ref"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Webhook runs the same verify path as the guest-facing endpoint. The
// reported status in the payload is advisory only; the processor is always
// re-queried, so replayed or out-of-order deliveries cannot corrupt state.
func (h PaymentHandler) Webhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}
	reference := payload.TxRef
	if reference == "" {
		reference = payload.Reference
	}
	cmd := paymentapp.VerifyPaymentCommand{Reference: reference}
	result, err := commands.Dispatch[paymentapp.VerifyPaymentCommand, *paymentapp.VerifyPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Metrics.PaymentVerified(result.Status)
	c.JSON(http.StatusOK, result)
}

var _ PaymentHTTP = PaymentHandler{}
