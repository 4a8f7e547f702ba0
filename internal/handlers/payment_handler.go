package handlers

import (
	"context"
	"net/http"

	"event-ticketing/internal/services"
	"event-ticketing/models"

	"github.com/pocketbase/pocketbase/core"
)

// PaymentProcessor is the ledger surface the payment routes use.
type PaymentProcessor interface {
	Initiate(ctx context.Context, in services.PurchaseInput) (*services.PurchaseResult, error)
	Verify(ctx context.Context, reference string) (*services.VerifyResult, error)
	CheckIn(ctx context.Context, txnID, ticketID string) (*models.Buyer, error)
}

type PaymentHandler struct {
	paymentService PaymentProcessor
}

func NewPaymentHandler(paymentService PaymentProcessor) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Purchase opens a checkout for one tier.
func (h *PaymentHandler) Purchase(e *core.RequestEvent) error {
	var req services.PurchaseInput
	if err := bindBody(e, &req); err != nil {
		return err
	}

	result, err := h.paymentService.Initiate(e.Request.Context(), req)
	if err != nil {
		return apiError(e, "paymentHandler.Purchase()", err)
	}
	return e.JSON(http.StatusOK, result)
}

// Verify responds with {transaction, event, ticket}.
func (h *PaymentHandler) Verify(e *core.RequestEvent) error {
	result, err := h.paymentService.Verify(e.Request.Context(), e.Request.PathValue("reference"))
	if err != nil {
		return apiError(e, "paymentHandler.Verify()", err)
	}
	return e.JSON(http.StatusOK, result)
}

// CheckIn takes txnId and ticketId from the query string, as encoded in the
// ticket QR code.
func (h *PaymentHandler) CheckIn(e *core.RequestEvent) error {
	query := e.Request.URL.Query()

	buyer, err := h.paymentService.CheckIn(e.Request.Context(), query.Get("txnId"), query.Get("ticketId"))
	if err != nil {
		return apiError(e, "paymentHandler.CheckIn()", err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"message": "Ticket checked in",
		"buyer":   buyer,
	})
}
