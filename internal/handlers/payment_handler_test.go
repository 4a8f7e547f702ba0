package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"event-ticketing/internal/services"
	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) Initiate(ctx context.Context, in services.PurchaseInput) (*services.PurchaseResult, error) {
	args := m.Called(ctx, in)
	result, _ := args.Get(0).(*services.PurchaseResult)
	return result, args.Error(1)
}

func (m *MockPaymentProcessor) Verify(ctx context.Context, reference string) (*services.VerifyResult, error) {
	args := m.Called(ctx, reference)
	result, _ := args.Get(0).(*services.VerifyResult)
	return result, args.Error(1)
}

func (m *MockPaymentProcessor) CheckIn(ctx context.Context, txnID, ticketID string) (*models.Buyer, error) {
	args := m.Called(ctx, txnID, ticketID)
	buyer, _ := args.Get(0).(*models.Buyer)
	return buyer, args.Error(1)
}

func TestPaymentHandler_VerifyRespondsFlat(t *testing.T) {
	payments := &MockPaymentProcessor{}
	payments.On("Verify", mock.Anything, "abc123def456").Return(&services.VerifyResult{
		Transaction: &models.Transaction{TxnID: "TXN-abc123def456", Status: models.TransactionCompleted},
		Event:       models.EventSummary{Title: "Lagos Jazz Night"},
		Ticket:      models.TierSummary{TicketName: "Regular"},
	}, nil)

	e := newRequestEvent(http.MethodGet, "/api/v1/payment/verify/abc123def456")
	e.Request.SetPathValue("reference", "abc123def456")

	require.NoError(t, NewPaymentHandler(payments).Verify(e))

	rec := e.Response.(*httptest.ResponseRecorder)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "transaction")
	assert.Contains(t, body, "event")
	assert.Contains(t, body, "ticket")
	assert.NotContains(t, body, "data")
	payments.AssertExpectations(t)
}

func TestPaymentHandler_VerifyUnknownReference(t *testing.T) {
	payments := &MockPaymentProcessor{}
	payments.On("Verify", mock.Anything, "deadbeef0000").Return(nil, status.ErrInvalidTransaction)

	e := newRequestEvent(http.MethodGet, "/api/v1/payment/verify/deadbeef0000")
	e.Request.SetPathValue("reference", "deadbeef0000")

	err := NewPaymentHandler(payments).Verify(e)

	requireAPIStatus(t, err, http.StatusBadRequest)
}

func TestPaymentHandler_CheckInReadsQuery(t *testing.T) {
	payments := &MockPaymentProcessor{}
	payments.On("CheckIn", mock.Anything, "TXN-abc123def456", "REG-000001").
		Return(&models.Buyer{FullName: "Ada", TicketID: "REG-000001", CheckedIn: true}, nil)

	e := newRequestEvent(http.MethodGet, "/api/v1/payment/check-in?txnId=TXN-abc123def456&ticketId=REG-000001")

	require.NoError(t, NewPaymentHandler(payments).CheckIn(e))
	assert.Equal(t, http.StatusOK, e.Response.(*httptest.ResponseRecorder).Code)
	payments.AssertExpectations(t)
}
