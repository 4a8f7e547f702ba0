package bank

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"event-ticketing/internal/services/bank/paystack"
	"event-ticketing/internal/status"
	"event-ticketing/monitoring"
	"event-ticketing/utils"
)

// PaystackGateway adapts the Paystack client to Gateway. Calls go through a
// circuit breaker that ignores client errors.
type PaystackGateway struct {
	client  *paystack.Client
	breaker *utils.CircuitBreaker
	monitor *monitoring.Monitor
}

func NewPaystackGateway(cfg *paystack.Config, monitor *monitoring.Monitor) *PaystackGateway {
	return &PaystackGateway{
		client: paystack.NewClient(cfg),
		breaker: utils.NewCircuitBreakerWithSettings("paystack", utils.BreakerSettings{
			IsFailure: isGatewayFailure,
		}),
		monitor: monitor,
	}
}

func (g *PaystackGateway) Provider() Provider {
	return ProviderPaystack
}

func (g *PaystackGateway) Initialize(ctx context.Context, req *InitializeRequest) (*Checkout, error) {
	params := &paystack.InitializeParams{
		Email:       req.Email,
		Amount:      ToMinorUnits(req.Amount),
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}

	start := time.Now()
	res, err := g.breaker.Execute(ctx, func() (any, error) {
		return g.client.InitializeTransaction(ctx, params)
	})
	g.monitor.TrackGatewayCall("initialize", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("paystack initialize %s: %w: %w", req.Reference, status.ErrUpstream, err)
	}

	data := res.(*paystack.InitializeData)
	return &Checkout{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (g *PaystackGateway) Verify(ctx context.Context, reference string) (*Charge, error) {
	start := time.Now()
	res, err := g.breaker.Execute(ctx, func() (any, error) {
		return g.client.VerifyTransaction(ctx, reference)
	})
	g.monitor.TrackGatewayCall("verify", err, time.Since(start))

	var apiErr *paystack.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		// the gateway has no usable charge for this reference
		return &Charge{Reference: reference, Status: "not_found", GatewayResponse: apiErr.Message}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("paystack verify %s: %w: %w", reference, status.ErrUpstream, err)
	}

	txn := res.(*paystack.Transaction)
	charge := &Charge{
		ID:              strconv.FormatInt(txn.ID, 10),
		Reference:       txn.Reference,
		Status:          txn.Status,
		Amount:          FromMinorUnits(txn.Amount),
		Currency:        txn.Currency,
		GatewayResponse: txn.GatewayResponse,
	}
	if txn.PaidAt != nil {
		charge.PaidAt = *txn.PaidAt
	}
	return charge, nil
}

func isGatewayFailure(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *paystack.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
