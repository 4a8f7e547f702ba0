package bank

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"event-ticketing/utils"
)

// SandboxGateway is an in-process gateway for development. Every initialized
// reference verifies as paid; unknown references verify as abandoned.
type SandboxGateway struct {
	callbackURL string

	mu       sync.Mutex
	payments map[string]*InitializeRequest
}

func NewSandboxGateway(callbackURL string) *SandboxGateway {
	return &SandboxGateway{
		callbackURL: callbackURL,
		payments:    make(map[string]*InitializeRequest),
	}
}

func (s *SandboxGateway) Provider() Provider {
	return ProviderSandbox
}

func (s *SandboxGateway) Initialize(_ context.Context, req *InitializeRequest) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[req.Reference]; exists {
		return nil, fmt.Errorf("sandbox: duplicate reference %s", req.Reference)
	}
	s.payments[req.Reference] = req

	callback := req.CallbackURL
	if callback == "" {
		callback = s.callbackURL
	}
	u, err := url.Parse(callback)
	if err != nil {
		return nil, fmt.Errorf("sandbox: invalid callback url: %w", err)
	}
	q := u.Query()
	q.Set("reference", req.Reference)
	q.Set("trxref", req.Reference)
	u.RawQuery = q.Encode()

	return &Checkout{AuthorizationURL: u.String(), Reference: req.Reference}, nil
}

func (s *SandboxGateway) Verify(_ context.Context, reference string) (*Charge, error) {
	s.mu.Lock()
	req, ok := s.payments[reference]
	s.mu.Unlock()

	if !ok {
		return &Charge{Reference: reference, Status: "abandoned"}, nil
	}

	id, err := utils.GenerateCode(6)
	if err != nil {
		return nil, err
	}
	return &Charge{
		ID:        "SBX-" + id,
		Reference: reference,
		Status:    ChargeSuccess,
		Amount:    req.Amount,
		Currency:  req.Currency,
		PaidAt:    time.Now(),
	}, nil
}
