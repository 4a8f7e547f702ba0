package bank

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Provider names a payment gateway implementation.
type Provider string

const (
	ProviderPaystack Provider = "paystack"
	ProviderSandbox  Provider = "sandbox"
)

// ChargeSuccess is the only gateway status that confirms a payment.
const ChargeSuccess = "success"

// InitializeRequest opens a checkout session for one ledger entry.
type InitializeRequest struct {
	Email       string            `json:"email"`
	Amount      decimal.Decimal   `json:"amount"` // major units, converted by the gateway
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Checkout is where the buyer is redirected to pay.
type Checkout struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code,omitempty"`
	Reference        string `json:"reference"`
}

// Charge is the gateway's view of a payment.
type Charge struct {
	ID              string          `json:"id"`
	Reference       string          `json:"reference"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	GatewayResponse string          `json:"gateway_response,omitempty"`
	PaidAt          time.Time       `json:"paid_at,omitempty"`
}

func (c *Charge) Succeeded() bool {
	return c != nil && c.Status == ChargeSuccess
}

// Gateway is the contract every payment provider implements.
type Gateway interface {
	// Provider returns the gateway provider type
	Provider() Provider

	// Initialize opens a payment session keyed by req.Reference
	Initialize(ctx context.Context, req *InitializeRequest) (*Checkout, error)

	// Verify asks the gateway for the charge status of reference
	Verify(ctx context.Context, reference string) (*Charge, error)
}

// ToMinorUnits converts a major-unit amount (naira, dollars) to its
// smallest unit, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
