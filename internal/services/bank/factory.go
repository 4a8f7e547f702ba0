package bank

import (
	"fmt"
	"time"

	"event-ticketing/internal/services/bank/paystack"
	"event-ticketing/monitoring"
)

// Config selects and configures the payment gateway.
type Config struct {
	Provider    Provider
	Paystack    paystack.Config
	CallbackURL string
}

// Factory creates gateways by provider type.
type Factory struct {
	monitor *monitoring.Monitor
}

func NewFactory(monitor *monitoring.Monitor) *Factory {
	return &Factory{monitor: monitor}
}

// CreateGateway returns the gateway for cfg.Provider.
func (f *Factory) CreateGateway(cfg Config) (Gateway, error) {
	switch cfg.Provider {
	case ProviderPaystack, "":
		if cfg.Paystack.SecretKey == "" {
			return nil, fmt.Errorf("paystack gateway: secret key is not configured")
		}
		if cfg.Paystack.Timeout <= 0 {
			cfg.Paystack.Timeout = 10 * time.Second
		}
		return NewPaystackGateway(&cfg.Paystack, f.monitor), nil

	case ProviderSandbox:
		return NewSandboxGateway(cfg.CallbackURL), nil

	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", cfg.Provider)
	}
}

// SupportedProviders returns the providers CreateGateway accepts.
func (f *Factory) SupportedProviders() []Provider {
	return []Provider{ProviderPaystack, ProviderSandbox}
}
