package payment

import "fmt"

// NewGateway builds the gateway named by configuration.
func NewGateway(provider, stripeSecretKey string) (Gateway, error) {
	switch provider {
	case ProviderStripe:
		if stripeSecretKey == "" {
			return nil, fmt.Errorf("stripe gateway requires a secret key")
		}
		return NewStripeGateway(stripeSecretKey), nil
	case ProviderMock:
		return NewMockGateway(), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", provider)
	}
}
