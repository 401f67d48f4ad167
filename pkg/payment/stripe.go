package payment

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const ProviderStripe = "stripe"

type StripeGateway struct {
	client *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeGateway{client: sc}
}

func (s *StripeGateway) Name() string {
	return ProviderStripe
}

func (s *StripeGateway) CreateDeposit(ctx context.Context, bookingID string, amountCents int64, currency string, metadata map[string]string) DepositResult {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Confirm:  stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddMetadata("booking_id", bookingID)
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		return DepositResult{
			OK:       false,
			Provider: ProviderStripe,
			Error:    err.Error(),
		}
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return DepositResult{
			OK:            false,
			Provider:      ProviderStripe,
			TransactionID: pi.ID,
			Error:         "payment intent status " + string(pi.Status),
		}
	}

	return DepositResult{
		OK:            true,
		Provider:      ProviderStripe,
		TransactionID: pi.ID,
	}
}
