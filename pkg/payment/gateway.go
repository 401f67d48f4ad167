package payment

import "context"

// DepositResult is the normalized outcome of a deposit charge attempt.
// OK false is a business outcome, not a transport error: callers record
// the failed attempt and move on.
type DepositResult struct {
	OK            bool
	Provider      string
	TransactionID string
	Error         string
}

// Gateway charges booking deposits against an external payment provider.
type Gateway interface {
	CreateDeposit(ctx context.Context, bookingID string, amountCents int64, currency string, metadata map[string]string) DepositResult
	Name() string
}
