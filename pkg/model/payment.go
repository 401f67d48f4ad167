package model

import "time"

const (
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// Payment is the audit record written once per booking by the post-commit
// deposit trigger. It never gates the booking's validity.
type Payment struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID    string    `json:"booking_id" bson:"booking_id" validate:"required,mongodb"`
	AmountCents  int64     `json:"amount_cents" bson:"amount_cents" validate:"required,min=1"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=succeeded failed"`
	Provider     string    `json:"provider" bson:"provider"`
	ProviderTxID string    `json:"provider_tx_id,omitempty" bson:"provider_tx_id,omitempty"`
	Error        string    `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
