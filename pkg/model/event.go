package model

import "time"

// BookingCreatedEvent is published after a reservation transaction commits.
type BookingCreatedEvent struct {
	BookingID  string    `json:"booking_id"`
	CustomerID string    `json:"customer_id"`
	VehicleID  string    `json:"vehicle_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     string    `json:"status"`
}

// DepositRecordedEvent is published after the payment audit record is
// written, whatever the gateway outcome was.
type DepositRecordedEvent struct {
	BookingID    string `json:"booking_id"`
	AmountCents  int64  `json:"amount_cents"`
	Status       string `json:"status"`
	Provider     string `json:"provider"`
	ProviderTxID string `json:"provider_tx_id,omitempty"`
}
