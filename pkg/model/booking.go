package model

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// ActiveBookingStatuses are the states that block overlapping windows on the
// same vehicle. Cancelled and completed bookings never conflict.
var ActiveBookingStatuses = []string{BookingPending, BookingConfirmed}

func IsActiveBookingStatus(status string) bool {
	return status == BookingPending || status == BookingConfirmed
}

type Booking struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CustomerID string    `json:"customer_id" bson:"customer_id" validate:"required,mongodb"`
	VehicleID  string    `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	Start      time.Time `json:"start" bson:"start" validate:"required"`
	End        time.Time `json:"end" bson:"end" validate:"required,gtfield=Start"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`

	// Populated on read paths, never stored.
	Vehicle *VehicleSummary `json:"vehicle,omitempty" bson:"-"`
}

func (b *Booking) Window() Window {
	return Window{Start: b.Start, End: b.End}
}

// BookingRequest is the wire shape for booking creation. Instants arrive as
// strings so offset-less timestamps can be rejected as naive (see ParseWindow).
type BookingRequest struct {
	VehicleID    string `json:"vehicle_id"`
	Start        string `json:"start"`
	End          string `json:"end"`
	DepositCents *int64 `json:"deposit_cents,omitempty"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	VehicleID  string
	CustomerID string
	Status     string
	From       *time.Time
	To         *time.Time
}
