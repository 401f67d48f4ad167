package model

import "time"

// VehicleLock is the advisory lock document that serializes booking creation
// per vehicle. The _id is derived from the vehicle id, so a unique-key insert
// is the acquisition; ExpiresAt backs a TTL index as crash safety.
type VehicleLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func VehicleLockID(vehicleID string) string {
	return "vehicle_lock_" + vehicleID
}
