package model

import "time"

const (
	VehicleAvailable   = "available"
	VehicleBooked      = "booked"
	VehicleMaintenance = "maintenance"
	VehicleRetired     = "retired"
)

type Vehicle struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PlateNo   string    `json:"plate_no" bson:"plate_no" validate:"required,plate"`
	Make      string    `json:"make" bson:"make" validate:"required,min=1,max=64"`
	Model     string    `json:"model" bson:"model" validate:"required,min=1,max=64"`
	Year      int       `json:"year" bson:"year" validate:"required,min=1970"`
	Status    string    `json:"status" bson:"status" validate:"omitempty,oneof=available booked maintenance retired"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type VehicleUpdate struct {
	PlateNo string `json:"plate_no,omitempty" validate:"omitempty,plate"`
	Make    string `json:"make,omitempty" validate:"omitempty,min=1,max=64"`
	Model   string `json:"model,omitempty" validate:"omitempty,min=1,max=64"`
	Year    *int   `json:"year,omitempty" validate:"omitempty,min=1970"`
	Status  string `json:"status,omitempty" validate:"omitempty,oneof=available booked maintenance retired"`
}

// VehicleSummary is the compact shape embedded in booking responses.
type VehicleSummary struct {
	ID      string `json:"id" bson:"id"`
	PlateNo string `json:"plate_no" bson:"plate_no"`
	Make    string `json:"make" bson:"make"`
	Model   string `json:"model" bson:"model"`
	Year    int    `json:"year" bson:"year"`
}

func (v *Vehicle) Summary() VehicleSummary {
	return VehicleSummary{
		ID:      v.ID,
		PlateNo: v.PlateNo,
		Make:    v.Make,
		Model:   v.Model,
		Year:    v.Year,
	}
}
