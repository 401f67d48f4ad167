package validator

import (
	"testing"
	"time"

	"lcr/pkg/logger"
	"lcr/pkg/model"
)

func testValidator() *VehicleValidator {
	return NewVehicleValidator(logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	}))
}

func validVehicle() *model.Vehicle {
	return &model.Vehicle{
		PlateNo: "ABC-1234",
		Make:    "TOYOTA",
		Model:   "COROLLA",
		Year:    2023,
		Status:  model.VehicleAvailable,
	}
}

func TestValidate_ValidVehicle(t *testing.T) {
	v := testValidator()
	if err := v.Validate(validVehicle()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Plate(t *testing.T) {
	tests := []struct {
		name    string
		plate   string
		wantErr bool
	}{
		{"plain alphanumeric", "ABC123", false},
		{"with hyphen", "AB-12-CD", false},
		{"minimum length", "AB1", false},
		{"maximum length", "ABCDEFGH12345678", false},
		{"too short", "AB", true},
		{"too long", "ABCDEFGH123456789", true},
		{"lowercase", "abc123", true},
		{"spaces", "AB 123", true},
		{"empty", "", true},
		{"special characters", "AB_123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testValidator()
			vehicle := validVehicle()
			vehicle.PlateNo = tt.plate

			err := v.Validate(vehicle)
			if tt.wantErr && err == nil {
				t.Errorf("plate %q: expected error, got none", tt.plate)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("plate %q: unexpected error: %v", tt.plate, err)
			}
		})
	}
}

func TestValidate_Year(t *testing.T) {
	v := testValidator()
	nextYear := time.Now().Year() + 1

	vehicle := validVehicle()
	vehicle.Year = nextYear
	if err := v.Validate(vehicle); err != nil {
		t.Errorf("next model year must be accepted: %v", err)
	}

	vehicle.Year = nextYear + 1
	if err := v.Validate(vehicle); err == nil {
		t.Error("year beyond next model year must be rejected")
	}

	vehicle.Year = 1969
	if err := v.Validate(vehicle); err == nil {
		t.Error("year before 1970 must be rejected")
	}

	vehicle.Year = 1970
	if err := v.Validate(vehicle); err != nil {
		t.Errorf("1970 must be accepted: %v", err)
	}
}

func TestValidate_Status(t *testing.T) {
	v := testValidator()
	vehicle := validVehicle()
	vehicle.Status = "scrapped"

	if err := v.Validate(vehicle); err == nil {
		t.Error("unknown status must be rejected")
	}
}

func TestValidateUpdate(t *testing.T) {
	v := testValidator()

	if err := v.ValidateUpdate(&model.VehicleUpdate{}); err != nil {
		t.Errorf("empty update must be valid: %v", err)
	}

	if err := v.ValidateUpdate(&model.VehicleUpdate{PlateNo: "xy"}); err == nil {
		t.Error("bad plate in update must be rejected")
	}

	badYear := time.Now().Year() + 2
	if err := v.ValidateUpdate(&model.VehicleUpdate{Year: &badYear}); err == nil {
		t.Error("future year in update must be rejected")
	}
}
