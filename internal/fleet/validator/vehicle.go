package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"lcr/pkg/logger"
	"lcr/pkg/model"
)

var plateRegex = regexp.MustCompile(`^[A-Z0-9-]{3,16}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type VehicleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewVehicleValidator(log *logger.Logger) *VehicleValidator {
	v := validator.New()

	if err := v.RegisterValidation("plate", validatePlate); err != nil {
		log.Fatal("Failed to register 'plate' validator",
			"error", err,
		)
	}

	log.Info("Vehicle validator initialized successfully")

	return &VehicleValidator{
		validate: v,
		logger:   log,
	}
}

func validatePlate(fl validator.FieldLevel) bool {
	return plateRegex.MatchString(fl.Field().String())
}

func (v *VehicleValidator) Validate(vehicle *model.Vehicle) error {
	if err := v.validate.Struct(vehicle); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	// The upper bound moves with the calendar, so it cannot live in a tag.
	if maxYear := time.Now().Year() + 1; vehicle.Year > maxYear {
		return ValidationErrors{
			ValidationError{
				Field:   "Year",
				Message: fmt.Sprintf("year must be at most %d", maxYear),
			},
		}
	}

	return nil
}

func (v *VehicleValidator) ValidateUpdate(update *model.VehicleUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.Year != nil {
		if maxYear := time.Now().Year() + 1; *update.Year > maxYear {
			return ValidationErrors{
				ValidationError{
					Field:   "Year",
					Message: fmt.Sprintf("year must be at most %d", maxYear),
				},
			}
		}
	}

	return nil
}

func (v *VehicleValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "plate":
			message = fmt.Sprintf("%s must be 3-16 characters of A-Z, 0-9 or hyphen", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
