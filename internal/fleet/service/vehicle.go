package service

import (
	"context"
	"errors"
	"sync"

	fleeterrors "lcr/internal/fleet/errors"
	"lcr/internal/fleet/repository"
	"lcr/internal/fleet/validator"
	"lcr/pkg/config"
	apperrors "lcr/pkg/errors"
	"lcr/pkg/model"
	"lcr/pkg/sanitizer"
)

type VehicleService interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	GetByID(ctx context.Context, id string) (*model.Vehicle, error)
	GetAll(ctx context.Context, filter *repository.VehicleFilter, limit int, offset int64) ([]*model.Vehicle, int64, error)
	Update(ctx context.Context, id string, updates *model.VehicleUpdate) (*model.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

type vehicleService struct {
	repo      repository.VehicleRepository
	validator *validator.VehicleValidator
	cfg       *config.Config
}

func NewVehicleService(
	repo repository.VehicleRepository,
	validator *validator.VehicleValidator,
	cfg *config.Config,
) VehicleService {
	return &vehicleService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *vehicleService) Create(ctx context.Context, vehicle *model.Vehicle) error {
	s.applyDefaults(vehicle)
	s.sanitize(vehicle)
	if err := s.validate(vehicle); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		if errors.Is(err, fleeterrors.ErrDuplicatePlate) {
			return apperrors.Conflict("A vehicle with this plate number already exists")
		}
		s.cfg.Log.Error("Failed to create vehicle", "plate_no", vehicle.PlateNo, "error", err)
		return apperrors.Internal("Failed to create vehicle", err)
	}

	s.cfg.Log.Info("Vehicle created successfully",
		"id", vehicle.ID,
		"plate_no", vehicle.PlateNo,
		"make", vehicle.Make,
		"model", vehicle.Model,
	)
	return nil
}

func (s *vehicleService) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, fleeterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", id)
		}
		if errors.Is(err, fleeterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve vehicle", err)
	}

	return vehicle, nil
}

func (s *vehicleService) GetAll(ctx context.Context, filter *repository.VehicleFilter, limit int, offset int64) ([]*model.Vehicle, int64, error) {
	if filter != nil {
		filter.Make = sanitizer.NormalizeMakeOrModel(filter.Make)
		filter.Model = sanitizer.NormalizeMakeOrModel(filter.Model)
	}

	var count int64
	var vehicles []*model.Vehicle
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count vehicles", "error", errCount)
			errCount = apperrors.Internal("Failed to count vehicles", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		vehicles, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list vehicles", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve vehicles", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return vehicles, count, nil
}

func (s *vehicleService) Update(ctx context.Context, id string, updates *model.VehicleUpdate) (*model.Vehicle, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Vehicle update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeVehicleUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, fleeterrors.ErrDuplicatePlate) {
			return nil, apperrors.Conflict("A vehicle with this plate number already exists")
		}
		if errors.Is(err, fleeterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", id)
		}
		s.cfg.Log.Error("Failed to update vehicle", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update vehicle", err)
	}

	s.cfg.Log.Info("Vehicle updated successfully", "id", id)
	merged.ID = id
	return merged, nil
}

func (s *vehicleService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, fleeterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Vehicle", id)
		}
		if errors.Is(err, fleeterrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid vehicle ID format")
		}
		s.cfg.Log.Error("Failed to delete vehicle", "id", id, "error", err)
		return apperrors.Internal("Failed to delete vehicle", err)
	}

	s.cfg.Log.Info("Vehicle deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *vehicleService) applyDefaults(v *model.Vehicle) {
	if v.Status == "" {
		v.Status = model.VehicleAvailable
	}
}

func (s *vehicleService) sanitize(v *model.Vehicle) {
	v.PlateNo = sanitizer.NormalizePlate(v.PlateNo)
	v.Make = sanitizer.NormalizeMakeOrModel(v.Make)
	v.Model = sanitizer.NormalizeMakeOrModel(v.Model)
}

func (s *vehicleService) mergeVehicleUpdates(existing *model.Vehicle, updates *model.VehicleUpdate) *model.Vehicle {
	merged := *existing

	if updates.PlateNo != "" {
		merged.PlateNo = updates.PlateNo
	}
	if updates.Make != "" {
		merged.Make = updates.Make
	}
	if updates.Model != "" {
		merged.Model = updates.Model
	}
	if updates.Year != nil {
		merged.Year = *updates.Year
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func (s *vehicleService) validate(vehicle *model.Vehicle) error {
	if err := s.validator.Validate(vehicle); err != nil {
		s.cfg.Log.Warn("Vehicle validation failed", "error", err)
		return apperrors.Validation("Vehicle validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
