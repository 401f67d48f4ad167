package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "lcr/internal/bookings/errors"
	"lcr/internal/bookings/repository"
	"lcr/internal/bookings/validator"
	"lcr/pkg/config"
	apperrors "lcr/pkg/errors"
	"lcr/pkg/kafka"
	"lcr/pkg/model"
)

// DepositTrigger charges the booking deposit after commit and records the
// outcome. Implemented by the payments service. Failures are reported back
// for logging only; they never affect the committed booking.
type DepositTrigger interface {
	TriggerDeposit(ctx context.Context, booking *model.Booking, amountCents int64) (*model.Payment, error)
}

// EventPublisher emits domain events. Satisfied by kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type BookingService interface {
	Create(ctx context.Context, customerID string, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, viewerID, viewerRole, id string) (*model.Booking, error)
	List(ctx context.Context, viewerID, viewerRole string, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.VehicleLocker
	vehicles  repository.VehicleReader
	deposits  DepositTrigger
	publisher EventPublisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.VehicleLocker,
	vehicles repository.VehicleReader,
	deposits DepositTrigger,
	publisher EventPublisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		vehicles:  vehicles,
		deposits:  deposits,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

// Create runs the reservation protocol: window validation, an unlocked
// pre-check, then the authoritative conflict check and insert inside a
// transaction while holding the per-vehicle lock. The deposit trigger and
// event publish run strictly after commit and lock release.
func (s *bookingService) Create(ctx context.Context, customerID string, req *model.BookingRequest) (*model.Booking, error) {
	window, err := model.ParseWindow(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", req.VehicleID)
		}
		return nil, apperrors.Internal("Failed to check vehicle existence", err)
	}
	if vehicle.Status == model.VehicleRetired || vehicle.Status == model.VehicleMaintenance {
		return nil, apperrors.Validation("Vehicle is not bookable", map[string]any{
			"vehicle_id": vehicle.ID,
			"status":     vehicle.Status,
		})
	}

	booking := &model.Booking{
		CustomerID: customerID,
		VehicleID:  vehicle.ID,
		Start:      window.Start,
		End:        window.End,
		Status:     model.BookingPending,
	}
	if err := s.validate(booking); err != nil {
		return nil, err
	}

	// Unlocked pre-check. Cheap fast-fail for the common case; the locked
	// re-check below is the one that counts.
	if err := s.checkConflicts(ctx, booking); err != nil {
		return nil, err
	}

	lease, err := s.lockRepo.Acquire(ctx, booking.VehicleID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return nil, apperrors.Timeout("Timed out waiting for the vehicle to become available")
		}
		return nil, apperrors.Internal("Failed to acquire vehicle lock", err)
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true
		// Detached from the request: a client disconnect right after commit
		// must not leave the vehicle locked until the TTL reaps it.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
		defer cancel()
		if releaseErr := s.lockRepo.Release(releaseCtx, lease); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release vehicle lock",
				"lock_id", lease.LockID,
				"error", releaseErr,
			)
		}
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkConflicts(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	release()
	if err != nil {
		// A conflict here is the protocol doing its job, not a failure.
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.CodeBookingConflict {
			s.cfg.Log.Info("Booking rejected, window already taken",
				"customer_id", customerID,
				"vehicle_id", booking.VehicleID,
			)
		} else {
			s.cfg.Log.Error("Failed to create booking",
				"customer_id", customerID,
				"vehicle_id", booking.VehicleID,
				"error", err,
			)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"customer_id", booking.CustomerID,
		"vehicle_id", booking.VehicleID,
		"start", booking.Start,
		"end", booking.End,
	)

	s.afterCommit(ctx, booking, req.DepositCents)

	summary := vehicle.Summary()
	booking.Vehicle = &summary
	return booking, nil
}

// afterCommit runs the deposit trigger and event publish on a context
// detached from the request so a client disconnect cannot cancel them.
// Nothing here can fail the committed booking.
func (s *bookingService) afterCommit(ctx context.Context, booking *model.Booking, depositCents *int64) {
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RequestTimeout)
	defer cancel()

	amount := s.cfg.DefaultDepositCents
	if depositCents != nil {
		amount = *depositCents
	}
	if amount > 0 {
		payment, err := s.deposits.TriggerDeposit(detached, booking, amount)
		if err != nil {
			s.cfg.Log.Error("Deposit trigger failed",
				"booking_id", booking.ID,
				"amount_cents", amount,
				"error", err,
			)
		} else if payment != nil && payment.Status == model.PaymentFailed {
			s.cfg.Log.Warn("Deposit charge declined",
				"booking_id", booking.ID,
				"provider", payment.Provider,
				"error", payment.Error,
			)
		}
	}

	if s.publisher == nil {
		return
	}
	msg := kafka.NewMessage().
		WithKey(booking.VehicleID).
		WithEventType(kafka.EventBookingCreated).
		WithSource("bookings").
		WithValue(model.BookingCreatedEvent{
			BookingID:  booking.ID,
			CustomerID: booking.CustomerID,
			VehicleID:  booking.VehicleID,
			Start:      booking.Start,
			End:        booking.End,
			Status:     booking.Status,
		}).
		Build()
	if err := s.publisher.Publish(detached, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (s *bookingService) GetByID(ctx context.Context, viewerID, viewerRole, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	// Customers only ever see their own bookings; surfacing NotFound keeps
	// other customers' booking ids unguessable.
	if !model.IsStaffRole(viewerRole) && booking.CustomerID != viewerID {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}

	s.attachVehicles(ctx, []*model.Booking{booking})
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, viewerID, viewerRole string, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if filter == nil {
		filter = &model.BookingFilter{}
	}
	if !model.IsStaffRole(viewerRole) {
		filter.CustomerID = viewerID
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.attachVehicles(ctx, bookings)
	return bookings, count, nil
}

// --- Helpers ---

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// checkConflicts is the conflict detector: any active booking on the vehicle
// whose stored window overlaps the candidate's blocks it.
func (s *bookingService) checkConflicts(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindActiveOverlapping(ctx, booking.VehicleID, booking.Window(), booking.ID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}
	if len(existing) > 0 {
		return apperrors.BookingConflict(
			booking.VehicleID,
			booking.Start.Format(time.RFC3339),
			booking.End.Format(time.RFC3339),
		)
	}
	return nil
}

func (s *bookingService) attachVehicles(ctx context.Context, bookings []*model.Booking) {
	if len(bookings) == 0 {
		return
	}
	ids := make([]string, 0, len(bookings))
	seen := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		if !seen[b.VehicleID] {
			seen[b.VehicleID] = true
			ids = append(ids, b.VehicleID)
		}
	}

	summaries, err := s.vehicles.FindSummaries(ctx, ids)
	if err != nil {
		// Listing still works without the embedded vehicle shapes.
		s.cfg.Log.Warn("Failed to load vehicle summaries", "error", err)
		return
	}
	for _, b := range bookings {
		b.Vehicle = summaries[b.VehicleID]
	}
}
