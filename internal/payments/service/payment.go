package service

import (
	"context"
	"errors"
	"sync"

	"lcr/internal/payments/repository"
	"lcr/pkg/config"
	apperrors "lcr/pkg/errors"
	"lcr/pkg/kafka"
	"lcr/pkg/model"
	"lcr/pkg/payment"
)

// EventPublisher emits domain events. Satisfied by kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type PaymentService interface {
	TriggerDeposit(ctx context.Context, booking *model.Booking, amountCents int64) (*model.Payment, error)
	GetByBookingID(ctx context.Context, bookingID string) (*model.Payment, error)
	List(ctx context.Context, limit int, offset int64) ([]*model.Payment, int64, error)
}

type paymentService struct {
	repo      repository.PaymentRepository
	gateway   payment.Gateway
	publisher EventPublisher
	cfg       *config.Config
}

func NewPaymentService(
	repo repository.PaymentRepository,
	gateway payment.Gateway,
	publisher EventPublisher,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		cfg:       cfg,
	}
}

// TriggerDeposit charges the deposit once and records the outcome, success
// or failure, as the booking's single payment record. It runs after the
// booking has committed; a gateway decline is data here, not an error.
func (s *paymentService) TriggerDeposit(ctx context.Context, booking *model.Booking, amountCents int64) (*model.Payment, error) {
	if booking == nil || booking.ID == "" {
		return nil, apperrors.InvalidInput("Deposit requires a committed booking")
	}
	if amountCents <= 0 {
		return nil, apperrors.InvalidInput("Deposit amount must be positive")
	}

	result := s.gateway.CreateDeposit(ctx, booking.ID, amountCents, s.cfg.DepositCurrency, map[string]string{
		"customer_id": booking.CustomerID,
		"vehicle_id":  booking.VehicleID,
	})

	record := &model.Payment{
		BookingID:    booking.ID,
		AmountCents:  amountCents,
		Provider:     result.Provider,
		ProviderTxID: result.TransactionID,
	}
	if result.OK {
		record.Status = model.PaymentSucceeded
	} else {
		record.Status = model.PaymentFailed
		record.Error = result.Error
	}

	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		s.cfg.Log.Error("Failed to record payment",
			"booking_id", booking.ID,
			"provider", result.Provider,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to record payment", err)
	}

	s.cfg.Log.Info("Deposit recorded",
		"booking_id", stored.BookingID,
		"status", stored.Status,
		"provider", stored.Provider,
		"amount_cents", stored.AmountCents,
	)

	s.publishRecorded(ctx, stored)
	return stored, nil
}

func (s *paymentService) publishRecorded(ctx context.Context, p *model.Payment) {
	if s.publisher == nil {
		return
	}
	msg := kafka.NewMessage().
		WithKey(p.BookingID).
		WithEventType(kafka.EventDepositRecorded).
		WithSource("payments").
		WithValue(model.DepositRecordedEvent{
			BookingID:    p.BookingID,
			AmountCents:  p.AmountCents,
			Status:       p.Status,
			Provider:     p.Provider,
			ProviderTxID: p.ProviderTxID,
		}).
		Build()
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish payment event",
			"booking_id", p.BookingID,
			"error", err,
		)
	}
}

func (s *paymentService) GetByBookingID(ctx context.Context, bookingID string) (*model.Payment, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	p, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payment for booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}

	return p, nil
}

func (s *paymentService) List(ctx context.Context, limit int, offset int64) ([]*model.Payment, int64, error) {
	var count int64
	var payments []*model.Payment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count payments", "error", errCount)
			errCount = apperrors.Internal("Failed to count payments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		payments, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list payments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve payments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return payments, count, nil
}
