package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"lcr/internal/payments/repository"
	"lcr/pkg/config"
	apperrors "lcr/pkg/errors"
	"lcr/pkg/logger"
	"lcr/pkg/model"
	"lcr/pkg/payment"
)

const testBookingID = "65f000000000000000000010"

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		DepositCurrency: "usd",
	}
}

// memoryPaymentRepo enforces the one-record-per-booking upsert contract.
type memoryPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*model.Payment
	upserts  int
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{payments: map[string]*model.Payment{}}
}

func (r *memoryPaymentRepo) Upsert(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++

	now := time.Now().UTC()
	existing, ok := r.payments[p.BookingID]
	if !ok {
		stored := *p
		stored.ID = "mem-" + p.BookingID
		stored.CreatedAt = now
		stored.UpdatedAt = now
		r.payments[p.BookingID] = &stored
	} else {
		existing.AmountCents = p.AmountCents
		existing.Status = p.Status
		existing.Provider = p.Provider
		existing.ProviderTxID = p.ProviderTxID
		existing.Error = p.Error
		existing.UpdatedAt = now
	}

	copied := *r.payments[p.BookingID]
	return &copied, nil
}

func (r *memoryPaymentRepo) FindByBookingID(ctx context.Context, bookingID string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memoryPaymentRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.payments {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memoryPaymentRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.payments)), nil
}

func testBooking() *model.Booking {
	return &model.Booking{
		ID:         testBookingID,
		CustomerID: "65f000000000000000000002",
		VehicleID:  "65f000000000000000000001",
		Status:     model.BookingPending,
	}
}

func TestTriggerDeposit_Success(t *testing.T) {
	repo := newMemoryPaymentRepo()
	gateway := payment.NewMockGateway()
	svc := NewPaymentService(repo, gateway, nil, testConfig())

	p, err := svc.TriggerDeposit(context.Background(), testBooking(), 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Status != model.PaymentSucceeded {
		t.Errorf("expected succeeded, got %s", p.Status)
	}
	if p.Provider != payment.ProviderMock {
		t.Errorf("expected mock provider, got %s", p.Provider)
	}
	if p.ProviderTxID == "" {
		t.Error("expected a provider transaction id")
	}
	if len(gateway.Charges()) != 1 {
		t.Errorf("expected 1 gateway charge, got %d", len(gateway.Charges()))
	}
}

func TestTriggerDeposit_GatewayDeclineRecordedAsFailed(t *testing.T) {
	repo := newMemoryPaymentRepo()
	gateway := payment.NewMockGateway()
	gateway.FailNext(true)
	svc := NewPaymentService(repo, gateway, nil, testConfig())

	p, err := svc.TriggerDeposit(context.Background(), testBooking(), 10000)
	if err != nil {
		t.Fatalf("a declined charge is an outcome, not an error: %v", err)
	}

	if p.Status != model.PaymentFailed {
		t.Errorf("expected failed, got %s", p.Status)
	}
	if p.Error == "" {
		t.Error("expected the decline reason to be recorded")
	}
}

func TestTriggerDeposit_RetriggerIsIdempotent(t *testing.T) {
	repo := newMemoryPaymentRepo()
	gateway := payment.NewMockGateway()
	svc := NewPaymentService(repo, gateway, nil, testConfig())
	ctx := context.Background()

	gateway.FailNext(true)
	first, err := svc.TriggerDeposit(ctx, testBooking(), 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Status != model.PaymentFailed {
		t.Fatalf("expected first attempt to fail, got %s", first.Status)
	}

	gateway.FailNext(false)
	second, err := svc.TriggerDeposit(ctx, testBooking(), 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Status != model.PaymentSucceeded {
		t.Fatalf("expected retry to succeed, got %s", second.Status)
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("expected exactly one payment record per booking, got %d", count)
	}
	if repo.upserts != 2 {
		t.Errorf("expected 2 upserts, got %d", repo.upserts)
	}
}

func TestTriggerDeposit_InvalidInput(t *testing.T) {
	svc := NewPaymentService(newMemoryPaymentRepo(), payment.NewMockGateway(), nil, testConfig())
	ctx := context.Background()

	_, err := svc.TriggerDeposit(ctx, &model.Booking{}, 10000)
	if appErr := apperrors.AsAppError(err); appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for uncommitted booking, got %v", err)
	}

	_, err = svc.TriggerDeposit(ctx, testBooking(), 0)
	if appErr := apperrors.AsAppError(err); appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for zero amount, got %v", err)
	}
}

func TestGetByBookingID_NotFound(t *testing.T) {
	svc := NewPaymentService(newMemoryPaymentRepo(), payment.NewMockGateway(), nil, testConfig())

	_, err := svc.GetByBookingID(context.Background(), testBookingID)
	if appErr := apperrors.AsAppError(err); appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
