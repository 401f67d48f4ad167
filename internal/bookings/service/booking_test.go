package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"lcr/internal/bookings/repository"
	"lcr/internal/bookings/validator"
	"lcr/pkg/config"
	mongotx "lcr/pkg/db/mongo"
	apperrors "lcr/pkg/errors"
	"lcr/pkg/kafka"
	"lcr/pkg/logger"
	"lcr/pkg/model"
)

const (
	testVehicleID  = "65f000000000000000000001"
	testCustomerID = "65f000000000000000000002"
)

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		RequestTimeout:      5 * time.Second,
		DefaultDepositCents: 10000,
		DepositCurrency:     "usd",
	}
}

// memoryBookingRepo implements BookingRepository over a slice. It is the
// shared state that contending goroutines race on in the concurrency tests.
type memoryBookingRepo struct {
	mu       sync.Mutex
	bookings []*model.Booking
	nextID   int
}

func (r *memoryBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	copied := *booking
	copied.ID = fmt.Sprintf("65f1%020d", r.nextID)
	booking.ID = copied.ID
	r.bookings = append(r.bookings, &copied)
	return nil
}

func (r *memoryBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (r *memoryBookingRepo) FindAll(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Booking
	for _, b := range r.bookings {
		if filter != nil && filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memoryBookingRepo) Count(ctx context.Context, filter *model.BookingFilter) (int64, error) {
	all, _ := r.FindAll(ctx, filter, 0, 0)
	return int64(len(all)), nil
}

func (r *memoryBookingRepo) FindActiveOverlapping(ctx context.Context, vehicleID string, window model.Window, excludeID string) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.VehicleID != vehicleID || b.ID == excludeID {
			continue
		}
		if !model.IsActiveBookingStatus(b.Status) {
			continue
		}
		if b.Window().Overlaps(window) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryBookingRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			b.Status = status
			return nil
		}
	}
	return fmt.Errorf("not found")
}

func (r *memoryBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

var _ repository.BookingRepository = (*memoryBookingRepo)(nil)

// memoryLocker serializes per vehicle id the way the Mongo and Redis
// lockers do, minus the network.
type memoryLocker struct {
	locks sync.Map
}

func (l *memoryLocker) Acquire(ctx context.Context, vehicleID string) (*repository.Lease, error) {
	mu, _ := l.locks.LoadOrStore(vehicleID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	return &repository.Lease{LockID: model.VehicleLockID(vehicleID), Owner: "test"}, nil
}

func (l *memoryLocker) Release(ctx context.Context, lease *repository.Lease) error {
	mu, ok := l.locks.Load(lease.LockID[len("vehicle_lock_"):])
	if !ok {
		return fmt.Errorf("unknown lock %s", lease.LockID)
	}
	mu.(*sync.Mutex).Unlock()
	return nil
}

type mockVehicleReader struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Vehicle, error)
}

func (m *mockVehicleReader) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Vehicle{
		ID:      id,
		PlateNo: "ABC-123",
		Make:    "TOYOTA",
		Model:   "COROLLA",
		Year:    2023,
		Status:  model.VehicleAvailable,
	}, nil
}

func (m *mockVehicleReader) FindSummaries(ctx context.Context, ids []string) (map[string]*model.VehicleSummary, error) {
	out := make(map[string]*model.VehicleSummary, len(ids))
	for _, id := range ids {
		out[id] = &model.VehicleSummary{ID: id, PlateNo: "ABC-123"}
	}
	return out, nil
}

type mockDepositTrigger struct {
	mu    sync.Mutex
	calls []struct {
		BookingID   string
		AmountCents int64
	}
	triggerFunc func(ctx context.Context, booking *model.Booking, amountCents int64) (*model.Payment, error)
}

func (m *mockDepositTrigger) TriggerDeposit(ctx context.Context, booking *model.Booking, amountCents int64) (*model.Payment, error) {
	m.mu.Lock()
	m.calls = append(m.calls, struct {
		BookingID   string
		AmountCents int64
	}{booking.ID, amountCents})
	m.mu.Unlock()
	if m.triggerFunc != nil {
		return m.triggerFunc(ctx, booking, amountCents)
	}
	return &model.Payment{BookingID: booking.ID, AmountCents: amountCents, Status: model.PaymentSucceeded}, nil
}

type mockPublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func newTestService(repo repository.BookingRepository, vehicles repository.VehicleReader, deposits DepositTrigger, publisher EventPublisher) BookingService {
	cfg := testConfig()
	return NewBookingService(
		repo,
		&memoryLocker{},
		vehicles,
		deposits,
		publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
}

func TestCreate_Success(t *testing.T) {
	repo := &memoryBookingRepo{}
	deposits := &mockDepositTrigger{}
	publisher := &mockPublisher{}
	svc := newTestService(repo, &mockVehicleReader{}, deposits, publisher)

	booking, err := svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.ID == "" {
		t.Error("expected booking to be assigned an id")
	}
	if booking.Status != model.BookingPending {
		t.Errorf("expected status pending, got %s", booking.Status)
	}
	if booking.Vehicle == nil || booking.Vehicle.PlateNo != "ABC-123" {
		t.Errorf("expected embedded vehicle summary, got %+v", booking.Vehicle)
	}

	if len(deposits.calls) != 1 {
		t.Fatalf("expected 1 deposit trigger, got %d", len(deposits.calls))
	}
	if deposits.calls[0].AmountCents != 10000 {
		t.Errorf("expected default deposit 10000, got %d", deposits.calls[0].AmountCents)
	}

	if len(publisher.messages) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.messages))
	}
	if publisher.messages[0].EventType() != kafka.EventBookingCreated {
		t.Errorf("expected %s event, got %s", kafka.EventBookingCreated, publisher.messages[0].EventType())
	}
}

func TestCreate_ExplicitDepositAmount(t *testing.T) {
	deposits := &mockDepositTrigger{}
	svc := newTestService(&memoryBookingRepo{}, &mockVehicleReader{}, deposits, &mockPublisher{})

	amount := int64(2500)
	_, err := svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
		VehicleID:    testVehicleID,
		Start:        "2026-09-01T10:00:00Z",
		End:          "2026-09-03T10:00:00Z",
		DepositCents: &amount,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(deposits.calls) != 1 || deposits.calls[0].AmountCents != 2500 {
		t.Errorf("expected one deposit of 2500, got %+v", deposits.calls)
	}
}

func TestCreate_ZeroDepositSkipsTrigger(t *testing.T) {
	deposits := &mockDepositTrigger{}
	svc := newTestService(&memoryBookingRepo{}, &mockVehicleReader{}, deposits, &mockPublisher{})

	amount := int64(0)
	_, err := svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
		VehicleID:    testVehicleID,
		Start:        "2026-09-01T10:00:00Z",
		End:          "2026-09-03T10:00:00Z",
		DepositCents: &amount,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(deposits.calls) != 0 {
		t.Errorf("expected no deposit trigger for zero amount, got %d calls", len(deposits.calls))
	}
}

func TestCreate_NaiveTimestamp(t *testing.T) {
	repo := &memoryBookingRepo{}
	svc := newTestService(repo, &mockVehicleReader{}, &mockDepositTrigger{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00",
		End:       "2026-09-03T10:00:00Z",
	})
	if err == nil {
		t.Fatal("expected error, got none")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNaiveTimestamp {
		t.Errorf("expected NAIVE_TIMESTAMP, got %v", err)
	}
	if len(repo.bookings) != 0 {
		t.Error("validation failure must not write state")
	}
}

func TestCreate_InvertedWindow(t *testing.T) {
	svc := newTestService(&memoryBookingRepo{}, &mockVehicleReader{}, &mockDepositTrigger{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-03T10:00:00Z",
		End:       "2026-09-01T10:00:00Z",
	})
	if err == nil {
		t.Fatal("expected error, got none")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvertedWindow {
		t.Errorf("expected INVERTED_WINDOW, got %v", err)
	}
}

func TestCreate_VehicleNotFound(t *testing.T) {
	vehicles := &mockVehicleReader{
		findByIDFunc: func(ctx context.Context, id string) (*model.Vehicle, error) {
			return nil, repository.ErrVehicleNotFound
		},
	}
	svc := newTestService(&memoryBookingRepo{}, vehicles, &mockDepositTrigger{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	})
	if err == nil {
		t.Fatal("expected error, got none")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreate_RetiredVehicleRejected(t *testing.T) {
	vehicles := &mockVehicleReader{
		findByIDFunc: func(ctx context.Context, id string) (*model.Vehicle, error) {
			return &model.Vehicle{ID: id, PlateNo: "ABC-123", Make: "A", Model: "B", Year: 2020, Status: model.VehicleRetired}, nil
		},
	}
	svc := newTestService(&memoryBookingRepo{}, vehicles, &mockDepositTrigger{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	})
	if err == nil {
		t.Fatal("expected error, got none")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreate_Conflict(t *testing.T) {
	repo := &memoryBookingRepo{}
	svc := newTestService(repo, &mockVehicleReader{}, &mockDepositTrigger{}, &mockPublisher{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(ctx, testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-02T10:00:00Z",
		End:       "2026-09-04T10:00:00Z",
	})
	if err == nil {
		t.Fatal("expected conflict, got none")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeBookingConflict {
		t.Fatalf("expected BOOKING_CONFLICT, got %v", err)
	}
	if appErr.Details["vehicle_id"] != testVehicleID {
		t.Errorf("conflict details missing vehicle_id: %+v", appErr.Details)
	}

	if len(repo.bookings) != 1 {
		t.Errorf("expected 1 stored booking, got %d", len(repo.bookings))
	}
}

func TestCreate_BoundaryTouchIsNotConflict(t *testing.T) {
	repo := &memoryBookingRepo{}
	svc := newTestService(repo, &mockVehicleReader{}, &mockDepositTrigger{}, &mockPublisher{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-02T10:00:00Z",
	}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	if _, err := svc.Create(ctx, testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-02T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	}); err != nil {
		t.Fatalf("back-to-back booking must succeed: %v", err)
	}

	if len(repo.bookings) != 2 {
		t.Errorf("expected 2 stored bookings, got %d", len(repo.bookings))
	}
}

func TestCreate_CancelledBookingDoesNotConflict(t *testing.T) {
	repo := &memoryBookingRepo{}
	svc := newTestService(repo, &mockVehicleReader{}, &mockDepositTrigger{}, &mockPublisher{})
	ctx := context.Background()

	first, err := svc.Create(ctx, testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := repo.UpdateStatus(ctx, first.ID, model.BookingCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := svc.Create(ctx, testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	}); err != nil {
		t.Fatalf("booking over a cancelled window must succeed: %v", err)
	}
}

func TestCreate_DepositFailureDoesNotFailBooking(t *testing.T) {
	repo := &memoryBookingRepo{}
	deposits := &mockDepositTrigger{
		triggerFunc: func(ctx context.Context, booking *model.Booking, amountCents int64) (*model.Payment, error) {
			return nil, fmt.Errorf("gateway unreachable")
		},
	}
	svc := newTestService(repo, &mockVehicleReader{}, deposits, &mockPublisher{})

	booking, err := svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("deposit failure must not fail the booking: %v", err)
	}
	if booking.ID == "" || len(repo.bookings) != 1 {
		t.Error("booking must be committed despite the failed deposit")
	}
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	svc := newTestService(&memoryBookingRepo{}, &mockVehicleReader{}, &mockDepositTrigger{}, &mockPublisher{err: fmt.Errorf("broker down")})

	if _, err := svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	}); err != nil {
		t.Fatalf("publish failure must not fail the booking: %v", err)
	}
}

// assertNoStoredOverlap checks pairwise that no two committed bookings on the
// same vehicle share any instant.
func assertNoStoredOverlap(t *testing.T, repo *memoryBookingRepo) {
	t.Helper()
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for i := 0; i < len(repo.bookings); i++ {
		for j := i + 1; j < len(repo.bookings); j++ {
			a, b := repo.bookings[i], repo.bookings[j]
			if a.VehicleID == b.VehicleID && a.Window().Overlaps(b.Window()) {
				t.Errorf("stored bookings %s and %s overlap on vehicle %s", a.ID, b.ID, a.VehicleID)
			}
		}
	}
}

func TestCreate_ContentionExactlyOneWins(t *testing.T) {
	repo := &memoryBookingRepo{}
	svc := newTestService(repo, &mockVehicleReader{}, &mockDepositTrigger{}, &mockPublisher{})

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
				VehicleID: testVehicleID,
				Start:     "2026-09-01T10:00:00Z",
				End:       "2026-09-03T10:00:00Z",
			})
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			if appErr := apperrors.AsAppError(err); appErr != nil && appErr.Code == apperrors.CodeBookingConflict {
				conflicts++
			} else {
				t.Errorf("unexpected error under contention: %v", err)
			}
		}
	}

	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if conflicts != n-1 {
		t.Errorf("expected %d conflicts, got %d", n-1, conflicts)
	}
	if len(repo.bookings) != 1 {
		t.Errorf("expected 1 stored booking, got %d", len(repo.bookings))
	}
	assertNoStoredOverlap(t, repo)
}

func TestCreate_ContentionDisjointWindowsAllSucceed(t *testing.T) {
	repo := &memoryBookingRepo{}
	svc := newTestService(repo, &mockVehicleReader{}, &mockDepositTrigger{}, &mockPublisher{})

	const n = 6
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := base.Add(time.Duration(i) * 24 * time.Hour)
			_, errs[i] = svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
				VehicleID: testVehicleID,
				Start:     start.Format(time.RFC3339),
				End:       start.Add(24 * time.Hour).Format(time.RFC3339),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("disjoint window %d failed: %v", i, err)
		}
	}
	if len(repo.bookings) != n {
		t.Errorf("expected %d stored bookings, got %d", n, len(repo.bookings))
	}
	assertNoStoredOverlap(t, repo)
}

// disconnectingRepo cancels the request context as the transaction returns,
// the shape of a client that goes away right after the commit lands.
type disconnectingRepo struct {
	memoryBookingRepo
	cancel context.CancelFunc
}

func (r *disconnectingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	err := r.memoryBookingRepo.ExecuteTransaction(ctx, fn)
	r.cancel()
	return err
}

// contextSensitiveLocker refuses to release on a dead context, the way the
// Mongo and Redis lockers fail their delete round trip.
type contextSensitiveLocker struct {
	mu       sync.Mutex
	released bool
}

func (l *contextSensitiveLocker) Acquire(ctx context.Context, vehicleID string) (*repository.Lease, error) {
	return &repository.Lease{LockID: model.VehicleLockID(vehicleID), Owner: "test"}, nil
}

func (l *contextSensitiveLocker) Release(ctx context.Context, lease *repository.Lease) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	l.released = true
	l.mu.Unlock()
	return nil
}

func TestCreate_LockReleasedAfterClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &disconnectingRepo{cancel: cancel}
	locker := &contextSensitiveLocker{}
	cfg := testConfig()
	svc := NewBookingService(
		repo,
		locker,
		&mockVehicleReader{},
		&mockDepositTrigger{},
		&mockPublisher{},
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)

	if _, err := svc.Create(ctx, testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locker.mu.Lock()
	released := locker.released
	locker.mu.Unlock()
	if !released {
		t.Error("lock must be released even when the request context is gone")
	}
}

// racedRepo reports a clear unlocked pre-check but a conflict on the locked
// re-check, the shape of losing a race to another writer.
type racedRepo struct {
	memoryBookingRepo
	checks int
}

func (r *racedRepo) FindActiveOverlapping(ctx context.Context, vehicleID string, window model.Window, excludeID string) ([]*model.Booking, error) {
	r.checks++
	if r.checks == 1 {
		return nil, nil
	}
	return []*model.Booking{{
		ID:         "65f100000000000000000099",
		CustomerID: testCustomerID,
		VehicleID:  vehicleID,
		Start:      window.Start,
		End:        window.End,
		Status:     model.BookingConfirmed,
	}}, nil
}

func TestCreate_ConflictInsideTransactionNotLoggedAsError(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Log = logger.New(logger.Config{
		Level:   "debug",
		Format:  logger.JSON,
		Service: "test",
		Output:  &buf,
	})
	svc := NewBookingService(
		&racedRepo{},
		&memoryLocker{},
		&mockVehicleReader{},
		&mockDepositTrigger{},
		&mockPublisher{},
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)

	_, err := svc.Create(context.Background(), testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-03T10:00:00Z",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeBookingConflict {
		t.Fatalf("expected BOOKING_CONFLICT, got %v", err)
	}

	out := buf.String()
	if strings.Contains(out, `"level":"ERROR"`) {
		t.Errorf("conflict rejection must not log at error level:\n%s", out)
	}
	if !strings.Contains(out, "Booking rejected") {
		t.Error("expected the rejection to be logged")
	}
}

func TestList_CustomerSeesOnlyOwn(t *testing.T) {
	repo := &memoryBookingRepo{}
	svc := newTestService(repo, &mockVehicleReader{}, &mockDepositTrigger{}, &mockPublisher{})
	ctx := context.Background()

	otherCustomer := "65f000000000000000000003"
	if _, err := svc.Create(ctx, testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-02T10:00:00Z",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, otherCustomer, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-03T10:00:00Z",
		End:       "2026-09-04T10:00:00Z",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	own, total, err := svc.List(ctx, testCustomerID, model.RoleCustomer, nil, 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(own) != 1 || own[0].CustomerID != testCustomerID {
		t.Errorf("customer must only see own bookings, got total=%d len=%d", total, len(own))
	}

	all, total, err := svc.List(ctx, "staff-id", model.RoleAdmin, nil, 10, 0)
	if err != nil {
		t.Fatalf("staff list failed: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Errorf("staff must see all bookings, got total=%d len=%d", total, len(all))
	}
}

func TestGetByID_CustomerVisibility(t *testing.T) {
	repo := &memoryBookingRepo{}
	svc := newTestService(repo, &mockVehicleReader{}, &mockDepositTrigger{}, &mockPublisher{})
	ctx := context.Background()

	booking, err := svc.Create(ctx, testCustomerID, &model.BookingRequest{
		VehicleID: testVehicleID,
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-02T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.GetByID(ctx, testCustomerID, model.RoleCustomer, booking.ID); err != nil {
		t.Errorf("owner must see own booking: %v", err)
	}

	_, err = svc.GetByID(ctx, "65f000000000000000000003", model.RoleCustomer, booking.ID)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("other customer must get NOT_FOUND, got %v", err)
	}

	if _, err := svc.GetByID(ctx, "staff-id", model.RoleSupport, booking.ID); err != nil {
		t.Errorf("staff must see any booking: %v", err)
	}
}
