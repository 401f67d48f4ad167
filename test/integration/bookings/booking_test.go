package integrationtests

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	bookingserrors "lcr/internal/bookings/errors"
	"lcr/internal/bookings/repository"
	"lcr/pkg/model"
	"lcr/test/integration/common"
)

const ServiceName = "bookings-integration-tests"

const (
	vehicleA  = "65f0000000000000000000a1"
	vehicleB  = "65f0000000000000000000a2"
	customerA = "65f0000000000000000000c1"
	customerB = "65f0000000000000000000c2"
)

func TestBookingsIntegration(t *testing.T) {
	suite := common.NewSuite(t, ServiceName)
	defer suite.Teardown(t)

	// Keep lock waits short so contention tests finish quickly.
	suite.Cfg.LockWaitTimeout = 300 * time.Millisecond
	suite.Cfg.LockRetryInterval = 20 * time.Millisecond

	t.Run("LockContention", func(t *testing.T) {
		suite.CleanDatabase(t)
		testLockContention(t, suite)
	})
	t.Run("LockExpiredHolderReaped", func(t *testing.T) {
		suite.CleanDatabase(t)
		testLockExpiredHolderReaped(t, suite)
	})
	t.Run("ConflictDetector", func(t *testing.T) {
		suite.CleanDatabase(t)
		testConflictDetector(t, suite)
	})
	t.Run("ListFilters", func(t *testing.T) {
		suite.CleanDatabase(t)
		testListFilters(t, suite)
	})
}

func testLockContention(t *testing.T, suite *common.Suite) {
	ctx := context.Background()
	locker := repository.NewMongoVehicleLocker(suite.Cfg)

	lease, err := locker.Acquire(ctx, vehicleA)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	// Same vehicle is held; a contender must time out waiting.
	if _, err := locker.Acquire(ctx, vehicleA); !errors.Is(err, bookingserrors.ErrLockHeld) {
		t.Errorf("expected ErrLockHeld for contended vehicle, got %v", err)
	}

	// A different vehicle is independent.
	other, err := locker.Acquire(ctx, vehicleB)
	if err != nil {
		t.Fatalf("acquire on independent vehicle failed: %v", err)
	}
	if err := locker.Release(ctx, other); err != nil {
		t.Errorf("release failed: %v", err)
	}

	// Only the owner may release.
	stolen := &repository.Lease{LockID: lease.LockID, Owner: "not-the-owner"}
	if err := locker.Release(ctx, stolen); !errors.Is(err, bookingserrors.ErrLockNotOwned) {
		t.Errorf("expected ErrLockNotOwned, got %v", err)
	}

	if err := locker.Release(ctx, lease); err != nil {
		t.Fatalf("owner release failed: %v", err)
	}

	// Released lock is immediately reacquirable.
	lease2, err := locker.Acquire(ctx, vehicleA)
	if err != nil {
		t.Fatalf("reacquire after release failed: %v", err)
	}
	if err := locker.Release(ctx, lease2); err != nil {
		t.Errorf("release failed: %v", err)
	}
}

func testLockExpiredHolderReaped(t *testing.T, suite *common.Suite) {
	ctx := context.Background()
	locker := repository.NewMongoVehicleLocker(suite.Cfg)

	// Simulate a crashed holder: lock document exists but is past its TTL.
	coll := suite.Cfg.Client.Mongo.
		Database(suite.Cfg.MongoDatabaseName).
		Collection(repository.LockCollectionName)
	_, err := coll.InsertOne(ctx, bson.M{
		"_id":        model.VehicleLockID(vehicleA),
		"owner":      "crashed-owner",
		"expires_at": time.Now().UTC().Add(-time.Minute),
		"created_at": time.Now().UTC().Add(-2 * time.Minute),
	})
	if err != nil {
		t.Fatalf("failed to seed expired lock: %v", err)
	}

	lease, err := locker.Acquire(ctx, vehicleA)
	if err != nil {
		t.Fatalf("acquire should reap the expired holder, got %v", err)
	}
	if err := locker.Release(ctx, lease); err != nil {
		t.Errorf("release failed: %v", err)
	}
}

func testConflictDetector(t *testing.T, suite *common.Suite) {
	ctx := context.Background()
	repo := repository.NewMongoBookingRepository(suite.Cfg)

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	seed := []*model.Booking{
		{CustomerID: customerA, VehicleID: vehicleA, Start: base, End: base.Add(2 * time.Hour), Status: model.BookingConfirmed},
		{CustomerID: customerB, VehicleID: vehicleA, Start: base.Add(4 * time.Hour), End: base.Add(6 * time.Hour), Status: model.BookingCancelled},
		{CustomerID: customerA, VehicleID: vehicleB, Start: base, End: base.Add(2 * time.Hour), Status: model.BookingPending},
	}
	for _, b := range seed {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("failed to seed booking: %v", err)
		}
	}

	cases := []struct {
		name      string
		vehicleID string
		window    model.Window
		want      int
	}{
		{
			name:      "overlapping active booking conflicts",
			vehicleID: vehicleA,
			window:    model.Window{Start: base.Add(time.Hour), End: base.Add(3 * time.Hour)},
			want:      1,
		},
		{
			name:      "touching boundary does not conflict",
			vehicleID: vehicleA,
			window:    model.Window{Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour)},
			want:      0,
		},
		{
			name:      "cancelled booking does not conflict",
			vehicleID: vehicleA,
			window:    model.Window{Start: base.Add(4 * time.Hour), End: base.Add(5 * time.Hour)},
			want:      0,
		},
		{
			name:      "window contained in active booking conflicts",
			vehicleID: vehicleB,
			window:    model.Window{Start: base.Add(30 * time.Minute), End: base.Add(time.Hour)},
			want:      1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.FindActiveOverlapping(ctx, tc.vehicleID, tc.window, "")
			if err != nil {
				t.Fatalf("FindActiveOverlapping failed: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("expected %d overlapping bookings, got %d", tc.want, len(got))
			}
		})
	}

	// Excluding a booking's own id keeps re-checks from self-conflicting.
	self := seed[0]
	got, err := repo.FindActiveOverlapping(ctx, vehicleA, self.Window(), self.ID)
	if err != nil {
		t.Fatalf("FindActiveOverlapping failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("booking must not conflict with itself, got %d", len(got))
	}
}

func testListFilters(t *testing.T, suite *common.Suite) {
	ctx := context.Background()
	repo := repository.NewMongoBookingRepository(suite.Cfg)

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	seed := []*model.Booking{
		{CustomerID: customerA, VehicleID: vehicleA, Start: base, End: base.Add(time.Hour), Status: model.BookingConfirmed},
		{CustomerID: customerA, VehicleID: vehicleB, Start: base.Add(24 * time.Hour), End: base.Add(25 * time.Hour), Status: model.BookingPending},
		{CustomerID: customerB, VehicleID: vehicleA, Start: base.Add(48 * time.Hour), End: base.Add(49 * time.Hour), Status: model.BookingCompleted},
	}
	for _, b := range seed {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("failed to seed booking: %v", err)
		}
	}

	byCustomer, err := repo.FindAll(ctx, &model.BookingFilter{CustomerID: customerA}, 10, 0)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(byCustomer) != 2 {
		t.Fatalf("expected 2 bookings for customer, got %d", len(byCustomer))
	}
	// Most recent start first.
	if !byCustomer[0].Start.After(byCustomer[1].Start) {
		t.Errorf("expected descending start order, got %v then %v", byCustomer[0].Start, byCustomer[1].Start)
	}

	count, err := repo.Count(ctx, &model.BookingFilter{VehicleID: vehicleA})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 bookings on vehicle, got %d", count)
	}

	from := base.Add(23 * time.Hour)
	to := base.Add(26 * time.Hour)
	inRange, err := repo.FindAll(ctx, &model.BookingFilter{From: &from, To: &to}, 10, 0)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(inRange) != 1 || inRange[0].VehicleID != vehicleB {
		t.Errorf("expected only the middle booking in range, got %d", len(inRange))
	}
}
