package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "lcr/internal/bookings/errors"
	"lcr/pkg/config"
	"lcr/pkg/model"
)

const LockCollectionName = "Vehicle_locks"

// Lease identifies a held vehicle lock. Only the owner that acquired the
// lock may release it.
type Lease struct {
	LockID string
	Owner  string
}

// VehicleLocker serializes booking creation per vehicle. Acquire blocks
// until the lock is free, the wait timeout elapses, or ctx is done.
type VehicleLocker interface {
	Acquire(ctx context.Context, vehicleID string) (*Lease, error)
	Release(ctx context.Context, lease *Lease) error
}

type mongoVehicleLocker struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoVehicleLocker(cfg *config.Config) VehicleLocker {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVehicleLocker{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire inserts the lock document keyed by vehicle id. A duplicate key
// error means another request holds the lock; we reap it if expired and
// retry until the wait timeout. ExpiresAt backs a TTL index, so a holder
// that crashed cannot wedge the vehicle.
func (l *mongoVehicleLocker) Acquire(ctx context.Context, vehicleID string) (*Lease, error) {
	lease := &Lease{
		LockID: model.VehicleLockID(vehicleID),
		Owner:  uuid.NewString(),
	}

	deadline := time.Now().Add(l.cfg.LockWaitTimeout)
	for {
		now := time.Now().UTC()
		lock := &model.VehicleLock{
			ID:        lease.LockID,
			Owner:     lease.Owner,
			ExpiresAt: now.Add(l.cfg.LockTTL),
			CreatedAt: now,
		}

		_, err := l.collection.InsertOne(ctx, lock)
		if err == nil {
			return lease, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}

		// TTL monitors run coarsely; reap expired holders ourselves so a
		// waiter does not stall for up to a minute.
		if _, delErr := l.collection.DeleteOne(ctx, bson.M{
			"_id":        lease.LockID,
			"expires_at": bson.M{"$lt": now},
		}); delErr != nil {
			return nil, delErr
		}

		if time.Now().After(deadline) {
			return nil, bookingserrors.ErrLockHeld
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.cfg.LockRetryInterval):
		}
	}
}

func (l *mongoVehicleLocker) Release(ctx context.Context, lease *Lease) error {
	result, err := l.collection.DeleteOne(ctx, bson.M{
		"_id":   lease.LockID,
		"owner": lease.Owner,
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrLockNotOwned
	}
	return nil
}
