package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	bookingserrors "lcr/internal/bookings/errors"
	"lcr/pkg/config"
	"lcr/pkg/model"
)

// releaseScript deletes the lock only when the caller still owns it, so a
// holder whose TTL lapsed cannot release a lock reacquired by someone else.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type redisVehicleLocker struct {
	cfg    *config.Config
	client *redis.Client
}

// NewRedisVehicleLocker locks via SET NX with a TTL. It is selected by
// LOCK_BACKEND=redis for deployments that already run Redis and want lock
// traffic off the primary database.
func NewRedisVehicleLocker(cfg *config.Config) VehicleLocker {
	return &redisVehicleLocker{
		cfg:    cfg,
		client: cfg.Client.Redis,
	}
}

func (l *redisVehicleLocker) Acquire(ctx context.Context, vehicleID string) (*Lease, error) {
	lease := &Lease{
		LockID: model.VehicleLockID(vehicleID),
		Owner:  uuid.NewString(),
	}

	deadline := time.Now().Add(l.cfg.LockWaitTimeout)
	for {
		ok, err := l.client.SetNX(ctx, lease.LockID, lease.Owner, l.cfg.LockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return lease, nil
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

func (l *redisVehicleLocker) Release(ctx context.Context, lease *Lease) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{lease.LockID}, lease.Owner).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if deleted == 0 {
		return bookingserrors.ErrLockNotOwned
	}
	return nil
}

// NewVehicleLocker picks the lock backend named by configuration.
func NewVehicleLocker(cfg *config.Config) VehicleLocker {
	if cfg.LockBackend == config.LockBackendRedis {
		return NewRedisVehicleLocker(cfg)
	}
	return NewMongoVehicleLocker(cfg)
}
