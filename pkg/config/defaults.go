package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "lcr"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultJWTAccessTokenTTL  = 15 * time.Minute
	DefaultJWTRefreshTokenTTL = 7 * 24 * time.Hour

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Per-vehicle reservation lock. The wait timeout bounds how long a
	// contending create blocks behind the lock holder; the TTL is crash
	// safety only and must comfortably exceed a transaction's lifetime.
	LockBackendMongo         = "mongo"
	LockBackendRedis         = "redis"
	DefaultLockBackend       = LockBackendMongo
	DefaultLockTTL           = 10 * time.Second
	DefaultLockWaitTimeout   = 5 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond

	PaymentProviderMock      = "mock"
	PaymentProviderStripe    = "stripe"
	DefaultPaymentProvider   = PaymentProviderMock
	DefaultDepositCurrency   = "usd"
	DefaultDepositCentsValue = 10000

	DefaultKafkaEventsTopic = "lcr.rental.events"
	DefaultKafkaGroupID     = "lcr-notifier"

	DefaultPaginationLimit = 100
)
