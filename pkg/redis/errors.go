package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
	ErrLockFailed                   = errors.New("failed to acquire redis lock")
	ErrInvalidLockTTL               = errors.New("lock ttl must be positive")
)
