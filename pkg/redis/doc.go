// Package redis connects to Redis and provides the per-tenant mutation lock.
//
// Connect retries until the server answers a PING; Healthcheck turns a
// client into a readiness probe. Config is populated from the environment:
//
//	REDIS_URL              redis://localhost:6379/0
//	REDIS_RETRY_ATTEMPTS   3
//	REDIS_RETRY_INTERVAL   5s
//	REDIS_CONNECT_TIMEOUT  30s
//	REDIS_LOCK_PREFIX      bizdir:lock:
//
// Locker takes a lock with SET NX PX and a random token, and releases it with
// a compare-and-delete script:
//
//	locker := redis.NewLocker(client, redis.WithKeyPrefix(cfg.LockPrefix))
//	release, ok, err := locker.TryAcquire(ctx, tenantID.String(), 30*time.Second)
//	if err != nil || !ok {
//	    return err
//	}
//	defer release()
package redis
