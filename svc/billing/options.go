package billing

import (
	"log/slog"
	"time"
)

// DefaultLockTTL bounds how long a crashed mutation can block its tenant.
const DefaultLockTTL = 30 * time.Second

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source. Tests use it to pin "now".
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLockTTL sets the TTL of the per-tenant mutation lock.
func WithLockTTL(ttl time.Duration) ServiceOption {
	return func(s *service) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}
