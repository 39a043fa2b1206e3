// Command bizdir serves the subscription state engine of the business
// directory over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/bizdir/internal/repository"
	billingapi "github.com/dmitrymomot/bizdir/modules/billing"
	"github.com/dmitrymomot/bizdir/pkg/config"
	"github.com/dmitrymomot/bizdir/pkg/httpserver"
	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/logger"
	"github.com/dmitrymomot/bizdir/pkg/pg"
	"github.com/dmitrymomot/bizdir/pkg/ratelimit"
	"github.com/dmitrymomot/bizdir/pkg/redis"
	"github.com/dmitrymomot/bizdir/pkg/requestid"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
	"github.com/dmitrymomot/bizdir/pkg/tenant"
	"github.com/dmitrymomot/bizdir/svc/billing"
)

type appConfig struct {
	Env              string        `env:"APP_ENV" envDefault:"development"`
	PlansFile        string        `env:"PLANS_FILE"`
	LockTTL          time.Duration `env:"BILLING_LOCK_TTL" envDefault:"30s"`
	MaxBodySize      int64         `env:"HTTP_MAX_BODY_SIZE" envDefault:"1048576"`
	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"2s"`
	RateLimit        int           `env:"BILLING_RATE_LIMIT" envDefault:"20"`
	RateWindow       time.Duration `env:"BILLING_RATE_WINDOW" envDefault:"1m"`
}

type Config struct {
	App      appConfig
	HTTP     httpserver.Config
	Postgres pg.Config
	Redis    redis.Config
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.App.Env, "bizdir"),
		logger.WithContextExtractors(requestid.LoggerExtractor(), tenant.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(ctx, cfg.App.PlansFile)
	if err != nil {
		return err
	}

	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if err := pg.Migrate(ctx, pool, cfg.Postgres, log, pg.WithMigrationsFS(repository.Migrations)); err != nil {
		pool.Close()
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		pool.Close()
		return err
	}

	directory := repository.NewDirectoryRepository(pool)
	svc := billing.NewService(
		catalog,
		repository.NewSubscriptionRepository(pool),
		limits.NewTracker(directory),
		directory,
		redis.NewLocker(rdb, redis.WithKeyPrefix(cfg.Redis.LockPrefix), redis.WithLockerLogger(log)),
		billing.WithLogger(log),
		billing.WithLockTTL(cfg.App.LockTTL),
	)

	limiter, err := ratelimit.NewFixedWindow(
		ratelimit.NewRedisStore(rdb, ratelimit.WithStorePrefix("bizdir:ratelimit:")),
		cfg.App.RateLimit, cfg.App.RateWindow,
	)
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return err
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(tenant.Middleware(tenant.NewHeaderResolver(),
		tenant.WithSkipPaths("/healthz", "/readyz"),
		tenant.WithLogger(log),
	))
	r.Mount("/", billingapi.Router(billingapi.RouterOptions{
		Billing: billingapi.NewHandlers(svc,
			billingapi.WithLogger(log),
			billingapi.WithMaxBodySize(cfg.App.MaxBodySize),
			billingapi.WithRateLimiter(limiter),
		),
		Liveness: httpserver.LivenessHandler(),
		Readiness: httpserver.ReadinessHandler(log, cfg.App.ReadinessTimeout, map[string]httpserver.Check{
			"postgres": pg.Healthcheck(pool),
			"redis":    redis.Healthcheck(rdb),
		}),
	}))

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(func(l *slog.Logger) {
			pool.Close()
			if err := rdb.Close(); err != nil {
				l.Error("failed to close redis client", logger.Error(err))
			}
		}),
	)

	log.InfoContext(ctx, "starting bizdir",
		slog.String("addr", cfg.HTTP.Addr),
		slog.Int("plans", len(catalog.Plans())),
	)
	return srv.Run(ctx, r)
}

func loadCatalog(ctx context.Context, path string) (*subscription.Catalog, error) {
	if path == "" {
		return subscription.DefaultCatalog(), nil
	}
	return subscription.LoadCatalog(ctx, subscription.NewYAMLFileSource(path))
}
