// Package pg connects to PostgreSQL through pgx and applies goose migrations.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log, pg.WithMigrationsFS(repository.Migrations)); err != nil {
//	    return err
//	}
//
// Healthcheck adapts the pool to a readiness probe, and the Is*Error helpers
// classify driver errors without leaking pgx types into callers.
package pg
