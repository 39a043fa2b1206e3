// Package repository implements the persistence collaborators of the
// billing service on PostgreSQL: subscription.Store, limits.CountSource and
// billing.ResourceStore.
//
// The schema ships as goose migrations in Migrations:
//
//	pool, err := pg.Connect(ctx, cfg.Postgres)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg.Postgres, log, pg.WithMigrationsFS(repository.Migrations)); err != nil {
//		return err
//	}
//
//	subs := repository.NewSubscriptionRepository(pool)
//	dir := repository.NewDirectoryRepository(pool)
package repository

import "embed"

// Migrations holds the schema under the "migrations" directory.
//
//go:embed migrations/*.sql
var Migrations embed.FS
