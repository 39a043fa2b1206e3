package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/bizdir/pkg/limits"
)

// DirectoryRepository reads and deletes a tenant's businesses and offers.
// Every statement is scoped to the tenant.
type DirectoryRepository struct {
	db DB
}

// NewDirectoryRepository returns a limits.CountSource and billing.ResourceStore backed by db.
func NewDirectoryRepository(db DB) *DirectoryRepository {
	if db == nil {
		panic("repository: db cannot be nil")
	}
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) CountResources(ctx context.Context, tenantID uuid.UUID) (limits.Counts, error) {
	var c limits.Counts
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM businesses WHERE tenant_id = $1),
			(SELECT count(*) FROM offers WHERE tenant_id = $1)`,
		tenantID).Scan(&c.Businesses, &c.Offers)
	if err != nil {
		return limits.Counts{}, fmt.Errorf("count resources: %w", err)
	}
	return c, nil
}

func (r *DirectoryRepository) ListResources(ctx context.Context, tenantID uuid.UUID) (*limits.Inventory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, status FROM businesses
		WHERE tenant_id = $1
		ORDER BY created_at, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	businesses, err := pgx.CollectRows(rows, pgx.RowToStructByPos[limits.Business])
	if err != nil {
		return nil, fmt.Errorf("scan businesses: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, business_id, title, status FROM offers
		WHERE tenant_id = $1
		ORDER BY created_at, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	offers, err := pgx.CollectRows(rows, pgx.RowToStructByPos[limits.Offer])
	if err != nil {
		return nil, fmt.Errorf("scan offers: %w", err)
	}

	return &limits.Inventory{Businesses: businesses, Offers: offers}, nil
}

// DeleteResources removes the given businesses with all their offers, and
// the given offers, in one transaction. IDs owned by another tenant are
// ignored.
func (r *DirectoryRepository) DeleteResources(ctx context.Context, tenantID uuid.UUID, businessIDs, offerIDs []uuid.UUID) error {
	if len(businessIDs) == 0 && len(offerIDs) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM offers
			WHERE tenant_id = $1 AND (id = ANY($2) OR business_id = ANY($3))`,
			tenantID, offerIDs, businessIDs); err != nil {
			return fmt.Errorf("delete offers: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM businesses
			WHERE tenant_id = $1 AND id = ANY($2)`,
			tenantID, businessIDs); err != nil {
			return fmt.Errorf("delete businesses: %w", err)
		}
		return nil
	})
}

// CreateBusiness inserts a business owned by tenantID.
func (r *DirectoryRepository) CreateBusiness(ctx context.Context, tenantID uuid.UUID, b limits.Business) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO businesses (id, tenant_id, name, status) VALUES ($1, $2, $3, $4)`,
		b.ID, tenantID, b.Name, b.Status)
	if err != nil {
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

// CreateOffer inserts an offer. The business must belong to tenantID.
func (r *DirectoryRepository) CreateOffer(ctx context.Context, tenantID uuid.UUID, o limits.Offer) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO offers (id, tenant_id, business_id, title, status)
		SELECT $1, $2, b.id, $4, $5 FROM businesses b
		WHERE b.id = $3 AND b.tenant_id = $2`,
		o.ID, tenantID, o.BusinessID, o.Title, o.Status)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("insert offer: business %s not found", o.BusinessID)
	}
	return nil
}
