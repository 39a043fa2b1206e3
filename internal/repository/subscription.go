package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdir/pkg/pg"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
)

const subscriptionColumns = `tenant_id, plan_id, plan_name, status, auto_renew,
	end_date, next_billing_date,
	downgrade_scheduled, downgrade_effective_date, downgrade_reason,
	auto_renew_cancel_reason, payment_failure, created_at, updated_at`

// SubscriptionRepository stores one subscription row per tenant.
type SubscriptionRepository struct {
	db  DB
	now func() time.Time
}

// NewSubscriptionRepository returns a subscription.Store backed by db.
func NewSubscriptionRepository(db DB) *SubscriptionRepository {
	if db == nil {
		panic("repository: db cannot be nil")
	}
	return &SubscriptionRepository{db: db, now: time.Now}
}

func (r *SubscriptionRepository) Get(ctx context.Context, tenantID uuid.UUID) (*subscription.Subscription, error) {
	var (
		sub    subscription.Subscription
		status string
	)
	err := r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE tenant_id = $1`, tenantID).Scan(
		&sub.TenantID, &sub.PlanID, &sub.PlanName, &status, &sub.AutoRenew,
		&sub.EndDate, &sub.NextBillingDate,
		&sub.DowngradeScheduled, &sub.DowngradeEffectiveDate, &sub.DowngradeReason,
		&sub.AutoRenewCancelReason, &sub.PaymentFailure, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	sub.Status = subscription.BillingStatus(status)
	return &sub, nil
}

// Save upserts the record. The row-level CHECK constraint backs up Validate.
func (r *SubscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	now := r.now().UTC()
	created := sub.CreatedAt
	if created.IsZero() {
		created = now
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (tenant_id) DO UPDATE SET
			plan_id = EXCLUDED.plan_id,
			plan_name = EXCLUDED.plan_name,
			status = EXCLUDED.status,
			auto_renew = EXCLUDED.auto_renew,
			end_date = EXCLUDED.end_date,
			next_billing_date = EXCLUDED.next_billing_date,
			downgrade_scheduled = EXCLUDED.downgrade_scheduled,
			downgrade_effective_date = EXCLUDED.downgrade_effective_date,
			downgrade_reason = EXCLUDED.downgrade_reason,
			auto_renew_cancel_reason = EXCLUDED.auto_renew_cancel_reason,
			payment_failure = EXCLUDED.payment_failure,
			updated_at = EXCLUDED.updated_at`,
		sub.TenantID, sub.PlanID, sub.PlanName, string(sub.Status), sub.AutoRenew,
		sub.EndDate, sub.NextBillingDate,
		sub.DowngradeScheduled, sub.DowngradeEffectiveDate, sub.DowngradeReason,
		sub.AutoRenewCancelReason, sub.PaymentFailure, created, now,
	)
	if err != nil {
		if pg.IsCheckViolationError(err) {
			return errors.Join(subscription.ErrInvariantViolation, err)
		}
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}
