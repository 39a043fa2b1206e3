package billing

import (
	"time"

	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
	billingsvc "github.com/dmitrymomot/bizdir/svc/billing"
)

type planResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	MaxBusinesses        int    `json:"max_businesses"`
	MaxOffers            int    `json:"max_offers"`
	MonthlyPrice         int64  `json:"monthly_price"`
	Currency             string `json:"currency,omitempty"`
	AutoRenewalAvailable bool   `json:"auto_renewal_available"`
	Interval             string `json:"interval"`
}

func newPlanResponse(p subscription.Plan) planResponse {
	return planResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          p.Description,
		MaxBusinesses:        p.MaxBusinesses,
		MaxOffers:            p.MaxOffers,
		MonthlyPrice:         p.MonthlyPrice.Amount,
		Currency:             p.MonthlyPrice.Currency,
		AutoRenewalAvailable: p.AutoRenewalAvailable,
		Interval:             string(p.Interval),
	}
}

type subscriptionResponse struct {
	PlanID                 string `json:"plan_id"`
	PlanName               string `json:"plan_name"`
	Status                 string `json:"status"`
	AutoRenew              bool   `json:"auto_renew"`
	EndDate                string `json:"end_date,omitempty"`
	NextBillingDate        string `json:"next_billing_date,omitempty"`
	DowngradeScheduled     bool   `json:"downgrade_scheduled"`
	DowngradeEffectiveDate string `json:"downgrade_effective_date,omitempty"`
	DowngradeReason        string `json:"downgrade_reason,omitempty"`
	AutoRenewCancelReason  string `json:"auto_renew_cancel_reason,omitempty"`
	PaymentFailure         bool   `json:"payment_failure"`
}

func newSubscriptionResponse(sub *subscription.Subscription) *subscriptionResponse {
	if sub == nil {
		return nil
	}
	return &subscriptionResponse{
		PlanID:                 sub.PlanID,
		PlanName:               sub.PlanName,
		Status:                 string(sub.Status),
		AutoRenew:              sub.AutoRenew,
		EndDate:                subscription.FormatDate(sub.EndDate),
		NextBillingDate:        subscription.FormatDate(sub.NextBillingDate),
		DowngradeScheduled:     sub.DowngradeScheduled,
		DowngradeEffectiveDate: subscription.FormatDate(sub.DowngradeEffectiveDate),
		DowngradeReason:        deref(sub.DowngradeReason),
		AutoRenewCancelReason:  deref(sub.AutoRenewCancelReason),
		PaymentFailure:         sub.PaymentFailure,
	}
}

type classificationResponse struct {
	Status            string `json:"status"`
	PlanID            string `json:"plan_id,omitempty"`
	TargetPlanID      string `json:"target_plan_id"`
	MaxBusinesses     int    `json:"max_businesses"`
	MaxOffers         int    `json:"max_offers"`
	CanCreate         bool   `json:"can_create"`
	EffectiveDate     string `json:"effective_date,omitempty"`
	DaysRemaining     int    `json:"days_remaining"`
	ShowGraceBanner   bool   `json:"show_grace_banner"`
	ShowExpiryWarning bool   `json:"show_expiry_warning"`
}

func newClassificationResponse(c subscription.Classification) classificationResponse {
	return classificationResponse{
		Status:            string(c.Status),
		PlanID:            c.PlanID,
		TargetPlanID:      c.TargetPlan.ID,
		MaxBusinesses:     c.Entitlements.MaxBusinesses,
		MaxOffers:         c.Entitlements.MaxOffers,
		CanCreate:         c.Status.CanCreate(),
		EffectiveDate:     subscription.FormatDate(c.EffectiveDate),
		DaysRemaining:     c.DaysRemaining,
		ShowGraceBanner:   c.ShowGraceBanner,
		ShowExpiryWarning: c.ShowExpiryWarning,
	}
}

type snapshotResponse struct {
	Subscription       *subscriptionResponse      `json:"subscription"`
	Classification     classificationResponse     `json:"classification"`
	Counts             limits.Counts              `json:"counts"`
	EnforcementRequest *limits.EnforcementRequest `json:"enforcement_request"`
	FetchedAt          string                     `json:"fetched_at"`
}

func newSnapshotResponse(s *billingsvc.Snapshot) snapshotResponse {
	return snapshotResponse{
		Subscription:       newSubscriptionResponse(s.Subscription),
		Classification:     newClassificationResponse(s.Classification),
		Counts:             s.Counts,
		EnforcementRequest: s.Enforcement,
		FetchedAt:          s.FetchedAt.UTC().Format(time.RFC3339),
	}
}

type resourcesResponse struct {
	Counts             limits.Counts                          `json:"counts"`
	Businesses         []limits.Business                      `json:"businesses"`
	Offers             []limits.Offer                         `json:"offers"`
	Usage              map[subscription.Resource]limits.Usage `json:"usage"`
	EnforcementRequest *limits.EnforcementRequest             `json:"enforcement_request"`
}

func newResourcesResponse(s *billingsvc.Snapshot) resourcesResponse {
	out := resourcesResponse{
		Counts:             s.Counts,
		Businesses:         []limits.Business{},
		Offers:             []limits.Offer{},
		Usage:              limits.Report(s.Counts, s.Classification.Entitlements),
		EnforcementRequest: s.Enforcement,
	}
	if s.Inventory != nil {
		if s.Inventory.Businesses != nil {
			out.Businesses = s.Inventory.Businesses
		}
		if s.Inventory.Offers != nil {
			out.Offers = s.Inventory.Offers
		}
	}
	return out
}

type downgradeResponse struct {
	EffectiveDate string           `json:"effective_date"`
	DaysRemaining int              `json:"days_remaining"`
	Reason        string           `json:"reason,omitempty"`
	Snapshot      snapshotResponse `json:"snapshot"`
}

func newDowngradeResponse(res *billingsvc.DowngradeResult) downgradeResponse {
	return downgradeResponse{
		EffectiveDate: subscription.FormatDate(&res.Schedule.EffectiveDate),
		DaysRemaining: res.Schedule.DaysRemaining,
		Reason:        res.Schedule.Reason,
		Snapshot:      newSnapshotResponse(res.Snapshot),
	}
}

type canCreateResponse struct {
	Resource string `json:"resource"`
	Allowed  bool   `json:"allowed"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type upgradeRequest struct {
	PlanID string `json:"plan_id"`
}

type resourceRequest struct {
	Resource string `path:"resource"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
