package subscription_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdir/pkg/subscription"
)

func TestCancelAutoRenewal(t *testing.T) {
	t.Parallel()

	t.Run("switches renewal off without scheduling a downgrade", func(t *testing.T) {
		t.Parallel()
		next, err := subscription.CancelAutoRenewal(premium(), "  switching providers ", now)
		require.NoError(t, err)
		assert.False(t, next.AutoRenew)
		assert.False(t, next.DowngradeScheduled)
		require.NotNil(t, next.AutoRenewCancelReason)
		assert.Equal(t, "switching providers", *next.AutoRenewCancelReason)
		assert.Equal(t, subscription.StatusPremiumActive, subscription.Classify(next, now))
	})

	t.Run("requires a reason", func(t *testing.T) {
		t.Parallel()
		_, err := subscription.CancelAutoRenewal(premium(), "", now)
		require.ErrorIs(t, err, subscription.ErrReasonRequired)
	})

	t.Run("state conflicts", func(t *testing.T) {
		t.Parallel()

		offAlready := premium()
		offAlready.AutoRenew = false

		scheduled, _, err := subscription.ScheduleDowngrade(premium(), "moving", now)
		require.NoError(t, err)

		tests := []struct {
			name string
			sub  *subscription.Subscription
			err  error
		}{
			{"free plan", free(), subscription.ErrFreePlan},
			{"downgrade pending", scheduled, subscription.ErrDowngradePending},
			{"already off", offAlready, subscription.ErrAutoRenewAlreadyOff},
		}
		for _, tt := range tests {
			_, err := subscription.CancelAutoRenewal(tt.sub, "reason", now)
			assert.ErrorIs(t, err, tt.err, tt.name)
			assert.True(t, subscription.IsStateConflict(err), tt.name)
		}
	})
}

func TestReactivateAutoRenewal(t *testing.T) {
	t.Parallel()

	t.Run("switches renewal back on", func(t *testing.T) {
		t.Parallel()
		off, err := subscription.CancelAutoRenewal(premium(), "later", now)
		require.NoError(t, err)

		next, err := subscription.ReactivateAutoRenewal(off, now)
		require.NoError(t, err)
		assert.True(t, next.AutoRenew)
		assert.Nil(t, next.AutoRenewCancelReason)
	})

	t.Run("state conflicts", func(t *testing.T) {
		t.Parallel()

		scheduled, _, err := subscription.ScheduleDowngrade(premium(), "moving", now)
		require.NoError(t, err)

		tests := []struct {
			name string
			sub  *subscription.Subscription
			err  error
		}{
			{"free plan", free(), subscription.ErrFreePlan},
			{"downgrade pending", scheduled, subscription.ErrDowngradePending},
			{"already on", premium(), subscription.ErrAutoRenewAlreadyOn},
		}
		for _, tt := range tests {
			_, err := subscription.ReactivateAutoRenewal(tt.sub, now)
			assert.ErrorIs(t, err, tt.err, tt.name)
		}
	})
}
