package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardops.org/internal/ops"
)

func TestAdvance(t *testing.T) {
	store := ops.NewInMemory(nil, nil)
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	due, err := store.AddSubscription(ctx, ops.Subscription{
		CardID: "card-1", MerchantName: "Figma", BillingCycle: ops.CycleMonthly,
		NextBillingDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	lapsed, err := store.AddSubscription(ctx, ops.Subscription{
		CardID: "card-1", MerchantName: "Forgotten SaaS", BillingCycle: ops.CycleQuarterly,
		NextBillingDate: time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	future, err := store.AddSubscription(ctx, ops.Subscription{
		CardID: "card-2", MerchantName: "AWS", BillingCycle: ops.CycleMonthly,
		NextBillingDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	paused := ops.SubscriptionPaused
	pausedSub, err := store.AddSubscription(ctx, ops.Subscription{
		CardID: "card-2", MerchantName: "Paused Tool", BillingCycle: ops.CycleMonthly,
		NextBillingDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = store.UpdateSubscription(ctx, pausedSub.ID, ops.SubscriptionPatch{Status: &paused})
	require.NoError(t, err)

	advanced, err := Advance(ctx, store, now)
	require.NoError(t, err)
	require.Len(t, advanced, 2)

	byID := make(map[string]ops.Subscription)
	for _, sub := range store.Snapshot(ctx).Subscriptions {
		byID[sub.ID] = sub
	}

	// monthly: 6/1 -> 7/1
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), byID[due.ID].NextBillingDate)
	// quarterly, several cycles behind: 11/1/23 -> 2/1 -> 5/1 -> 8/1
	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), byID[lapsed.ID].NextBillingDate)
	// untouched
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), byID[future.ID].NextBillingDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), byID[pausedSub.ID].NextBillingDate)
}

func TestAdvanceAnnual(t *testing.T) {
	store := ops.NewInMemory(nil, nil)
	ctx := context.Background()

	_, err := store.AddSubscription(ctx, ops.Subscription{
		CardID: "card-1", MerchantName: "Domain renewal", BillingCycle: ops.CycleAnnually,
		NextBillingDate: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	advanced, err := Advance(ctx, store, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, advanced, 1)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), advanced[0].NextBillingDate)
}
