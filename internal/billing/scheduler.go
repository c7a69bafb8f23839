package billing

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"cardops.org/internal/obs"
	"cardops.org/internal/ops"
)

// Store is the slice of the operations service the scheduler needs.
type Store interface {
	Snapshot(ctx context.Context) ops.Snapshot
	UpdateSubscription(ctx context.Context, id string, patch ops.SubscriptionPatch) (ops.Subscription, error)
}

// Advance moves every active subscription whose NextBillingDate has passed
// forward by its billing cycle, repeatedly until the date is in the future.
// Paused and cancelled subscriptions are left alone. Returns the
// subscriptions that were advanced.
func Advance(ctx context.Context, store Store, now time.Time) ([]ops.Subscription, error) {
	snap := store.Snapshot(ctx)
	var advanced []ops.Subscription
	for _, sub := range snap.Subscriptions {
		if sub.Status != ops.SubscriptionActive {
			continue
		}
		if sub.NextBillingDate.After(now) {
			continue
		}
		next := sub.NextBillingDate
		for !next.After(now) {
			next = addCycle(next, sub.BillingCycle)
		}
		updated, err := store.UpdateSubscription(ctx, sub.ID, ops.SubscriptionPatch{NextBillingDate: &next})
		if err != nil {
			return advanced, err
		}
		advanced = append(advanced, updated)
	}
	return advanced, nil
}

func addCycle(t time.Time, cycle ops.BillingCycle) time.Time {
	switch cycle {
	case ops.CycleQuarterly:
		return t.AddDate(0, 3, 0)
	case ops.CycleAnnually:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// Scheduler runs Advance on a cron cadence. The stores never advance billing
// dates themselves; this is the external owner of that responsibility.
type Scheduler struct {
	cron  *cron.Cron
	store Store
}

func NewScheduler(store Store) *Scheduler {
	return &Scheduler{cron: cron.New(), store: store}
}

// Start registers the advancement job under the given cron spec
// (e.g. "@daily") and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		advanced, err := Advance(context.Background(), s.store, time.Now().UTC())
		if err != nil {
			obs.LogJSON(map[string]any{"level": "error", "msg": "billing advancement failed", "err": err.Error()})
			return
		}
		if len(advanced) > 0 {
			obs.LogJSON(map[string]any{"level": "info", "msg": "billing dates advanced", "count": len(advanced)})
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and returns a context that is done once running
// jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
