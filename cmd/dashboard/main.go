package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"cardops.org/internal/audit"
	"cardops.org/internal/billing"
	"cardops.org/internal/cards"
	"cardops.org/internal/insights"
	"cardops.org/internal/money"
	"cardops.org/internal/obs"
	"cardops.org/internal/ops"
	"cardops.org/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	var (
		watch       = flag.Bool("watch", false, "Keep running and print change events until interrupted")
		billingSpec = flag.String("billing-spec", "@hourly", "Cron spec for subscription billing advancement")
		withAI      = flag.Bool("insights", true, "Request an AI spending summary when an API key is configured")
	)
	flag.Parse()

	_ = godotenv.Load()
	obs.Init()
	obs.InitBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = audit.WithRequestID(ctx, uuid.NewString())

	events := stream.New()
	fleet := cards.NewSeeded(events)
	store := ops.NewInMemory(fleet, events)

	scheduler := billing.NewScheduler(store)
	if err := scheduler.Start(*billingSpec); err != nil {
		log.Fatalf("start billing scheduler: %v", err)
	}
	defer func() { <-scheduler.Stop().Done() }()

	go func() {
		for e := range events.Subscribe(ctx) {
			obs.LogJSON(map[string]any{
				"level": "debug", "msg": "change event",
				"store": e.Store, "op": e.Op, "entity_id": e.EntityID,
			})
		}
	}()

	actorID := uuid.NewString()
	if err := runSession(ctx, fleet, store, actorID); err != nil {
		log.Fatalf("session: %v", err)
	}

	renderOverview(ctx, fleet, store)

	if *withAI {
		summarize(ctx, fleet)
	}

	if *watch {
		log.Println("Watching for changes, Ctrl-C to exit")
		<-ctx.Done()
	}
}

// runSession walks the stores through a typical admin day: freeze and thaw a
// card, tighten controls, approve a request end to end, issue a virtual card
// and produce the month's artifacts.
func runSession(ctx context.Context, fleet *cards.InMemory, store *ops.InMemory, actorID string) error {
	card := fleet.ListCards(ctx)[0]

	if _, err := fleet.ToggleFreeze(ctx, card.ID); err != nil {
		return fmt.Errorf("freeze: %w", err)
	}
	if _, err := store.AddAuditLog(ctx, ops.AuditLogEntry{
		ActorID: actorID, Action: "card.freeze", TargetType: ops.AuditTargetCard,
		TargetID: card.ID, Description: "card frozen from dashboard",
	}); err != nil {
		return err
	}
	if _, err := fleet.ToggleFreeze(ctx, card.ID); err != nil {
		return fmt.Errorf("unfreeze: %w", err)
	}

	controls := card.Controls
	controls.MonthlyLimit = 7500
	controls.International = false
	if _, err := fleet.UpdateControls(ctx, card.ID, controls); err != nil {
		return fmt.Errorf("update controls: %w", err)
	}

	req, err := store.CreateCardRequest(ctx, ops.CardRequest{
		RequestorID: actorID,
		RequestType: ops.RequestNewCard,
		Details:     ops.RequestDetails{CardHolderName: "Carol Diaz", CardType: "virtual", Limit: 1000, Reason: "contractor onboarding"},
	})
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if _, err := store.UpdateCardRequestStatus(ctx, req.ID, ops.RequestApproved, actorID); err != nil {
		return fmt.Errorf("approve request: %w", err)
	}
	if _, err := store.UpdateCardRequestStatus(ctx, req.ID, ops.RequestCompleted, actorID); err != nil {
		return fmt.Errorf("complete request: %w", err)
	}

	vc, err := store.CreateVirtualCard(ctx, ops.VirtualCard{
		Card:        cards.Card{HolderName: "Carol Diaz", Limit: 1000, Balance: 0},
		IsSingleUse: false,
		Purpose:     "contractor expenses",
		Expiration:  time.Now().UTC().AddDate(1, 0, 0),
	})
	if err != nil {
		return fmt.Errorf("issue virtual card: %w", err)
	}
	if _, err := store.AddAuditLog(ctx, ops.AuditLogEntry{
		ActorID: actorID, Action: "virtual_card.create", TargetType: ops.AuditTargetVirtualCard,
		TargetID: vc.ID, Description: "virtual card issued for " + vc.Purpose,
	}); err != nil {
		return err
	}

	if _, err := store.AddSubscription(ctx, ops.Subscription{
		CardID: card.ID, MerchantName: "Figma", Amount: 45, Currency: "USD",
		BillingCycle: ops.CycleMonthly, NextBillingDate: time.Now().UTC().AddDate(0, 1, 0),
		Category: "Software", StartDate: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("add subscription: %w", err)
	}

	if _, err := store.AddBudget(ctx, ops.Budget{
		Name: "Engineering Q3", Period: "quarterly", TotalAmount: 25000,
		StartDate: time.Now().UTC(), EndDate: time.Now().UTC().AddDate(0, 3, 0),
		CardsLinked: []string{card.ID},
	}); err != nil {
		return fmt.Errorf("add budget: %w", err)
	}

	now := time.Now().UTC()
	if _, err := store.GenerateStatement(ctx, card.ID, int(now.Month()), now.Year()); err != nil {
		return fmt.Errorf("generate statement: %w", err)
	}
	if _, err := store.GenerateComplianceReport(ctx, ops.ReportParams{ReportType: ops.ReportUserActivity}); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	return nil
}

func renderOverview(ctx context.Context, fleet *cards.InMemory, store *ops.InMemory) {
	snapshot := fleet.ListCards(ctx)
	opsSnap := store.Snapshot(ctx)
	currency := opsSnap.Config.DefaultCurrency

	fmt.Println()
	fmt.Println("== Corporate Card Overview ==")
	fmt.Printf("Total spent:  %s\n", money.Format(cards.TotalSpent(snapshot), currency))
	fmt.Printf("Total limit:  %s\n", money.Format(cards.TotalLimit(snapshot), currency))
	fmt.Printf("Utilization:  %.1f%%\n", cards.Utilization(snapshot))

	fmt.Println("\nSpend by category:")
	for _, g := range cards.SpendingByCategory(snapshot) {
		fmt.Printf("  %-16s %s\n", g.Category, money.Format(g.Amount, currency))
	}

	fmt.Println("\nRecent transactions:")
	for _, tx := range cards.RecentTransactions(snapshot, 10) {
		fmt.Printf("  %s  %-14s %-14s %s\n",
			tx.Date.Format("Jan 02 15:04"), tx.Merchant, tx.Category, money.Format(tx.Amount, currency))
	}

	fmt.Println("\nCard requests:")
	for _, r := range opsSnap.CardRequests {
		fmt.Printf("  %-14s %s\n", r.RequestType, money.Capitalize(string(r.Status)))
	}

	fmt.Printf("\nVirtual cards: %d  Subscriptions: %d  Budgets: %d  Statements: %d  Audit entries: %d\n",
		len(opsSnap.VirtualCards), len(opsSnap.Subscriptions),
		len(opsSnap.Budgets), len(opsSnap.Statements), len(opsSnap.AuditLogs))
}

func summarize(ctx context.Context, fleet *cards.InMemory) {
	key := os.Getenv("CARDOPS_OPENAI_API_KEY")
	if key == "" {
		log.Println("CARDOPS_OPENAI_API_KEY not set, skipping insights")
		return
	}
	client := insights.New(key)
	if model := os.Getenv("CARDOPS_OPENAI_MODEL"); model != "" {
		client.Model = model
	}
	if cur := os.Getenv("CARDOPS_DEFAULT_CURRENCY"); cur != "" {
		client.Currency = cur
	}

	result := insights.InFlight()
	if result.State() == insights.StateInFlight {
		fmt.Println("\nRequesting spending insights...")
	}
	txs := cards.RecentTransactions(fleet.ListCards(ctx), -1)
	result = insights.Settled(client.Summarize(ctx, txs), nil)

	if text, ok := result.Value(); ok {
		fmt.Println("\n== AI Spending Insights ==")
		fmt.Println(text)
	}
}
