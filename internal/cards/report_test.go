package cards

import (
	"fmt"
	"testing"
	"time"
)

func TestSpendAggregation(t *testing.T) {
	fleet := []Card{
		{Balance: 1450, Limit: 5000},
		{Balance: 4200, Limit: 5000},
	}
	if got := TotalSpent(fleet); got != 5650 {
		t.Fatalf("total spent = %v, want 5650", got)
	}
	if got := TotalLimit(fleet); got != 10000 {
		t.Fatalf("total limit = %v, want 10000", got)
	}
	if got := Utilization(fleet); got < 56.49 || got > 56.51 {
		t.Fatalf("utilization = %v, want ~56.5", got)
	}
}

func TestUtilizationZeroLimit(t *testing.T) {
	if got := Utilization([]Card{{Balance: 500}}); got != 0 {
		t.Fatalf("utilization with zero limit = %v, want 0", got)
	}
}

func TestSpendingByCategoryFirstSeenOrder(t *testing.T) {
	fleet := []Card{{Transactions: []Transaction{
		{Merchant: "Amazon", Category: "E-commerce", Amount: 100},
		{Merchant: "Uber", Category: "Transport", Amount: 40},
		{Merchant: "Starbucks", Category: "Food", Amount: 10},
	}}}

	groups := SpendingByCategory(fleet)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	want := []CategorySpend{
		{Category: "E-commerce", Amount: 100},
		{Category: "Transport", Amount: 40},
		{Category: "Food", Amount: 10},
	}
	for i, g := range groups {
		if g != want[i] {
			t.Fatalf("group %d = %+v, want %+v", i, g, want[i])
		}
	}
}

func TestRecentTransactionsSortedAndTruncated(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var fleet []Card
	for i := 0; i < 3; i++ {
		var txs []Transaction
		for j := 0; j < 5; j++ {
			txs = append(txs, Transaction{
				ID:   fmt.Sprintf("tx-%d-%d", i, j),
				Date: base.Add(time.Duration(i*5+j) * time.Hour),
			})
		}
		fleet = append(fleet, Card{Transactions: txs})
	}

	recent := RecentTransactions(fleet, 10)
	if len(recent) != 10 {
		t.Fatalf("expected 10 transactions, got %d", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].Date.After(recent[i-1].Date) {
			t.Fatalf("not sorted descending at %d", i)
		}
	}
	if recent[0].Date != base.Add(14*time.Hour) {
		t.Fatalf("newest transaction missing: %v", recent[0].Date)
	}
}
