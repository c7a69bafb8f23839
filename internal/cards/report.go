package cards

import (
	"sort"

	"cardops.org/internal/money"
)

// Overview projections computed per render from a fleet snapshot. They hold
// no state of their own; callers re-derive them after every change event.

// TotalSpent sums card balances across the fleet.
func TotalSpent(fleet []Card) float64 {
	var sum float64
	for _, c := range fleet {
		sum += c.Balance
	}
	return sum
}

// TotalLimit sums card limits across the fleet.
func TotalLimit(fleet []Card) float64 {
	var sum float64
	for _, c := range fleet {
		sum += c.Limit
	}
	return sum
}

// Utilization is fleet spend as a percentage of the fleet limit.
func Utilization(fleet []Card) float64 {
	return money.Utilization(TotalSpent(fleet), TotalLimit(fleet))
}

// CategorySpend is one spend-by-category group.
type CategorySpend struct {
	Category string
	Amount   float64
}

// SpendingByCategory groups the flattened transaction history by category,
// summing amounts. Groups appear in first-seen order.
func SpendingByCategory(fleet []Card) []CategorySpend {
	idx := make(map[string]int)
	var out []CategorySpend
	for _, c := range fleet {
		for _, tx := range c.Transactions {
			i, ok := idx[tx.Category]
			if !ok {
				i = len(out)
				idx[tx.Category] = i
				out = append(out, CategorySpend{Category: tx.Category})
			}
			out[i].Amount += tx.Amount
		}
	}
	return out
}

// RecentTransactions flattens every card's history, sorts by date descending
// and truncates to n.
func RecentTransactions(fleet []Card, n int) []Transaction {
	var all []Transaction
	for _, c := range fleet {
		all = append(all, c.Transactions...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}
