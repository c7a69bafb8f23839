package cards

import (
	"fmt"
	"math/rand"
	"time"

	"cardops.org/internal/stream"
)

var (
	seedMerchants  = []string{"Amazon", "Uber", "Starbucks", "Zoom", "DigitalOcean", "Google Ads", "Office Depot"}
	seedCategories = []string{"E-commerce", "Transport", "Food", "Software", "Infrastructure", "Advertising", "Supplies"}
)

// NewSeeded creates the demo fleet: two physical cards with spending history.
func NewSeeded(events *stream.Stream) *InMemory {
	s := NewInMemory(events)
	rnd := rand.New(rand.NewSource(1))

	s.addCard(Card{
		ID:         "card-1",
		HolderName: "Alice Johnson",
		NumberMask: "1234",
		Balance:    1450,
		Limit:      5000,
		Status:     StatusActive,
		Type:       TypePhysical,
		Controls: CardControls{
			MonthlyLimit:  5000,
			ATM:           true,
			Online:        true,
			Contactless:   true,
			International: true,
		},
		Transactions: seedTransactions(rnd, 12),
	})
	s.addCard(Card{
		ID:         "card-2",
		HolderName: "Bob Smith",
		NumberMask: "5678",
		Balance:    4200,
		Limit:      5000,
		Status:     StatusActive,
		Type:       TypePhysical,
		Controls: CardControls{
			MonthlyLimit: 5000,
			Online:       true,
			Contactless:  true,
		},
		Transactions: seedTransactions(rnd, 8),
	})
	return s
}

// seedTransactions spreads n completed charges over the last 30 days.
func seedTransactions(rnd *rand.Rand, n int) []Transaction {
	out := make([]Transaction, 0, n)
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		out = append(out, Transaction{
			ID:          fmt.Sprintf("tx-%d", i),
			Date:        now.Add(-time.Duration(rnd.Int63n(int64(30 * 24 * time.Hour)))),
			Description: fmt.Sprintf("Order #%d", 1000+i),
			Merchant:    seedMerchants[i%len(seedMerchants)],
			Category:    seedCategories[i%len(seedCategories)],
			Amount:      float64(5 + rnd.Intn(495)),
			Status:      TxCompleted,
		})
	}
	return out
}
