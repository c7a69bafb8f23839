package cards

import (
	"context"
	"sync"
	"time"

	"cardops.org/internal/ids"
	"cardops.org/internal/obs"
	"cardops.org/internal/stream"
)

const storeName = "cards"

// Service defines operations over the corporate card fleet.
type Service interface {
	ListCards(ctx context.Context) []Card
	GetCard(ctx context.Context, id string) (Card, error)
	ToggleFreeze(ctx context.Context, id string) (Card, error)
	UpdateControls(ctx context.Context, id string, controls CardControls) (Card, error)
	AddTransaction(ctx context.Context, cardID string, tx Transaction) (Transaction, error)
}

// InMemory implements Service with in-process concurrency safety. State is
// lost on restart; durability is out of scope for this layer.
type InMemory struct {
	mu     sync.RWMutex
	cards  []*Card
	events *stream.Stream
}

// NewInMemory creates an empty fleet. The stream may be nil when no view
// needs change notification.
func NewInMemory(events *stream.Stream) *InMemory {
	return &InMemory{events: events}
}

// ListCards returns a deep-copied snapshot in insertion order.
func (s *InMemory) ListCards(ctx context.Context) []Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c.clone())
	}
	return out
}

func (s *InMemory) GetCard(ctx context.Context, id string) (Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.find(id)
	if c == nil {
		return Card{}, ErrNotFound
	}
	return c.clone(), nil
}

// ToggleFreeze flips the frozen flag and mirrors the status: Frozen when
// freezing, Active when unfreezing. Unknown ids are reported, not ignored.
func (s *InMemory) ToggleFreeze(ctx context.Context, id string) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.find(id)
	if c == nil {
		obs.ObserveMutation(storeName, "toggle_freeze", "not_found")
		return Card{}, ErrNotFound
	}
	c.Frozen = !c.Frozen
	if c.Frozen {
		c.Status = StatusFrozen
	} else {
		c.Status = StatusActive
	}
	obs.ObserveMutation(storeName, "toggle_freeze", "ok")
	s.events.Publish(stream.Event{Store: storeName, Op: "toggle_freeze", EntityID: id})
	return c.clone(), nil
}

// UpdateControls replaces the control block wholesale and mirrors
// MonthlyLimit into the card limit.
func (s *InMemory) UpdateControls(ctx context.Context, id string, controls CardControls) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.find(id)
	if c == nil {
		obs.ObserveMutation(storeName, "update_controls", "not_found")
		return Card{}, ErrNotFound
	}
	c.Controls = controls
	c.Limit = controls.MonthlyLimit
	obs.ObserveMutation(storeName, "update_controls", "ok")
	s.events.Publish(stream.Event{Store: storeName, Op: "update_controls", EntityID: id})
	return c.clone(), nil
}

// AddTransaction appends a charge to a card's history. The id and date are
// assigned when left zero-valued. Histories are append-only.
func (s *InMemory) AddTransaction(ctx context.Context, cardID string, tx Transaction) (Transaction, error) {
	if tx.Amount < 0 {
		return Transaction{}, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.find(cardID)
	if c == nil {
		obs.ObserveMutation(storeName, "add_transaction", "not_found")
		return Transaction{}, ErrNotFound
	}
	if tx.ID == "" {
		tx.ID = ids.New()
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}
	if tx.Status == "" {
		tx.Status = TxCompleted
	}
	c.Transactions = append(c.Transactions, tx)
	obs.ObserveMutation(storeName, "add_transaction", "ok")
	s.events.Publish(stream.Event{Store: storeName, Op: "add_transaction", EntityID: cardID})
	return tx, nil
}

// CardTransactions returns a copy of one card's history. Satisfies the
// statement aggregation source used by the operations store.
func (s *InMemory) CardTransactions(ctx context.Context, cardID string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.find(cardID)
	if c == nil {
		return nil, ErrNotFound
	}
	out := make([]Transaction, len(c.Transactions))
	copy(out, c.Transactions)
	return out, nil
}

// addCard is used by the seeder; callers go through card requests instead.
func (s *InMemory) addCard(c Card) Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = ids.New()
	}
	stored := c.clone()
	s.cards = append(s.cards, &stored)
	return stored
}

func (s *InMemory) find(id string) *Card {
	for _, c := range s.cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}
