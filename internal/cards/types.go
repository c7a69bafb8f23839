package cards

import (
	"errors"
	"time"
)

// CardStatus is the lifecycle state of a corporate card.
type CardStatus string

const (
	StatusActive  CardStatus = "Active"
	StatusFrozen  CardStatus = "Frozen"
	StatusExpired CardStatus = "Expired"
	StatusPending CardStatus = "Pending"
)

// CardType distinguishes plastic from issued-on-demand cards.
type CardType string

const (
	TypePhysical CardType = "Physical"
	TypeVirtual  CardType = "Virtual"
)

// TransactionStatus is the settlement state of a single transaction.
type TransactionStatus string

const (
	TxCompleted TransactionStatus = "Completed"
	TxPending   TransactionStatus = "Pending"
	TxDeclined  TransactionStatus = "Declined"
)

// Transaction is a single card charge. Immutable once created; owned
// exclusively by its parent card.
type Transaction struct {
	ID          string            `json:"id"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
	Merchant    string            `json:"merchant"`
	Category    string            `json:"category"`
	Amount      float64           `json:"amount"`
	Status      TransactionStatus `json:"status"`
}

// CardControls is the spending-control block attached to every card.
// MonthlyLimit is the source of truth mirrored into Card.Limit.
type CardControls struct {
	MonthlyLimit              float64  `json:"monthly_limit"`
	ATM                       bool     `json:"atm"`
	Online                    bool     `json:"online"`
	Contactless               bool     `json:"contactless"`
	International             bool     `json:"international,omitempty"`
	DailyTransactionLimit     float64  `json:"daily_transaction_limit,omitempty"`
	RecurringTransactionLimit float64  `json:"recurring_transaction_limit,omitempty"`
	SingleTransactionLimit    float64  `json:"single_transaction_limit,omitempty"`
	AllowedSpendingCategories []string `json:"allowed_spending_categories,omitempty"`
	BlockGambling             bool     `json:"block_gambling,omitempty"`
	BlockAdultContent         bool     `json:"block_adult_content,omitempty"`
}

// Card is a company-issued payment card with its transaction history.
// Frozen==true iff Status==StatusFrozen on the toggle path.
type Card struct {
	ID                string        `json:"id"`
	HolderName        string        `json:"holder_name"`
	NumberMask        string        `json:"number_mask"`
	Balance           float64       `json:"balance"`
	Limit             float64       `json:"limit"`
	Status            CardStatus    `json:"status"`
	Type              CardType      `json:"type"`
	IssueDate         *time.Time    `json:"issue_date,omitempty"`
	ExpirationDate    *time.Time    `json:"expiration_date,omitempty"`
	AssociatedProject string        `json:"associated_project,omitempty"`
	Frozen            bool          `json:"frozen"`
	Transactions      []Transaction `json:"transactions"`
	Controls          CardControls  `json:"controls"`
}

var (
	ErrNotFound      = errors.New("card not found")
	ErrInvalidAmount = errors.New("invalid amount (must be >= 0)")
)

func (c Card) clone() Card {
	out := c
	out.Transactions = make([]Transaction, len(c.Transactions))
	copy(out.Transactions, c.Transactions)
	if c.Controls.AllowedSpendingCategories != nil {
		out.Controls.AllowedSpendingCategories = append([]string(nil), c.Controls.AllowedSpendingCategories...)
	}
	if c.IssueDate != nil {
		d := *c.IssueDate
		out.IssueDate = &d
	}
	if c.ExpirationDate != nil {
		d := *c.ExpirationDate
		out.ExpirationDate = &d
	}
	return out
}
