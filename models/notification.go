package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Notification struct {
	ID        string          `db:"id" json:"id"`
	AccountID string          `db:"account_id" json:"account_id"`
	Kind      string          `db:"kind" json:"kind"`
	Status    string          `db:"status" json:"status"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Currency  string          `db:"currency" json:"currency"`
	Message   string          `db:"message" json:"message"`
	Read      bool            `db:"read" json:"read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type NotificationFilter struct {
	Status string
	Kind   string
	Page   int
	Limit  int
}
