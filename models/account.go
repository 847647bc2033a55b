package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Email           string          `db:"email" json:"email"`
	Role            string          `db:"role" json:"role"`
	BitcoinAddress  string          `db:"bitcoin_address" json:"bitcoin_address,omitempty"`
	TotalInvestment decimal.Decimal `db:"total_investment" json:"total_investment"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Dashboard is the user-facing summary: profile, full balance snapshot and
// the most recent transactions.
type Dashboard struct {
	Account      Account       `json:"account"`
	Balances     Balances      `json:"balances"`
	Transactions []Transaction `json:"transactions"`
}

// Balances maps currency code to a non-negative amount.
type Balances map[Currency]decimal.Decimal

// Full returns a copy covering every enumerated currency, zero-filled for
// currencies the account never touched.
func (b Balances) Full() Balances {
	out := make(Balances, len(currencies))
	for _, c := range currencies {
		if v, ok := b[c]; ok {
			out[c] = v
		} else {
			out[c] = decimal.Zero
		}
	}
	return out
}
