package models

import "time"

// DepositWallet is a platform-owned address users send funds to. The private
// key never leaves the backend.
type DepositWallet struct {
	ID         int64     `db:"id" json:"id"`
	Currency   Currency  `db:"currency" json:"currency"`
	Address    string    `db:"address" json:"address"`
	PrivateKey string    `db:"private_key" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type DepositInput struct {
	Amount     string `json:"amount" binding:"required"`
	CryptoType string `json:"crypto_type" binding:"required"`
}

type WithdrawInput struct {
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

type AdjustInput struct {
	AccountID   string            `json:"account_id" binding:"required"`
	Adjustments map[string]string `json:"adjustments" binding:"required"`
}

type RateInput struct {
	Symbol  string  `json:"symbol" binding:"required"`
	USDRate float64 `json:"usd_rate" binding:"required"`
}
