package models

import "time"

// CryptoRate is the latest known USD price for one symbol. Used for reporting
// only, never gates a ledger mutation.
type CryptoRate struct {
	Symbol      Currency  `db:"symbol" json:"symbol"`
	USDRate     float64   `db:"usd_rate" json:"usd_rate"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

// PortfolioEntry pairs a held amount with its USD valuation.
type PortfolioEntry struct {
	Amount   string  `json:"amount"`
	USDRate  float64 `json:"usd_rate"`
	USDValue string  `json:"usd_value"`
}

type Portfolio struct {
	AccountID string                      `json:"account_id"`
	Holdings  map[Currency]PortfolioEntry `json:"holdings"`
	TotalUSD  string                      `json:"total_usd"`
}
