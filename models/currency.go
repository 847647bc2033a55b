package models

import (
	"strings"

	"crypto_invest_back/pkg/errs"
)

type Currency string

const (
	BTC  Currency = "BTC"
	ETH  Currency = "ETH"
	USDT Currency = "USDT"
	LTC  Currency = "LTC"
	SOL  Currency = "SOL"
	USDC Currency = "USDC"
	TRX  Currency = "TRX"
	XRP  Currency = "XRP"
	DOGE Currency = "DOGE"
	BNB  Currency = "BNB"
	BCH  Currency = "BCH"
)

// USD is the fiat unit used by growth records and portfolio valuation.
// It is not a balance currency and is rejected by ParseCurrency.
const USD Currency = "USD"

var currencies = []Currency{BTC, ETH, USDT, LTC, SOL, USDC, TRX, XRP, DOGE, BNB, BCH}

func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// ParseCurrency validates a currency code at the boundary. Unknown codes are
// rejected, never silently accepted.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range currencies {
		if c == known {
			return c, nil
		}
	}
	return "", errs.Newf(errs.Validation, "unknown currency code %q", s)
}
