package service

import (
	"context"

	"github.com/shopspring/decimal"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/repository"
)

type PortfolioService struct {
	ledger repository.Ledger
	rates  RateSource
}

func NewPortfolioService(ledger repository.Ledger, rates RateSource) *PortfolioService {
	return &PortfolioService{ledger: ledger, rates: rates}
}

// Value composes a balance snapshot with the latest known rates. A currency
// with no known rate contributes 0 to the total; that is documented
// degradation, not an error. Never mutates state.
func (s *PortfolioService) Value(ctx context.Context, accountID string) (models.Portfolio, error) {
	if _, err := s.ledger.GetAccount(accountID); err != nil {
		return models.Portfolio{}, err
	}
	snapshot, err := s.ledger.Snapshot(accountID)
	if err != nil {
		return models.Portfolio{}, err
	}

	holdings := make(map[models.Currency]models.PortfolioEntry, len(snapshot))
	total := decimal.Zero
	for _, currency := range models.Currencies() {
		amount := snapshot[currency]
		rate, ok := s.rates.USDRate(ctx, currency)
		if !ok {
			rate = 0
		}
		usd := amount.Mul(decimal.NewFromFloat(rate))
		holdings[currency] = models.PortfolioEntry{
			Amount:   amount.String(),
			USDRate:  rate,
			USDValue: usd.StringFixed(2),
		}
		total = total.Add(usd)
	}

	return models.Portfolio{
		AccountID: accountID,
		Holdings:  holdings,
		TotalUSD:  total.StringFixed(2),
	}, nil
}

func (s *PortfolioService) Dashboard(ctx context.Context, accountID string) (models.Dashboard, error) {
	acc, err := s.ledger.GetAccount(accountID)
	if err != nil {
		return models.Dashboard{}, err
	}
	snapshot, err := s.ledger.Snapshot(accountID)
	if err != nil {
		return models.Dashboard{}, err
	}
	recent, err := s.ledger.ListByAccount(accountID, "", 10)
	if err != nil {
		return models.Dashboard{}, err
	}
	return models.Dashboard{
		Account:      acc,
		Balances:     snapshot,
		Transactions: recent,
	}, nil
}
