package service

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/cache"
	"crypto_invest_back/pkg/errs"
	"crypto_invest_back/pkg/repository"
)

const coinGeckoURL = "https://api.coingecko.com/api/v3/simple/price"

type RatesService struct {
	repos  repository.Rates
	cache  *cache.RateCache
	client *resty.Client
	apiKey string
}

func NewRatesService(repos repository.Rates, rateCache *cache.RateCache, apiKey string) *RatesService {
	return &RatesService{
		repos:  repos,
		cache:  rateCache,
		client: resty.New(),
		apiKey: apiKey,
	}
}

// USDRate resolves cache, then the persisted rate, then CoinGecko. A fetched
// rate is persisted and cached. Returns false when the rate is unknown
// everywhere; valuation degrades to zero for that currency.
func (s *RatesService) USDRate(ctx context.Context, symbol models.Currency) (float64, bool) {
	if rate, ok := s.cache.Get(string(symbol)); ok {
		return rate, true
	}

	if stored, err := s.repos.GetRate(symbol); err == nil {
		s.cache.Set(string(symbol), stored.USDRate)
		return stored.USDRate, true
	}

	rate, err := s.fetchCoinGecko(ctx, symbol)
	if err != nil {
		logrus.WithError(err).WithField("symbol", symbol).Warn("rate unavailable")
		return 0, false
	}
	if _, err := s.repos.UpsertRate(symbol, rate); err != nil {
		logrus.WithError(err).WithField("symbol", symbol).Warn("fetched rate not persisted")
	}
	s.cache.Set(string(symbol), rate)
	return rate, true
}

func (s *RatesService) fetchCoinGecko(ctx context.Context, symbol models.Currency) (float64, error) {
	id := coinGeckoID(symbol)
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("x-cg-demo-api-key", s.apiKey).
		SetHeader("Accept", "application/json").
		SetQueryParam("ids", id).
		SetQueryParam("vs_currencies", "usd").
		SetResult(map[string]map[string]float64{}).
		Get(coinGeckoURL)
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, errs.Newf(errs.NotFound, "coingecko returned %s", resp.Status())
	}

	data := *resp.Result().(*map[string]map[string]float64)
	rate := data[id]["usd"]
	if rate == 0 {
		return 0, errs.Newf(errs.NotFound, "no usd rate for %s", symbol)
	}
	return rate, nil
}

func (s *RatesService) SetRate(symbol models.Currency, usdRate float64) (models.CryptoRate, error) {
	parsed, err := models.ParseCurrency(string(symbol))
	if err != nil {
		return models.CryptoRate{}, err
	}
	if usdRate <= 0 {
		return models.CryptoRate{}, errs.New(errs.Validation, "usd rate must be positive")
	}
	rate, err := s.repos.UpsertRate(parsed, usdRate)
	if err != nil {
		return models.CryptoRate{}, err
	}
	s.cache.Set(string(parsed), usdRate)
	return rate, nil
}

func (s *RatesService) List() ([]models.CryptoRate, error) {
	return s.repos.ListRates()
}

func coinGeckoID(symbol models.Currency) string {
	switch symbol {
	case models.BTC:
		return "bitcoin"
	case models.ETH:
		return "ethereum"
	case models.USDT:
		return "tether"
	case models.LTC:
		return "litecoin"
	case models.SOL:
		return "solana"
	case models.USDC:
		return "usd-coin"
	case models.TRX:
		return "tron"
	case models.XRP:
		return "ripple"
	case models.DOGE:
		return "dogecoin"
	case models.BNB:
		return "binancecoin"
	case models.BCH:
		return "bitcoin-cash"
	}
	return strings.ToLower(string(symbol))
}
