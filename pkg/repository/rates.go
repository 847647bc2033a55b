package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/errs"
)

type RatesPostgres struct {
	db *sqlx.DB
}

func NewRatesPostgres(db *sqlx.DB) *RatesPostgres {
	return &RatesPostgres{db: db}
}

func (r *RatesPostgres) UpsertRate(symbol models.Currency, usdRate float64) (models.CryptoRate, error) {
	rate := models.CryptoRate{Symbol: symbol, USDRate: usdRate, LastUpdated: time.Now().UTC()}
	query := `
        INSERT INTO crypto_rates (symbol, usd_rate, last_updated)
        VALUES ($1, $2, $3)
        ON CONFLICT (symbol) DO UPDATE SET usd_rate = EXCLUDED.usd_rate, last_updated = EXCLUDED.last_updated
    `
	if _, err := r.db.Exec(query, rate.Symbol, rate.USDRate, rate.LastUpdated); err != nil {
		return models.CryptoRate{}, errors.Wrap(err, "upsert rate")
	}
	return rate, nil
}

func (r *RatesPostgres) GetRate(symbol models.Currency) (models.CryptoRate, error) {
	var rate models.CryptoRate
	err := r.db.Get(&rate, `SELECT symbol, usd_rate, last_updated FROM crypto_rates WHERE symbol = $1`, symbol)
	if err == sql.ErrNoRows {
		return models.CryptoRate{}, errs.Newf(errs.NotFound, "no rate for %s", symbol)
	}
	if err != nil {
		return models.CryptoRate{}, errors.Wrap(err, "get rate")
	}
	return rate, nil
}

func (r *RatesPostgres) ListRates() ([]models.CryptoRate, error) {
	var rates []models.CryptoRate
	if err := r.db.Select(&rates, `SELECT symbol, usd_rate, last_updated FROM crypto_rates ORDER BY symbol`); err != nil {
		return nil, errors.Wrap(err, "list rates")
	}
	return rates, nil
}
