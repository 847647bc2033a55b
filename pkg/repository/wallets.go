package repository

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"crypto_invest_back/models"
)

type DepositWalletsPostgres struct {
	db *sqlx.DB
}

func NewDepositWalletsPostgres(db *sqlx.DB) *DepositWalletsPostgres {
	return &DepositWalletsPostgres{db: db}
}

func (r *DepositWalletsPostgres) InsertWallet(w models.DepositWallet) error {
	w.CreatedAt = time.Now().UTC()
	query := `INSERT INTO deposit_wallets (currency, address, private_key, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(query, w.Currency, w.Address, w.PrivateKey, w.CreatedAt)
	return errors.Wrap(err, "insert deposit wallet")
}

func (r *DepositWalletsPostgres) ListWallets() ([]models.DepositWallet, error) {
	var wallets []models.DepositWallet
	query := `SELECT id, currency, address, private_key, created_at FROM deposit_wallets ORDER BY currency`
	if err := r.db.Select(&wallets, query); err != nil {
		return nil, errors.Wrap(err, "list deposit wallets")
	}
	return wallets, nil
}

func (r *DepositWalletsPostgres) CountWallets() (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT count(*) FROM deposit_wallets`)
	return count, errors.Wrap(err, "count deposit wallets")
}
