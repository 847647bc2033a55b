package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/errs"
)

// maxTxRetries bounds the retry loop on serialization/deadlock failures
// before surfacing Conflict to the caller.
const maxTxRetries = 3

type LedgerPostgres struct {
	db *sqlx.DB
}

func NewLedgerPostgres(db *sqlx.DB) *LedgerPostgres {
	return &LedgerPostgres{db: db}
}

// pgOps runs the ledger primitives against either the pool or an open
// transaction.
type pgOps struct {
	q sqlx.Ext
}

func (r *LedgerPostgres) ops() *pgOps { return &pgOps{q: r.db} }

func (r *LedgerPostgres) Atomic(ctx context.Context, accountID string, fn func(ops LedgerOps) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = r.runAccountTx(ctx, accountID, fn)
		if err == nil || !isRetryablePgErr(err) {
			return err
		}
	}
	return errs.Wrap(errs.Conflict, err, "account busy, compound operation did not commit")
}

// runAccountTx locks the account row for the duration of fn, making every
// compound operation on one account serialize against the others.
func (r *LedgerPostgres) runAccountTx(ctx context.Context, accountID string, fn func(ops LedgerOps) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin account tx")
	}
	defer tx.Rollback()

	var locked string
	if err := tx.Get(&locked, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, accountID); err != nil {
		if err == sql.ErrNoRows {
			return errs.Newf(errs.NotFound, "account %s not found", accountID)
		}
		return errors.Wrap(err, "lock account row")
	}

	if err := fn(&pgOps{q: tx}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit account tx")
}

func isRetryablePgErr(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure, deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// Single operations outside a compound unit run in auto-commit mode.

func (r *LedgerPostgres) Credit(accountID string, currency models.Currency, amount decimal.Decimal) error {
	return r.ops().Credit(accountID, currency, amount)
}

func (r *LedgerPostgres) Debit(accountID string, currency models.Currency, amount decimal.Decimal) error {
	return r.ops().Debit(accountID, currency, amount)
}

func (r *LedgerPostgres) ApplyDelta(accountID string, currency models.Currency, delta decimal.Decimal) (decimal.Decimal, error) {
	return r.ops().ApplyDelta(accountID, currency, delta)
}

func (r *LedgerPostgres) Snapshot(accountID string) (models.Balances, error) {
	return r.ops().Snapshot(accountID)
}

func (r *LedgerPostgres) AddInvestmentTotal(accountID string, usd decimal.Decimal) error {
	return r.ops().AddInvestmentTotal(accountID, usd)
}

func (r *LedgerPostgres) Record(tx models.Transaction) (models.Transaction, error) {
	return r.ops().Record(tx)
}

func (r *LedgerPostgres) FindByID(id string) (models.Transaction, error) {
	return r.ops().FindByID(id)
}

func (r *LedgerPostgres) Transition(id string, status models.TransactionStatus) error {
	return r.ops().Transition(id, status)
}

func (o *pgOps) Credit(accountID string, currency models.Currency, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errs.New(errs.Validation, "credit amount must be positive")
	}
	query := `
        INSERT INTO balances (account_id, currency, amount)
        VALUES ($1, $2, $3)
        ON CONFLICT (account_id, currency)
        DO UPDATE SET amount = balances.amount + EXCLUDED.amount, updated_at = now()
    `
	_, err := o.q.Exec(query, accountID, currency, amount)
	return errors.Wrap(err, "credit balance")
}

func (o *pgOps) Debit(accountID string, currency models.Currency, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errs.New(errs.Validation, "debit amount must be positive")
	}
	// The amount >= $3 guard is checked against the committed row under the
	// account lock, so the balance can never go negative.
	query := `
        UPDATE balances
        SET amount = amount - $3, updated_at = now()
        WHERE account_id = $1 AND currency = $2 AND amount >= $3
    `
	res, err := o.q.Exec(query, accountID, currency, amount)
	if err != nil {
		return errors.Wrap(err, "debit balance")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "debit balance")
	}
	if affected == 0 {
		return errs.Newf(errs.InsufficientFunds, "insufficient %s balance", currency)
	}
	return nil
}

func (o *pgOps) ApplyDelta(accountID string, currency models.Currency, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
        INSERT INTO balances (account_id, currency, amount)
        VALUES ($1, $2, GREATEST($3::numeric, 0))
        ON CONFLICT (account_id, currency)
        DO UPDATE SET amount = GREATEST(balances.amount + $3::numeric, 0), updated_at = now()
        RETURNING amount
    `
	var applied decimal.Decimal
	if err := sqlx.Get(o.q, &applied, query, accountID, currency, delta); err != nil {
		return decimal.Zero, errors.Wrap(err, "apply balance delta")
	}
	return applied, nil
}

func (o *pgOps) Snapshot(accountID string) (models.Balances, error) {
	rows := []struct {
		Currency models.Currency `db:"currency"`
		Amount   decimal.Decimal `db:"amount"`
	}{}
	query := `SELECT currency, amount FROM balances WHERE account_id = $1`
	if err := sqlx.Select(o.q, &rows, query, accountID); err != nil {
		return nil, errors.Wrap(err, "read balances")
	}
	balances := make(models.Balances, len(rows))
	for _, row := range rows {
		balances[row.Currency] = row.Amount
	}
	return balances.Full(), nil
}

func (o *pgOps) AddInvestmentTotal(accountID string, usd decimal.Decimal) error {
	res, err := o.q.Exec(`UPDATE accounts SET total_investment = total_investment + $2 WHERE id = $1`, accountID, usd)
	if err != nil {
		return errors.Wrap(err, "add investment total")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "add investment total")
	}
	if affected == 0 {
		return errs.Newf(errs.NotFound, "account %s not found", accountID)
	}
	return nil
}

func (o *pgOps) Record(tx models.Transaction) (models.Transaction, error) {
	if tx.Status == "" {
		tx.Status = models.StatusPending
	}
	if err := tx.ValidateForRecord(); err != nil {
		return models.Transaction{}, err
	}
	tx.ID = uuid.New().String()
	tx.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO transactions (id, account_id, kind, amount, currency, status, receipt_ref, destination, deltas, performed_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := o.q.Exec(query,
		tx.ID, tx.AccountID, tx.Kind, tx.Amount, tx.Currency, tx.Status,
		tx.ReceiptRef, tx.Destination, tx.Deltas, tx.PerformedBy, tx.CreatedAt,
	)
	if err != nil {
		return models.Transaction{}, errors.Wrap(err, "record transaction")
	}
	return tx, nil
}

const transactionColumns = `id, account_id, kind, amount, currency, status, receipt_ref, destination, deltas, performed_by, created_at`

func (o *pgOps) FindByID(id string) (models.Transaction, error) {
	var tx models.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	if err := sqlx.Get(o.q, &tx, query, id); err != nil {
		if err == sql.ErrNoRows {
			return models.Transaction{}, errs.Newf(errs.NotFound, "transaction %s not found", id)
		}
		return models.Transaction{}, errors.Wrap(err, "find transaction")
	}
	return tx, nil
}

func (o *pgOps) Transition(id string, status models.TransactionStatus) error {
	if status != models.StatusConfirmed && status != models.StatusRejected {
		return errs.Newf(errs.InvalidTransition, "cannot transition to %q", status)
	}
	// Conditional write: only a pending transaction moves, exactly once.
	res, err := o.q.Exec(`UPDATE transactions SET status = $2 WHERE id = $1 AND status = 'pending'`, id, status)
	if err != nil {
		return errors.Wrap(err, "transition transaction")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "transition transaction")
	}
	if affected == 0 {
		if _, err := o.FindByID(id); err != nil {
			return err
		}
		return errs.Newf(errs.InvalidTransition, "transaction %s is not pending", id)
	}
	return nil
}

func (r *LedgerPostgres) CreateAccount(acc models.Account) (models.Account, error) {
	if acc.ID == "" {
		acc.ID = uuid.New().String()
	}
	if acc.Role == "" {
		acc.Role = models.RoleUser
	}
	acc.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO accounts (id, name, email, role, bitcoin_address, total_investment, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.Exec(query, acc.ID, acc.Name, acc.Email, acc.Role, acc.BitcoinAddress, acc.TotalInvestment, acc.CreatedAt)
	if err != nil {
		return models.Account{}, errors.Wrap(err, "create account")
	}
	return acc, nil
}

const accountColumns = `id, name, email, role, bitcoin_address, total_investment, created_at`

func (r *LedgerPostgres) GetAccount(id string) (models.Account, error) {
	var acc models.Account
	if err := r.db.Get(&acc, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return models.Account{}, errs.Newf(errs.NotFound, "account %s not found", id)
		}
		return models.Account{}, errors.Wrap(err, "get account")
	}
	return acc, nil
}

func (r *LedgerPostgres) ListAccounts() ([]models.Account, error) {
	var accs []models.Account
	if err := r.db.Select(&accs, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}
	return accs, nil
}

func (r *LedgerPostgres) ListByAccount(accountID string, kind models.TransactionKind, limit int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1`
	args := []interface{}{accountID}
	if kind != "" {
		query += ` AND kind = $2`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}
	var txs []models.Transaction
	if err := r.db.Select(&txs, query, args...); err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	return txs, nil
}

func (r *LedgerPostgres) ListPendingByKind(kind models.TransactionKind) ([]models.Transaction, error) {
	var txs []models.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE status = 'pending' AND kind = $1 ORDER BY created_at DESC`
	if err := r.db.Select(&txs, query, kind); err != nil {
		return nil, errors.Wrap(err, "list pending transactions")
	}
	return txs, nil
}
