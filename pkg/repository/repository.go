package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"crypto_invest_back/models"
)

// LedgerOps are the balance-store and transaction-ledger primitives. Inside
// Atomic they run against the same unit of work; a failure anywhere aborts the
// whole unit.
type LedgerOps interface {
	// Balance store. Credit and Debit demand a positive amount; Debit checks
	// sufficiency against the committed value, never leaving a negative
	// balance. ApplyDelta accepts signed deltas and clamps the result at zero.
	Credit(accountID string, currency models.Currency, amount decimal.Decimal) error
	Debit(accountID string, currency models.Currency, amount decimal.Decimal) error
	ApplyDelta(accountID string, currency models.Currency, delta decimal.Decimal) (decimal.Decimal, error)
	Snapshot(accountID string) (models.Balances, error)
	AddInvestmentTotal(accountID string, usd decimal.Decimal) error

	// Transaction ledger. Transition is the only status mutator and it never
	// touches balances; the coupling lives in the service layer.
	Record(tx models.Transaction) (models.Transaction, error)
	FindByID(id string) (models.Transaction, error)
	Transition(id string, status models.TransactionStatus) error
}

// Ledger is the persistent store behind the approval state machine. Atomic
// executes fn as one unit of work serialized against all other compound
// operations on the same account.
type Ledger interface {
	LedgerOps

	Atomic(ctx context.Context, accountID string, fn func(ops LedgerOps) error) error

	CreateAccount(acc models.Account) (models.Account, error)
	GetAccount(id string) (models.Account, error)
	ListAccounts() ([]models.Account, error)

	ListByAccount(accountID string, kind models.TransactionKind, limit int) ([]models.Transaction, error)
	ListPendingByKind(kind models.TransactionKind) ([]models.Transaction, error)
}

type Rates interface {
	UpsertRate(symbol models.Currency, usdRate float64) (models.CryptoRate, error)
	GetRate(symbol models.Currency) (models.CryptoRate, error)
	ListRates() ([]models.CryptoRate, error)
}

type Notifications interface {
	CreateNotification(n models.Notification) error
	ListUnread(accountID string, f models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(accountID string, ids []string) (int64, error)
	UnreadCount(accountID string) (int, error)
}

type DepositWallets interface {
	InsertWallet(w models.DepositWallet) error
	ListWallets() ([]models.DepositWallet, error)
	CountWallets() (int, error)
}

type Repository struct {
	Ledger
	Rates
	Notifications
	DepositWallets
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Ledger:         NewLedgerPostgres(db),
		Rates:          NewRatesPostgres(db),
		Notifications:  NewNotificationsPostgres(db),
		DepositWallets: NewDepositWalletsPostgres(db),
	}
}
