package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/cache"
	"crypto_invest_back/pkg/events"
	"crypto_invest_back/pkg/repository"
	"crypto_invest_back/pkg/utils"
)

type Investments interface {
	Submit(ctx context.Context, accountID string, currency models.Currency, amount decimal.Decimal, receiptRef string) (models.Transaction, error)
	ListByAccount(accountID string, kind models.TransactionKind, limit int) ([]models.Transaction, error)
	ListPending(kind models.TransactionKind) ([]models.Transaction, error)
}

type Withdrawals interface {
	Request(ctx context.Context, accountID string, currency models.Currency, amount decimal.Decimal, destination string) (models.Transaction, error)
}

type Approval interface {
	ApproveInvestment(ctx context.Context, transactionID string) (models.Transaction, error)
	RejectInvestment(ctx context.Context, transactionID string) (models.Transaction, error)
	ConfirmWithdrawal(ctx context.Context, transactionID string) (models.Transaction, error)
	RejectWithdrawal(ctx context.Context, transactionID string) (models.Transaction, error)
	AdjustBalances(ctx context.Context, accountID string, deltas models.DeltaMap, adminID string) (models.Balances, models.Transaction, error)
}

type Portfolio interface {
	Value(ctx context.Context, accountID string) (models.Portfolio, error)
	Dashboard(ctx context.Context, accountID string) (models.Dashboard, error)
}

type Rates interface {
	RateSource
	SetRate(symbol models.Currency, usdRate float64) (models.CryptoRate, error)
	List() ([]models.CryptoRate, error)
}

// RateSource supplies the latest known USD rate, or false when unknown.
type RateSource interface {
	USDRate(ctx context.Context, symbol models.Currency) (float64, bool)
}

// Notifier records a fact for later display. Fire-and-forget: a notification
// failure never affects a ledger mutation.
type Notifier interface {
	Notify(accountID, kind, status string, amount decimal.Decimal, currency, message string)
}

type Notifications interface {
	Notifier
	List(accountID string, f models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(accountID string, ids []string) (int64, error)
	UnreadCount(accountID string) (int, error)
}

type Accounts interface {
	Create(acc models.Account) (models.Account, error)
	Get(id string) (models.Account, error)
	List() ([]models.Account, error)
}

type DepositWalletList interface {
	EnsureSeeded() error
	List() ([]models.DepositWallet, error)
}

type Config struct {
	CoinGeckoAPIKey string
	RateCacheTTL    time.Duration
	GrowthDailyRate decimal.Decimal
	GrowthInterval  time.Duration
	ReminderAge     time.Duration
}

type Service struct {
	Investments
	Withdrawals
	Approval
	Portfolio
	Rates
	Notifications
	Accounts
	DepositWallets DepositWalletList
	Growth         *GrowthService
}

func NewService(repos *repository.Repository, cfg Config, publisher *events.Publisher, mailer *utils.Mailer) *Service {
	notifications := NewNotificationService(repos.Notifications)
	rates := NewRatesService(repos.Rates, cache.NewRateCache(cfg.RateCacheTTL), cfg.CoinGeckoAPIKey)
	approval := NewApprovalService(repos.Ledger, notifications, publisher)

	return &Service{
		Investments:    NewInvestmentService(repos.Ledger, notifications),
		Withdrawals:    NewWithdrawalService(repos.Ledger, notifications, publisher),
		Approval:       approval,
		Portfolio:      NewPortfolioService(repos.Ledger, rates),
		Rates:          rates,
		Notifications:  notifications,
		Accounts:       NewAccountService(repos.Ledger),
		DepositWallets: NewDepositWalletService(repos.DepositWallets),
		Growth:         NewGrowthService(repos.Ledger, mailer, cfg),
	}
}
