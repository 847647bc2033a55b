package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/errs"
	"crypto_invest_back/pkg/events"
	"crypto_invest_back/pkg/repository"
)

type WithdrawalService struct {
	ledger    repository.Ledger
	notifier  Notifier
	publisher *events.Publisher
}

func NewWithdrawalService(ledger repository.Ledger, notifier Notifier, publisher *events.Publisher) *WithdrawalService {
	return &WithdrawalService{
		ledger:    ledger,
		notifier:  notifier,
		publisher: publisher,
	}
}

// Request debits the account immediately and records a pending withdrawal in
// one atomic unit. The optimistic debit reserves the funds at request time,
// so two concurrent requests against the same balance cannot both succeed.
// On InsufficientFunds nothing is recorded and nothing moves.
func (s *WithdrawalService) Request(ctx context.Context, accountID string, currency models.Currency, amount decimal.Decimal, destination string) (models.Transaction, error) {
	if _, err := models.ParseCurrency(string(currency)); err != nil {
		return models.Transaction{}, err
	}
	if !amount.IsPositive() {
		return models.Transaction{}, errs.New(errs.Validation, "withdrawal amount must be positive")
	}
	if destination == "" {
		return models.Transaction{}, errs.New(errs.Validation, "destination address is required")
	}

	var recorded models.Transaction
	err := s.ledger.Atomic(ctx, accountID, func(ops repository.LedgerOps) error {
		if err := ops.Debit(accountID, currency, amount); err != nil {
			return err
		}
		var err error
		recorded, err = ops.Record(models.Transaction{
			AccountID:   accountID,
			Kind:        models.KindWithdrawal,
			Amount:      amount,
			Currency:    currency,
			Destination: destination,
		})
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": recorded.ID,
		"account_id":     accountID,
		"currency":       currency,
	}).Info("withdrawal requested, funds reserved")

	if s.notifier != nil {
		s.notifier.Notify(accountID, string(models.KindWithdrawal), string(models.StatusPending), amount, string(currency), "withdrawal requested, funds reserved")
	}
	publishTransaction(ctx, s.publisher, recorded)
	return recorded, nil
}
