package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/errs"
	"crypto_invest_back/pkg/repository"
)

type InvestmentService struct {
	ledger   repository.Ledger
	notifier Notifier
}

func NewInvestmentService(ledger repository.Ledger, notifier Notifier) *InvestmentService {
	return &InvestmentService{ledger: ledger, notifier: notifier}
}

// Submit records a pending investment. Balances move only when an admin
// approves it.
func (s *InvestmentService) Submit(ctx context.Context, accountID string, currency models.Currency, amount decimal.Decimal, receiptRef string) (models.Transaction, error) {
	if _, err := models.ParseCurrency(string(currency)); err != nil {
		return models.Transaction{}, err
	}
	if !amount.IsPositive() {
		return models.Transaction{}, errs.New(errs.Validation, "investment amount must be positive")
	}
	if receiptRef == "" {
		return models.Transaction{}, errs.New(errs.Validation, "receipt is required for investment")
	}
	if _, err := s.ledger.GetAccount(accountID); err != nil {
		return models.Transaction{}, err
	}

	tx, err := s.ledger.Record(models.Transaction{
		AccountID:  accountID,
		Kind:       models.KindInvestment,
		Amount:     amount,
		Currency:   currency,
		ReceiptRef: receiptRef,
	})
	if err != nil {
		return models.Transaction{}, err
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"account_id":     accountID,
		"currency":       currency,
	}).Info("investment submitted, pending approval")

	if s.notifier != nil {
		s.notifier.Notify(accountID, string(models.KindInvestment), string(models.StatusPending), amount, string(currency), "deposit submitted, pending approval")
	}
	return tx, nil
}

func (s *InvestmentService) ListByAccount(accountID string, kind models.TransactionKind, limit int) ([]models.Transaction, error) {
	return s.ledger.ListByAccount(accountID, kind, limit)
}

func (s *InvestmentService) ListPending(kind models.TransactionKind) ([]models.Transaction, error) {
	return s.ledger.ListPendingByKind(kind)
}
