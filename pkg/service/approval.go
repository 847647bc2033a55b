package service

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/errs"
	"crypto_invest_back/pkg/events"
	"crypto_invest_back/pkg/repository"
)

// ApprovalService is the transaction state machine: it is the only place
// where a status transition and its balance effect are coupled, and the two
// always commit in one atomic unit.
type ApprovalService struct {
	ledger    repository.Ledger
	notifier  Notifier
	publisher *events.Publisher
}

func NewApprovalService(ledger repository.Ledger, notifier Notifier, publisher *events.Publisher) *ApprovalService {
	return &ApprovalService{
		ledger:    ledger,
		notifier:  notifier,
		publisher: publisher,
	}
}

// ApproveInvestment credits the account and confirms the transaction
// together. A concurrent second approval loses the status race inside the
// atomic unit and fails with InvalidTransition; the credit happens at most
// once.
func (s *ApprovalService) ApproveInvestment(ctx context.Context, transactionID string) (models.Transaction, error) {
	tx, err := s.loadKind(transactionID, models.KindInvestment)
	if err != nil {
		return models.Transaction{}, err
	}

	err = s.ledger.Atomic(ctx, tx.AccountID, func(ops repository.LedgerOps) error {
		current, err := ops.FindByID(transactionID)
		if err != nil {
			return err
		}
		if err := ops.Transition(transactionID, models.StatusConfirmed); err != nil {
			return err
		}
		return ops.Credit(current.AccountID, current.Currency, current.Amount)
	})
	if err != nil {
		return models.Transaction{}, err
	}

	tx.Status = models.StatusConfirmed
	s.afterTransition(ctx, tx, "deposit confirmed, balance credited")
	return tx, nil
}

// RejectInvestment is a pure status transition; nothing was ever credited.
// Rejecting an already-terminal transaction fails with InvalidTransition
// rather than being a silent no-op.
func (s *ApprovalService) RejectInvestment(ctx context.Context, transactionID string) (models.Transaction, error) {
	tx, err := s.loadKind(transactionID, models.KindInvestment)
	if err != nil {
		return models.Transaction{}, err
	}

	err = s.ledger.Atomic(ctx, tx.AccountID, func(ops repository.LedgerOps) error {
		return ops.Transition(transactionID, models.StatusRejected)
	})
	if err != nil {
		return models.Transaction{}, err
	}

	tx.Status = models.StatusRejected
	s.afterTransition(ctx, tx, "deposit rejected")
	return tx, nil
}

// ConfirmWithdrawal marks a paid-out withdrawal confirmed. Funds were already
// debited at request time, so there is no balance effect.
func (s *ApprovalService) ConfirmWithdrawal(ctx context.Context, transactionID string) (models.Transaction, error) {
	tx, err := s.loadKind(transactionID, models.KindWithdrawal)
	if err != nil {
		return models.Transaction{}, err
	}

	err = s.ledger.Atomic(ctx, tx.AccountID, func(ops repository.LedgerOps) error {
		return ops.Transition(transactionID, models.StatusConfirmed)
	})
	if err != nil {
		return models.Transaction{}, err
	}

	tx.Status = models.StatusConfirmed
	s.afterTransition(ctx, tx, "withdrawal paid out")
	return tx, nil
}

// RejectWithdrawal re-credits the reserved amount in the same atomic unit as
// the rejection, so the user never loses funds to a rejected payout.
func (s *ApprovalService) RejectWithdrawal(ctx context.Context, transactionID string) (models.Transaction, error) {
	tx, err := s.loadKind(transactionID, models.KindWithdrawal)
	if err != nil {
		return models.Transaction{}, err
	}

	err = s.ledger.Atomic(ctx, tx.AccountID, func(ops repository.LedgerOps) error {
		current, err := ops.FindByID(transactionID)
		if err != nil {
			return err
		}
		if err := ops.Transition(transactionID, models.StatusRejected); err != nil {
			return err
		}
		return ops.Credit(current.AccountID, current.Currency, current.Amount)
	})
	if err != nil {
		return models.Transaction{}, err
	}

	tx.Status = models.StatusRejected
	s.afterTransition(ctx, tx, "withdrawal rejected, funds returned")
	return tx, nil
}

// AdjustBalances is the administrative escape hatch: it applies the signed
// deltas and records an already-confirmed adjustment transaction in one
// atomic unit. Deltas that would push a balance negative clamp at zero; the
// recorded transaction keeps the deltas as requested.
func (s *ApprovalService) AdjustBalances(ctx context.Context, accountID string, deltas models.DeltaMap, adminID string) (models.Balances, models.Transaction, error) {
	if len(deltas) == 0 {
		return nil, models.Transaction{}, errs.New(errs.Validation, "at least one adjustment delta is required")
	}
	currencies := make([]models.Currency, 0, len(deltas))
	for currency := range deltas {
		if _, err := models.ParseCurrency(string(currency)); err != nil {
			return nil, models.Transaction{}, err
		}
		currencies = append(currencies, currency)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	var (
		recorded models.Transaction
		result   models.Balances
	)
	err := s.ledger.Atomic(ctx, accountID, func(ops repository.LedgerOps) error {
		for _, currency := range currencies {
			if _, err := ops.ApplyDelta(accountID, currency, deltas[currency]); err != nil {
				return err
			}
		}
		var err error
		recorded, err = ops.Record(models.Transaction{
			AccountID:   accountID,
			Kind:        models.KindAdjustment,
			Deltas:      deltas,
			PerformedBy: adminID,
			Status:      models.StatusConfirmed,
		})
		if err != nil {
			return err
		}
		result, err = ops.Snapshot(accountID)
		return err
	})
	if err != nil {
		return nil, models.Transaction{}, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id":   accountID,
		"performed_by": adminID,
	}).Info("balances adjusted")
	return result, recorded, nil
}

func (s *ApprovalService) loadKind(transactionID string, kind models.TransactionKind) (models.Transaction, error) {
	tx, err := s.ledger.FindByID(transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	if tx.Kind != kind {
		return models.Transaction{}, errs.Newf(errs.WrongKind, "transaction %s is a %s, not a %s", transactionID, tx.Kind, kind)
	}
	return tx, nil
}

func (s *ApprovalService) afterTransition(ctx context.Context, tx models.Transaction, message string) {
	logrus.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"account_id":     tx.AccountID,
		"kind":           tx.Kind,
		"status":         tx.Status,
	}).Info(message)

	if s.notifier != nil {
		s.notifier.Notify(tx.AccountID, string(tx.Kind), string(tx.Status), tx.Amount, string(tx.Currency), message)
	}
	publishTransaction(ctx, s.publisher, tx)
}

func publishTransaction(ctx context.Context, publisher *events.Publisher, tx models.Transaction) {
	if publisher == nil {
		return
	}
	event := events.TransactionEvent{
		TransactionID: tx.ID,
		AccountID:     tx.AccountID,
		Kind:          string(tx.Kind),
		Status:        string(tx.Status),
		Amount:        tx.Amount.String(),
		Currency:      string(tx.Currency),
		OccurredAt:    time.Now().UTC(),
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).Warn("transaction event not published")
	}
}
