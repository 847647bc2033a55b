package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/repository"
	"crypto_invest_back/pkg/utils"
)

// GrowthService runs the scheduled daily pass: it accrues growth on each
// account's total investment and records a confirmed growth transaction for
// the audit trail, then mails reminders for deposits stuck in pending.
type GrowthService struct {
	ledger      repository.Ledger
	mailer      *utils.Mailer
	dailyRate   decimal.Decimal
	interval    time.Duration
	reminderAge time.Duration
}

func NewGrowthService(ledger repository.Ledger, mailer *utils.Mailer, cfg Config) *GrowthService {
	interval := cfg.GrowthInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	reminderAge := cfg.ReminderAge
	if reminderAge <= 0 {
		reminderAge = 24 * time.Hour
	}
	return &GrowthService{
		ledger:      ledger,
		mailer:      mailer,
		dailyRate:   cfg.GrowthDailyRate,
		interval:    interval,
		reminderAge: reminderAge,
	}
}

// Start launches the background loop. It stops when ctx is cancelled.
func (s *GrowthService) Start(ctx context.Context) {
	go func() {
		logrus.Infof("growth job started, interval %s", s.interval)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logrus.Info("growth job stopped")
				return
			case <-ticker.C:
				if err := s.RunOnce(ctx); err != nil {
					logrus.WithError(err).Error("growth pass failed")
				}
			}
		}
	}()
}

// RunOnce performs a single growth pass. Each account is its own atomic
// unit; a failure on one account does not block the others.
func (s *GrowthService) RunOnce(ctx context.Context) error {
	accounts, err := s.ledger.ListAccounts()
	if err != nil {
		return err
	}

	for _, acc := range accounts {
		if !acc.TotalInvestment.IsPositive() || !s.dailyRate.IsPositive() {
			continue
		}
		growth := acc.TotalInvestment.Mul(s.dailyRate)
		accID := acc.ID
		err := s.ledger.Atomic(ctx, accID, func(ops repository.LedgerOps) error {
			if err := ops.AddInvestmentTotal(accID, growth); err != nil {
				return err
			}
			_, err := ops.Record(models.Transaction{
				AccountID: accID,
				Kind:      models.KindGrowth,
				Amount:    growth,
				Currency:  models.USD,
				Status:    models.StatusConfirmed,
			})
			return err
		})
		if err != nil {
			logrus.WithError(err).WithField("account_id", accID).Error("growth not applied")
			continue
		}
		logrus.WithFields(logrus.Fields{
			"account_id": accID,
			"growth":     growth.String(),
		}).Info("daily growth applied")
	}

	s.sendPendingReminders()
	return nil
}

func (s *GrowthService) sendPendingReminders() {
	if s.mailer == nil {
		return
	}
	pending, err := s.ledger.ListPendingByKind(models.KindInvestment)
	if err != nil {
		logrus.WithError(err).Error("pending deposits not listed for reminders")
		return
	}
	cutoff := time.Now().Add(-s.reminderAge)
	for _, tx := range pending {
		if tx.CreatedAt.After(cutoff) {
			continue
		}
		acc, err := s.ledger.GetAccount(tx.AccountID)
		if err != nil {
			logrus.WithError(err).WithField("account_id", tx.AccountID).Warn("reminder skipped")
			continue
		}
		s.mailer.SendPendingInvestmentReminder(acc.Email, acc.Name, tx.Amount.String(), string(tx.Currency))
	}
}
