package service

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/repository"
)

type NotificationService struct {
	repos repository.Notifications
}

func NewNotificationService(repos repository.Notifications) *NotificationService {
	return &NotificationService{repos: repos}
}

// Notify records a fact for later display. Errors are logged and dropped;
// the ledger mutation this notification describes has already committed.
func (s *NotificationService) Notify(accountID, kind, status string, amount decimal.Decimal, currency, message string) {
	err := s.repos.CreateNotification(models.Notification{
		AccountID: accountID,
		Kind:      kind,
		Status:    status,
		Amount:    amount,
		Currency:  currency,
		Message:   message,
	})
	if err != nil {
		logrus.WithError(err).WithField("account_id", accountID).Warn("notification not recorded")
	}
}

func (s *NotificationService) List(accountID string, f models.NotificationFilter) ([]models.Notification, int, error) {
	return s.repos.ListUnread(accountID, f)
}

func (s *NotificationService) MarkRead(accountID string, ids []string) (int64, error) {
	return s.repos.MarkRead(accountID, ids)
}

func (s *NotificationService) UnreadCount(accountID string) (int, error) {
	return s.repos.UnreadCount(accountID)
}
