package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"crypto_invest_back/models"
)

type NotificationsPostgres struct {
	db *sqlx.DB
}

func NewNotificationsPostgres(db *sqlx.DB) *NotificationsPostgres {
	return &NotificationsPostgres{db: db}
}

func (r *NotificationsPostgres) CreateNotification(n models.Notification) error {
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO notifications (id, account_id, kind, status, amount, currency, message, read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8)
    `
	_, err := r.db.Exec(query, n.ID, n.AccountID, n.Kind, n.Status, n.Amount, n.Currency, n.Message, n.CreatedAt)
	return errors.Wrap(err, "create notification")
}

func (r *NotificationsPostgres) ListUnread(accountID string, f models.NotificationFilter) ([]models.Notification, int, error) {
	where := `WHERE account_id = $1 AND read = false`
	args := []interface{}{accountID}
	if f.Status != "" && f.Status != "all" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.Kind != "" && f.Kind != "all" {
		args = append(args, f.Kind)
		where += fmt.Sprintf(` AND kind = $%d`, len(args))
	}

	var total int
	if err := r.db.Get(&total, `SELECT count(*) FROM notifications `+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "count notifications")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`
        SELECT id, account_id, kind, status, amount, currency, message, read, created_at
        FROM notifications %s
        ORDER BY created_at DESC
        LIMIT $%d OFFSET $%d
    `, where, len(args)-1, len(args))

	var notifications []models.Notification
	if err := r.db.Select(&notifications, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "list notifications")
	}
	return notifications, total, nil
}

func (r *NotificationsPostgres) MarkRead(accountID string, ids []string) (int64, error) {
	var (
		res   interface{ RowsAffected() (int64, error) }
		err   error
		query string
	)
	if len(ids) > 0 {
		query = `UPDATE notifications SET read = true WHERE account_id = $1 AND read = false AND id = ANY($2)`
		res, err = r.db.Exec(query, accountID, pq.Array(ids))
	} else {
		query = `UPDATE notifications SET read = true WHERE account_id = $1 AND read = false`
		res, err = r.db.Exec(query, accountID)
	}
	if err != nil {
		return 0, errors.Wrap(err, "mark notifications read")
	}
	affected, err := res.RowsAffected()
	return affected, errors.Wrap(err, "mark notifications read")
}

func (r *NotificationsPostgres) UnreadCount(accountID string) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT count(*) FROM notifications WHERE account_id = $1 AND read = false`, accountID)
	return count, errors.Wrap(err, "unread count")
}
