package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"crypto_invest_back/pkg/errs"
)

type TransactionKind string

const (
	KindInvestment TransactionKind = "investment"
	KindWithdrawal TransactionKind = "withdrawal"
	KindAdjustment TransactionKind = "adjustment"
	KindGrowth     TransactionKind = "growth"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusRejected  TransactionStatus = "rejected"
)

// DeltaMap carries the signed per-currency deltas of an adjustment. Stored as
// jsonb; the values are the deltas as requested, the balance rows hold the
// clamped result.
type DeltaMap map[Currency]decimal.Decimal

func (d DeltaMap) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *DeltaMap) Scan(src interface{}) error {
	if src == nil {
		*d = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errs.Newf(errs.Validation, "cannot scan %T into DeltaMap", src)
	}
	return json.Unmarshal(b, d)
}

// Transaction is one ledger event. Amount, currency and kind are immutable
// after creation; only status moves, once, pending -> confirmed|rejected.
type Transaction struct {
	ID          string            `db:"id" json:"id"`
	AccountID   string            `db:"account_id" json:"account_id"`
	Kind        TransactionKind   `db:"kind" json:"kind"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"`
	Currency    Currency          `db:"currency" json:"currency,omitempty"`
	Status      TransactionStatus `db:"status" json:"status"`
	ReceiptRef  string            `db:"receipt_ref" json:"receipt_ref,omitempty"`
	Destination string            `db:"destination" json:"destination,omitempty"`
	Deltas      DeltaMap          `db:"deltas" json:"deltas,omitempty"`
	PerformedBy string            `db:"performed_by" json:"performed_by,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// ValidateForRecord checks the per-kind required fields before a transaction
// enters the ledger.
func (t *Transaction) ValidateForRecord() error {
	if t.AccountID == "" {
		return errs.New(errs.Validation, "account id is required")
	}
	switch t.Kind {
	case KindInvestment:
		if t.ReceiptRef == "" {
			return errs.New(errs.Validation, "receipt is required for investment")
		}
		if t.Currency == "" {
			return errs.New(errs.Validation, "currency is required for investment")
		}
		if !t.Amount.IsPositive() {
			return errs.New(errs.Validation, "investment amount must be positive")
		}
	case KindWithdrawal:
		if t.Currency == "" {
			return errs.New(errs.Validation, "currency is required for withdrawal")
		}
		if t.Destination == "" {
			return errs.New(errs.Validation, "destination address is required for withdrawal")
		}
		if !t.Amount.IsPositive() {
			return errs.New(errs.Validation, "withdrawal amount must be positive")
		}
	case KindAdjustment:
		if len(t.Deltas) == 0 {
			return errs.New(errs.Validation, "adjustment requires at least one delta")
		}
	case KindGrowth:
		if !t.Amount.IsPositive() {
			return errs.New(errs.Validation, "growth amount must be positive")
		}
		if t.Currency != "" && t.Currency != USD {
			return errs.New(errs.Validation, "growth is recorded in USD")
		}
	default:
		return errs.Newf(errs.Validation, "unknown transaction kind %q", t.Kind)
	}
	if t.Status != "" && t.Status != StatusPending && t.Status != StatusConfirmed {
		return errs.Newf(errs.Validation, "transaction cannot be recorded as %q", t.Status)
	}
	return nil
}
