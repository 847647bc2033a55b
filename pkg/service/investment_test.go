package service

import (
	"context"
	"testing"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/errs"
	"crypto_invest_back/pkg/repository"
)

func TestSubmitInvestment(t *testing.T) {
	ledger := repository.NewLedgerMemory()
	acc, err := ledger.CreateAccount(models.Account{Name: "frank", Email: "frank@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	svc := NewInvestmentService(ledger, nil)

	tx, err := svc.Submit(context.Background(), acc.ID, models.BTC, dec(t, "0.5"), "/uploads/r1.png")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if tx.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", tx.Status)
	}

	// A submitted deposit never moves the balance on its own.
	snapshot, _ := ledger.Snapshot(acc.ID)
	if !snapshot[models.BTC].IsZero() {
		t.Errorf("submit credited the balance: %s", snapshot[models.BTC])
	}

	pending, err := svc.ListPending(models.KindInvestment)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != tx.ID {
		t.Errorf("pending list has %d entries", len(pending))
	}
}

func TestSubmitInvestmentValidation(t *testing.T) {
	ledger := repository.NewLedgerMemory()
	acc, err := ledger.CreateAccount(models.Account{Name: "frank", Email: "frank@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	svc := NewInvestmentService(ledger, nil)

	cases := []struct {
		name     string
		account  string
		currency models.Currency
		amount   string
		receipt  string
		wantKind errs.Kind
	}{
		{name: "unknown currency", account: acc.ID, currency: "SHIB", amount: "1", receipt: "r", wantKind: errs.Validation},
		{name: "fiat currency", account: acc.ID, currency: models.USD, amount: "1", receipt: "r", wantKind: errs.Validation},
		{name: "zero amount", account: acc.ID, currency: models.BTC, amount: "0", receipt: "r", wantKind: errs.Validation},
		{name: "missing receipt", account: acc.ID, currency: models.BTC, amount: "1", receipt: "", wantKind: errs.Validation},
		{name: "unknown account", account: "nope", currency: models.BTC, amount: "1", receipt: "r", wantKind: errs.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.account, tc.currency, dec(t, tc.amount), tc.receipt)
			if !errs.IsKind(err, tc.wantKind) {
				t.Fatalf("expected %s, got %v", tc.wantKind, err)
			}
		})
	}
}
