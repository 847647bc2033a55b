package service

import (
	"context"
	"sync"
	"testing"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/errs"
	"crypto_invest_back/pkg/repository"
)

func newWithdrawalFixture(t *testing.T) (*repository.LedgerMemory, models.Account, *WithdrawalService) {
	t.Helper()
	ledger := repository.NewLedgerMemory()
	acc, err := ledger.CreateAccount(models.Account{Name: "bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return ledger, acc, NewWithdrawalService(ledger, nil, nil)
}

func TestRequestReservesFunds(t *testing.T) {
	ledger, acc, svc := newWithdrawalFixture(t)

	if err := ledger.Credit(acc.ID, models.ETH, dec(t, "3.0")); err != nil {
		t.Fatalf("credit: %v", err)
	}

	tx, err := svc.Request(context.Background(), acc.ID, models.ETH, dec(t, "2.0"), "0x41abc")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if tx.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", tx.Status)
	}
	if tx.Destination != "0x41abc" {
		t.Errorf("destination = %q", tx.Destination)
	}

	snapshot, _ := ledger.Snapshot(acc.ID)
	if got := snapshot[models.ETH]; !got.Equal(dec(t, "1.0")) {
		t.Errorf("ETH balance = %s, want 1.0 (reserved at request time)", got)
	}
}

func TestRequestInsufficientFunds(t *testing.T) {
	ledger, acc, svc := newWithdrawalFixture(t)

	if err := ledger.Credit(acc.ID, models.BTC, dec(t, "1.0")); err != nil {
		t.Fatalf("credit: %v", err)
	}

	_, err := svc.Request(context.Background(), acc.ID, models.BTC, dec(t, "1.5"), "addr")
	if !errs.IsKind(err, errs.InsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}

	snapshot, _ := ledger.Snapshot(acc.ID)
	if got := snapshot[models.BTC]; !got.Equal(dec(t, "1.0")) {
		t.Errorf("failed request changed the balance: %s", got)
	}
	txs, _ := ledger.ListByAccount(acc.ID, models.KindWithdrawal, 0)
	if len(txs) != 0 {
		t.Errorf("failed request recorded %d transactions", len(txs))
	}
}

func TestRequestValidation(t *testing.T) {
	ledger, acc, svc := newWithdrawalFixture(t)

	if err := ledger.Credit(acc.ID, models.ETH, dec(t, "3")); err != nil {
		t.Fatalf("credit: %v", err)
	}

	cases := []struct {
		name        string
		currency    models.Currency
		amount      string
		destination string
	}{
		{name: "unknown currency", currency: "SHIB", amount: "1", destination: "addr"},
		{name: "zero amount", currency: models.ETH, amount: "0", destination: "addr"},
		{name: "negative amount", currency: models.ETH, amount: "-1", destination: "addr"},
		{name: "empty destination", currency: models.ETH, amount: "1", destination: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Request(context.Background(), acc.ID, tc.currency, dec(t, tc.amount), tc.destination)
			if !errs.IsKind(err, errs.Validation) {
				t.Fatalf("expected Validation, got %v", err)
			}
		})
	}
}

func TestConcurrentRequestsReserveOnce(t *testing.T) {
	ledger, acc, svc := newWithdrawalFixture(t)

	if err := ledger.Credit(acc.ID, models.ETH, dec(t, "3.0")); err != nil {
		t.Fatalf("credit: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Request(context.Background(), acc.ID, models.ETH, dec(t, "2.0"), "addr")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errs.IsKind(err, errs.InsufficientFunds):
			insufficient++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || insufficient != 1 {
		t.Fatalf("succeeded=%d insufficient=%d, want exactly one of each", succeeded, insufficient)
	}

	snapshot, _ := ledger.Snapshot(acc.ID)
	if got := snapshot[models.ETH]; !got.Equal(dec(t, "1.0")) {
		t.Errorf("ETH balance = %s, want 1.0", got)
	}
	txs, _ := ledger.ListByAccount(acc.ID, models.KindWithdrawal, 0)
	if len(txs) != 1 {
		t.Errorf("%d withdrawals recorded, want 1", len(txs))
	}
}
