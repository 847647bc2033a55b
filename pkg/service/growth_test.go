package service

import (
	"context"
	"testing"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/repository"
)

func TestGrowthRunOnce(t *testing.T) {
	ledger := repository.NewLedgerMemory()
	acc, err := ledger.CreateAccount(models.Account{
		Name:            "dave",
		Email:           "dave@example.com",
		TotalInvestment: dec(t, "1000"),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	svc := NewGrowthService(ledger, nil, Config{GrowthDailyRate: dec(t, "0.001")})
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	got, err := ledger.GetAccount(acc.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !got.TotalInvestment.Equal(dec(t, "1001")) {
		t.Errorf("total investment = %s, want 1001", got.TotalInvestment)
	}

	txs, _ := ledger.ListByAccount(acc.ID, models.KindGrowth, 0)
	if len(txs) != 1 {
		t.Fatalf("%d growth transactions, want 1", len(txs))
	}
	tx := txs[0]
	if tx.Status != models.StatusConfirmed {
		t.Errorf("growth status = %s, want confirmed", tx.Status)
	}
	if tx.Currency != models.USD {
		t.Errorf("growth currency = %s, want USD", tx.Currency)
	}
	if !tx.Amount.Equal(dec(t, "1")) {
		t.Errorf("growth amount = %s, want 1", tx.Amount)
	}
}

func TestGrowthSkipsZeroTotal(t *testing.T) {
	ledger := repository.NewLedgerMemory()
	acc, err := ledger.CreateAccount(models.Account{Name: "erin", Email: "erin@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	svc := NewGrowthService(ledger, nil, Config{GrowthDailyRate: dec(t, "0.001")})
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	txs, _ := ledger.ListByAccount(acc.ID, "", 0)
	if len(txs) != 0 {
		t.Errorf("%d transactions recorded for an empty account", len(txs))
	}
}
