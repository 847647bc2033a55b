package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/errs"
	"crypto_invest_back/pkg/repository"
)

func newApprovalFixture(t *testing.T) (*repository.LedgerMemory, models.Account, *ApprovalService) {
	t.Helper()
	ledger := repository.NewLedgerMemory()
	acc, err := ledger.CreateAccount(models.Account{Name: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return ledger, acc, NewApprovalService(ledger, nil, nil)
}

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", v, err)
	}
	return d
}

func recordInvestment(t *testing.T, ledger *repository.LedgerMemory, accountID, amount string) models.Transaction {
	t.Helper()
	tx, err := ledger.Record(models.Transaction{
		AccountID:  accountID,
		Kind:       models.KindInvestment,
		Amount:     dec(t, amount),
		Currency:   models.BTC,
		ReceiptRef: "/uploads/r1",
	})
	if err != nil {
		t.Fatalf("record investment: %v", err)
	}
	return tx
}

func TestApproveInvestmentCreditsOnce(t *testing.T) {
	ledger, acc, svc := newApprovalFixture(t)
	tx := recordInvestment(t, ledger, acc.ID, "2.5")

	approved, err := svc.ApproveInvestment(context.Background(), tx.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", approved.Status)
	}

	snapshot, _ := ledger.Snapshot(acc.ID)
	if got := snapshot[models.BTC]; !got.Equal(dec(t, "2.5")) {
		t.Errorf("BTC balance = %s, want 2.5", got)
	}

	_, err = svc.ApproveInvestment(context.Background(), tx.ID)
	if !errs.IsKind(err, errs.InvalidTransition) {
		t.Fatalf("second approve: expected InvalidTransition, got %v", err)
	}
	snapshot, _ = ledger.Snapshot(acc.ID)
	if got := snapshot[models.BTC]; !got.Equal(dec(t, "2.5")) {
		t.Errorf("second approve changed the balance: %s", got)
	}
}

func TestApproveInvestmentConcurrent(t *testing.T) {
	ledger, acc, svc := newApprovalFixture(t)
	tx := recordInvestment(t, ledger, acc.ID, "2.5")

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApproveInvestment(context.Background(), tx.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errs.IsKind(err, errs.InvalidTransition):
			conflicted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d approvals succeeded, want exactly 1", succeeded)
	}
	if conflicted != workers-1 {
		t.Errorf("%d approvals conflicted, want %d", conflicted, workers-1)
	}

	snapshot, _ := ledger.Snapshot(acc.ID)
	if got := snapshot[models.BTC]; !got.Equal(dec(t, "2.5")) {
		t.Errorf("BTC balance = %s, want 2.5 (credited exactly once)", got)
	}
}

func TestRejectInvestmentLeavesBalance(t *testing.T) {
	ledger, acc, svc := newApprovalFixture(t)
	tx := recordInvestment(t, ledger, acc.ID, "2.5")

	rejected, err := svc.RejectInvestment(context.Background(), tx.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}

	snapshot, _ := ledger.Snapshot(acc.ID)
	if !snapshot[models.BTC].IsZero() {
		t.Errorf("reject credited the balance: %s", snapshot[models.BTC])
	}

	_, err = svc.RejectInvestment(context.Background(), tx.ID)
	if !errs.IsKind(err, errs.InvalidTransition) {
		t.Fatalf("second reject: expected InvalidTransition, got %v", err)
	}
}

func TestApproveWrongKind(t *testing.T) {
	ledger, acc, svc := newApprovalFixture(t)

	if err := ledger.Credit(acc.ID, models.ETH, dec(t, "5")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	withdrawals := NewWithdrawalService(ledger, nil, nil)
	wd, err := withdrawals.Request(context.Background(), acc.ID, models.ETH, dec(t, "2"), "addr")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	_, err = svc.ApproveInvestment(context.Background(), wd.ID)
	if !errs.IsKind(err, errs.WrongKind) {
		t.Fatalf("expected WrongKind, got %v", err)
	}
}

func TestApproveMissingTransaction(t *testing.T) {
	_, _, svc := newApprovalFixture(t)

	_, err := svc.ApproveInvestment(context.Background(), "nope")
	if !errs.IsKind(err, errs.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestConfirmWithdrawalKeepsBalance(t *testing.T) {
	ledger, acc, svc := newApprovalFixture(t)

	if err := ledger.Credit(acc.ID, models.ETH, dec(t, "3")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	withdrawals := NewWithdrawalService(ledger, nil, nil)
	wd, err := withdrawals.Request(context.Background(), acc.ID, models.ETH, dec(t, "2"), "addr")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	confirmed, err := svc.ConfirmWithdrawal(context.Background(), wd.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}

	snapshot, _ := ledger.Snapshot(acc.ID)
	if got := snapshot[models.ETH]; !got.Equal(dec(t, "1")) {
		t.Errorf("ETH balance = %s, want 1 (no double debit)", got)
	}
}

func TestRejectWithdrawalReturnsFunds(t *testing.T) {
	ledger, acc, svc := newApprovalFixture(t)

	if err := ledger.Credit(acc.ID, models.ETH, dec(t, "3")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	withdrawals := NewWithdrawalService(ledger, nil, nil)
	wd, err := withdrawals.Request(context.Background(), acc.ID, models.ETH, dec(t, "2"), "addr")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	rejected, err := svc.RejectWithdrawal(context.Background(), wd.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}

	snapshot, _ := ledger.Snapshot(acc.ID)
	if got := snapshot[models.ETH]; !got.Equal(dec(t, "3")) {
		t.Errorf("ETH balance = %s, want 3 (funds returned)", got)
	}

	_, err = svc.RejectWithdrawal(context.Background(), wd.ID)
	if !errs.IsKind(err, errs.InvalidTransition) {
		t.Fatalf("second reject: expected InvalidTransition, got %v", err)
	}
	snapshot, _ = ledger.Snapshot(acc.ID)
	if got := snapshot[models.ETH]; !got.Equal(dec(t, "3")) {
		t.Errorf("second reject re-credited: %s", got)
	}
}

func TestAdjustBalancesClampsAtZero(t *testing.T) {
	ledger, acc, svc := newApprovalFixture(t)

	if err := ledger.Credit(acc.ID, models.USDT, dec(t, "30")); err != nil {
		t.Fatalf("credit: %v", err)
	}

	deltas := models.DeltaMap{
		models.USDT: dec(t, "-50"),
		models.BTC:  dec(t, "1"),
	}
	balances, tx, err := svc.AdjustBalances(context.Background(), acc.ID, deltas, "admin-1")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}

	if !balances[models.USDT].IsZero() {
		t.Errorf("USDT = %s, want 0 (clamped)", balances[models.USDT])
	}
	if !balances[models.BTC].Equal(dec(t, "1")) {
		t.Errorf("BTC = %s, want 1", balances[models.BTC])
	}

	if tx.Kind != models.KindAdjustment || tx.Status != models.StatusConfirmed {
		t.Errorf("adjustment recorded as %s/%s", tx.Kind, tx.Status)
	}
	if tx.PerformedBy != "admin-1" {
		t.Errorf("performed_by = %q", tx.PerformedBy)
	}
	// The recorded deltas stay as requested, not as clamped.
	if !tx.Deltas[models.USDT].Equal(dec(t, "-50")) {
		t.Errorf("recorded USDT delta = %s, want -50", tx.Deltas[models.USDT])
	}
}

func TestAdjustBalancesUnknownCurrency(t *testing.T) {
	ledger, acc, svc := newApprovalFixture(t)

	_, _, err := svc.AdjustBalances(context.Background(), acc.ID, models.DeltaMap{"SHIB": dec(t, "1")}, "admin-1")
	if !errs.IsKind(err, errs.Validation) {
		t.Fatalf("expected Validation, got %v", err)
	}

	txs, _ := ledger.ListByAccount(acc.ID, "", 0)
	if len(txs) != 0 {
		t.Errorf("failed adjustment recorded %d transactions", len(txs))
	}
}

func TestAdjustBalancesEmptyDeltas(t *testing.T) {
	_, acc, svc := newApprovalFixture(t)

	_, _, err := svc.AdjustBalances(context.Background(), acc.ID, nil, "admin-1")
	if !errs.IsKind(err, errs.Validation) {
		t.Fatalf("expected Validation, got %v", err)
	}
}
