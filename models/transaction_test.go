package models

import (
	"testing"

	"github.com/shopspring/decimal"

	"crypto_invest_back/pkg/errs"
)

func TestValidateForRecord(t *testing.T) {
	amount := decimal.RequireFromString("2.5")

	cases := []struct {
		name    string
		tx      Transaction
		wantErr bool
	}{
		{
			name: "valid investment",
			tx:   Transaction{AccountID: "a1", Kind: KindInvestment, Amount: amount, Currency: BTC, ReceiptRef: "/uploads/r1"},
		},
		{
			name:    "investment without receipt",
			tx:      Transaction{AccountID: "a1", Kind: KindInvestment, Amount: amount, Currency: BTC},
			wantErr: true,
		},
		{
			name:    "investment with zero amount",
			tx:      Transaction{AccountID: "a1", Kind: KindInvestment, Amount: decimal.Zero, Currency: BTC, ReceiptRef: "r"},
			wantErr: true,
		},
		{
			name: "valid withdrawal",
			tx:   Transaction{AccountID: "a1", Kind: KindWithdrawal, Amount: amount, Currency: ETH, Destination: "addr"},
		},
		{
			name:    "withdrawal without currency",
			tx:      Transaction{AccountID: "a1", Kind: KindWithdrawal, Amount: amount, Destination: "addr"},
			wantErr: true,
		},
		{
			name:    "withdrawal without destination",
			tx:      Transaction{AccountID: "a1", Kind: KindWithdrawal, Amount: amount, Currency: ETH},
			wantErr: true,
		},
		{
			name: "valid adjustment",
			tx:   Transaction{AccountID: "a1", Kind: KindAdjustment, Deltas: DeltaMap{USDT: amount.Neg()}},
		},
		{
			name:    "adjustment without deltas",
			tx:      Transaction{AccountID: "a1", Kind: KindAdjustment},
			wantErr: true,
		},
		{
			name: "valid growth",
			tx:   Transaction{AccountID: "a1", Kind: KindGrowth, Amount: amount, Currency: USD},
		},
		{
			name:    "growth in a crypto currency",
			tx:      Transaction{AccountID: "a1", Kind: KindGrowth, Amount: amount, Currency: BTC},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			tx:      Transaction{AccountID: "a1", Kind: "transfer", Amount: amount},
			wantErr: true,
		},
		{
			name:    "missing account",
			tx:      Transaction{Kind: KindInvestment, Amount: amount, Currency: BTC, ReceiptRef: "r"},
			wantErr: true,
		},
		{
			name:    "recorded directly as rejected",
			tx:      Transaction{AccountID: "a1", Kind: KindInvestment, Amount: amount, Currency: BTC, ReceiptRef: "r", Status: StatusRejected},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := tc.tx
			if tx.Status == "" {
				tx.Status = StatusPending
			}
			err := tx.ValidateForRecord()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errs.IsKind(err, errs.Validation) {
					t.Fatalf("expected Validation kind, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
