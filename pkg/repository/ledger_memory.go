package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/errs"
)

// LedgerMemory keeps the whole ledger in process memory. Compound operations
// take a per-account mutex and stage their writes, so a failed unit leaves no
// trace and concurrent units on one account serialize.
type LedgerMemory struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	balances map[string]models.Balances
	txs      map[string]models.Transaction
	order    []string
	locks    map[string]*sync.Mutex
}

func NewLedgerMemory() *LedgerMemory {
	return &LedgerMemory{
		accounts: make(map[string]*models.Account),
		balances: make(map[string]models.Balances),
		txs:      make(map[string]models.Transaction),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *LedgerMemory) accountLock(accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locks[accountID]; !ok {
		s.locks[accountID] = &sync.Mutex{}
	}
	return s.locks[accountID]
}

func (s *LedgerMemory) Atomic(_ context.Context, accountID string, fn func(ops LedgerOps) error) error {
	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	_, exists := s.accounts[accountID]
	staged := make(models.Balances, len(s.balances[accountID]))
	for c, v := range s.balances[accountID] {
		staged[c] = v
	}
	s.mu.Unlock()

	if !exists {
		return errs.Newf(errs.NotFound, "account %s not found", accountID)
	}

	ops := &memOps{
		store:     s,
		accountID: accountID,
		balances:  staged,
		status:    make(map[string]models.TransactionStatus),
	}
	if err := fn(ops); err != nil {
		return err
	}
	ops.commit()
	return nil
}

// memOps stages all writes of one compound operation; nothing is visible
// until commit.
type memOps struct {
	store      *LedgerMemory
	accountID  string
	balances   models.Balances
	totalDelta decimal.Decimal
	newTxs     []models.Transaction
	status     map[string]models.TransactionStatus
}

func (o *memOps) commit() {
	s := o.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[o.accountID] = o.balances
	if acc, ok := s.accounts[o.accountID]; ok {
		acc.TotalInvestment = acc.TotalInvestment.Add(o.totalDelta)
	}
	for _, tx := range o.newTxs {
		s.txs[tx.ID] = tx
		s.order = append(s.order, tx.ID)
	}
	for id, status := range o.status {
		tx := s.txs[id]
		tx.Status = status
		s.txs[id] = tx
	}
}

func (o *memOps) checkScope(accountID string) error {
	if accountID != o.accountID {
		return errors.Errorf("atomic unit is scoped to account %s, got %s", o.accountID, accountID)
	}
	return nil
}

func (o *memOps) Credit(accountID string, currency models.Currency, amount decimal.Decimal) error {
	if err := o.checkScope(accountID); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return errs.New(errs.Validation, "credit amount must be positive")
	}
	o.balances[currency] = o.balance(currency).Add(amount)
	return nil
}

func (o *memOps) Debit(accountID string, currency models.Currency, amount decimal.Decimal) error {
	if err := o.checkScope(accountID); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return errs.New(errs.Validation, "debit amount must be positive")
	}
	current := o.balance(currency)
	if current.LessThan(amount) {
		return errs.Newf(errs.InsufficientFunds, "insufficient %s balance", currency)
	}
	o.balances[currency] = current.Sub(amount)
	return nil
}

func (o *memOps) ApplyDelta(accountID string, currency models.Currency, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := o.checkScope(accountID); err != nil {
		return decimal.Zero, err
	}
	applied := o.balance(currency).Add(delta)
	if applied.IsNegative() {
		applied = decimal.Zero
	}
	o.balances[currency] = applied
	return applied, nil
}

func (o *memOps) balance(currency models.Currency) decimal.Decimal {
	if v, ok := o.balances[currency]; ok {
		return v
	}
	return decimal.Zero
}

func (o *memOps) Snapshot(accountID string) (models.Balances, error) {
	if err := o.checkScope(accountID); err != nil {
		return nil, err
	}
	return o.balances.Full(), nil
}

func (o *memOps) AddInvestmentTotal(accountID string, usd decimal.Decimal) error {
	if err := o.checkScope(accountID); err != nil {
		return err
	}
	o.totalDelta = o.totalDelta.Add(usd)
	return nil
}

func (o *memOps) Record(tx models.Transaction) (models.Transaction, error) {
	if tx.Status == "" {
		tx.Status = models.StatusPending
	}
	if err := tx.ValidateForRecord(); err != nil {
		return models.Transaction{}, err
	}
	tx.ID = uuid.New().String()
	tx.CreatedAt = time.Now().UTC()
	o.newTxs = append(o.newTxs, tx)
	return tx, nil
}

func (o *memOps) FindByID(id string) (models.Transaction, error) {
	for _, tx := range o.newTxs {
		if tx.ID == id {
			return tx, nil
		}
	}
	o.store.mu.Lock()
	tx, ok := o.store.txs[id]
	o.store.mu.Unlock()
	if !ok {
		return models.Transaction{}, errs.Newf(errs.NotFound, "transaction %s not found", id)
	}
	if status, staged := o.status[id]; staged {
		tx.Status = status
	}
	return tx, nil
}

func (o *memOps) Transition(id string, status models.TransactionStatus) error {
	if status != models.StatusConfirmed && status != models.StatusRejected {
		return errs.Newf(errs.InvalidTransition, "cannot transition to %q", status)
	}
	tx, err := o.FindByID(id)
	if err != nil {
		return err
	}
	if tx.Status != models.StatusPending {
		return errs.Newf(errs.InvalidTransition, "transaction %s is not pending", id)
	}
	o.status[id] = status
	return nil
}

// Single operations route through Atomic so they respect the account lock.

func (s *LedgerMemory) Credit(accountID string, currency models.Currency, amount decimal.Decimal) error {
	return s.Atomic(context.Background(), accountID, func(ops LedgerOps) error {
		return ops.Credit(accountID, currency, amount)
	})
}

func (s *LedgerMemory) Debit(accountID string, currency models.Currency, amount decimal.Decimal) error {
	return s.Atomic(context.Background(), accountID, func(ops LedgerOps) error {
		return ops.Debit(accountID, currency, amount)
	})
}

func (s *LedgerMemory) ApplyDelta(accountID string, currency models.Currency, delta decimal.Decimal) (decimal.Decimal, error) {
	var applied decimal.Decimal
	err := s.Atomic(context.Background(), accountID, func(ops LedgerOps) error {
		var opErr error
		applied, opErr = ops.ApplyDelta(accountID, currency, delta)
		return opErr
	})
	return applied, err
}

func (s *LedgerMemory) Snapshot(accountID string) (models.Balances, error) {
	var snapshot models.Balances
	err := s.Atomic(context.Background(), accountID, func(ops LedgerOps) error {
		var opErr error
		snapshot, opErr = ops.Snapshot(accountID)
		return opErr
	})
	return snapshot, err
}

func (s *LedgerMemory) AddInvestmentTotal(accountID string, usd decimal.Decimal) error {
	return s.Atomic(context.Background(), accountID, func(ops LedgerOps) error {
		return ops.AddInvestmentTotal(accountID, usd)
	})
}

func (s *LedgerMemory) Record(tx models.Transaction) (models.Transaction, error) {
	var recorded models.Transaction
	err := s.Atomic(context.Background(), tx.AccountID, func(ops LedgerOps) error {
		var opErr error
		recorded, opErr = ops.Record(tx)
		return opErr
	})
	return recorded, err
}

func (s *LedgerMemory) FindByID(id string) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok {
		return models.Transaction{}, errs.Newf(errs.NotFound, "transaction %s not found", id)
	}
	return tx, nil
}

func (s *LedgerMemory) Transition(id string, status models.TransactionStatus) error {
	tx, err := s.FindByID(id)
	if err != nil {
		return err
	}
	return s.Atomic(context.Background(), tx.AccountID, func(ops LedgerOps) error {
		return ops.Transition(id, status)
	})
}

func (s *LedgerMemory) CreateAccount(acc models.Account) (models.Account, error) {
	if acc.ID == "" {
		acc.ID = uuid.New().String()
	}
	if acc.Role == "" {
		acc.Role = models.RoleUser
	}
	acc.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[acc.ID]; exists {
		return models.Account{}, errs.Newf(errs.Validation, "account %s already exists", acc.ID)
	}
	stored := acc
	s.accounts[acc.ID] = &stored
	s.balances[acc.ID] = make(models.Balances)
	return acc, nil
}

func (s *LedgerMemory) GetAccount(id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return models.Account{}, errs.Newf(errs.NotFound, "account %s not found", id)
	}
	return *acc, nil
}

func (s *LedgerMemory) ListAccounts() ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accs := make([]models.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		accs = append(accs, *acc)
	}
	return accs, nil
}

// ListByAccount returns the account's transactions, most recent first.
func (s *LedgerMemory) ListByAccount(accountID string, kind models.TransactionKind, limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var txs []models.Transaction
	for i := len(s.order) - 1; i >= 0; i-- {
		tx := s.txs[s.order[i]]
		if tx.AccountID != accountID {
			continue
		}
		if kind != "" && tx.Kind != kind {
			continue
		}
		txs = append(txs, tx)
		if limit > 0 && len(txs) == limit {
			break
		}
	}
	return txs, nil
}

func (s *LedgerMemory) ListPendingByKind(kind models.TransactionKind) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var txs []models.Transaction
	for i := len(s.order) - 1; i >= 0; i-- {
		tx := s.txs[s.order[i]]
		if tx.Status == models.StatusPending && tx.Kind == kind {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

var _ Ledger = (*LedgerMemory)(nil)
var _ Ledger = (*LedgerPostgres)(nil)
