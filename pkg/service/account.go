package service

import (
	"crypto_invest_back/models"
	"crypto_invest_back/pkg/errs"
	"crypto_invest_back/pkg/repository"
)

type AccountService struct {
	ledger repository.Ledger
}

func NewAccountService(ledger repository.Ledger) *AccountService {
	return &AccountService{ledger: ledger}
}

func (s *AccountService) Create(acc models.Account) (models.Account, error) {
	if acc.Name == "" || acc.Email == "" {
		return models.Account{}, errs.New(errs.Validation, "name and email are required")
	}
	return s.ledger.CreateAccount(acc)
}

func (s *AccountService) Get(id string) (models.Account, error) {
	return s.ledger.GetAccount(id)
}

func (s *AccountService) List() ([]models.Account, error) {
	return s.ledger.ListAccounts()
}
