package service

import (
	"github.com/sirupsen/logrus"

	"crypto_invest_back/internal/wallet"
	"crypto_invest_back/models"
	"crypto_invest_back/pkg/repository"
)

type DepositWalletService struct {
	repos repository.DepositWallets
}

func NewDepositWalletService(repos repository.DepositWallets) *DepositWalletService {
	return &DepositWalletService{repos: repos}
}

// EnsureSeeded generates one platform deposit address per currency on first
// start. Existing wallets are never regenerated.
func (s *DepositWalletService) EnsureSeeded() error {
	count, err := s.repos.CountWallets()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, currency := range models.Currencies() {
		generated, err := wallet.GenerateDepositWallet()
		if err != nil {
			return err
		}
		err = s.repos.InsertWallet(models.DepositWallet{
			Currency:   currency,
			Address:    generated.Address,
			PrivateKey: generated.PrivateKey,
		})
		if err != nil {
			return err
		}
	}
	logrus.Infof("deposit wallets seeded for %d currencies", len(models.Currencies()))
	return nil
}

func (s *DepositWalletService) List() ([]models.DepositWallet, error) {
	return s.repos.ListWallets()
}
