// Package ledger owns the persistent account and trade records.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tradesense/internal/models"
)

// ErrNotInitialized is returned when the singleton account row is missing.
// The database bootstrap must create it before the service is used.
var ErrNotInitialized = errors.New("account not initialized")

// Store persists the singleton account and its trade history.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store over an open database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Account loads the singleton account row.
func (s *Store) Account() (models.Account, error) {
	var account models.Account
	err := s.db.First(&account, models.AccountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, ErrNotInitialized
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}

// ApplyTrade records the trade and overwrites the account row as one
// atomic unit. If either write fails, neither persists.
func (s *Store) ApplyTrade(trade *models.Trade, account models.Account) error {
	account.ID = models.AccountID
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(trade).Error; err != nil {
			return fmt.Errorf("failed to record trade: %w", err)
		}
		if err := tx.Save(&account).Error; err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		return nil
	})
}

// Reset restores the account to the starting balance with RUNNING status
// and deletes all trade rows, atomically.
func (s *Store) Reset(startingBalance decimal.Decimal) (models.Account, error) {
	account := models.Account{
		ID:      models.AccountID,
		Balance: startingBalance,
		Equity:  startingBalance,
		Status:  models.StatusRunning,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&account).Error; err != nil {
			return fmt.Errorf("failed to reset account: %w", err)
		}
		if err := tx.Where("account_id = ?", models.AccountID).Delete(&models.Trade{}).Error; err != nil {
			return fmt.Errorf("failed to clear trades: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// Trades returns all trade rows in insertion order.
func (s *Store) Trades() ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.Order("id asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}
