package database

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"tradesense/internal/config"
	"tradesense/internal/models"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and seeds the singleton account row with the
// configured starting balance if it does not exist yet.
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if err := db.AutoMigrate(&models.Account{}, &models.Trade{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	starting := decimal.NewFromFloat(cfg.Trading.StartingBalance)
	account := models.Account{
		ID:      models.AccountID,
		Balance: starting,
		Equity:  starting,
		Status:  models.StatusRunning,
	}
	if err := db.FirstOrCreate(&account, models.Account{ID: models.AccountID}).Error; err != nil {
		return fmt.Errorf("failed to seed account row: %w", err)
	}

	return nil
}
