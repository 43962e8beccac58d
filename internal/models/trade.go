package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade actions.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Trade represents a settled trade record in the database.
// Rows are append-only; they are never updated and only a full
// account reset deletes them.
type Trade struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	AccountID uint            `gorm:"not null;index" json:"-"`
	Symbol    string          `gorm:"not null" json:"symbol"`
	Action    string          `gorm:"not null" json:"action"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"quantity"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Timestamp time.Time       `gorm:"not null" json:"timestamp"`
}
