package models

import "github.com/shopspring/decimal"

// Account status values. RUNNING is the initial state; FAILED and
// PASSED are terminal and only a reset can leave them.
const (
	StatusRunning = "RUNNING"
	StatusFailed  = "FAILED"
	StatusPassed  = "PASSED"
)

// AccountID is the fixed primary key of the singleton account row.
const AccountID = 1

// Account represents the single simulated trading account.
// There is exactly one row in this table, keyed by AccountID.
type Account struct {
	ID      uint            `gorm:"primaryKey" json:"-"`
	Balance decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"balance"`
	Equity  decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"equity"`
	Status  string          `gorm:"not null" json:"status"`
}

// Active reports whether the account may still accept trades.
func (a Account) Active() bool {
	return a.Status == StatusRunning
}
