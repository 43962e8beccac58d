// Package settlement implements the account state machine and the
// trade-settlement rules. The engine holds no persistent state: Evaluate is
// a pure function from (current account, request, quote) to (new account,
// trade record) or a rejection.
package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"tradesense/internal/config"
	"tradesense/internal/models"
)

// Request is a validated-at-the-edge trade request. Price and Quantity are
// nil when the caller did not supply them; the active model decides whether
// they are required, defaulted, or ignored.
type Request struct {
	Symbol   string
	Action   string
	Price    *decimal.Decimal
	Quantity *decimal.Decimal
}

// Engine applies the settlement policy and derives account status from
// equity against the configured bounds.
type Engine struct {
	model      string
	buyGain    decimal.Decimal
	sellLoss   decimal.Decimal
	failFloor  decimal.Decimal // equity strictly below this fails the account
	passTarget decimal.Decimal // equity strictly above this passes it
}

// NewEngine creates an engine from the trading configuration. The fail
// floor and pass target are ratios of the starting balance.
func NewEngine(cfg *config.Trading) *Engine {
	starting := decimal.NewFromFloat(cfg.StartingBalance)
	return &Engine{
		model:      cfg.Model,
		buyGain:    decimal.NewFromFloat(cfg.BuyGain),
		sellLoss:   decimal.NewFromFloat(cfg.SellLoss),
		failFloor:  starting.Mul(decimal.NewFromFloat(cfg.FailFloorRatio)),
		passTarget: starting.Mul(decimal.NewFromFloat(cfg.PassTargetRatio)),
	}
}

// NeedsQuote reports whether the active model requires a reference quote
// from the price source. The priced model settles at the caller-supplied
// price instead.
func (e *Engine) NeedsQuote() bool {
	return e.model != config.ModelPriced
}

// StatusFor derives the account status from an equity value. It depends
// only on the equity and the configured bounds; equity exactly at a bound
// stays in the less severe bucket.
func (e *Engine) StatusFor(equity decimal.Decimal) string {
	if equity.LessThan(e.failFloor) {
		return models.StatusFailed
	}
	if equity.GreaterThan(e.passTarget) {
		return models.StatusPassed
	}
	return models.StatusRunning
}

// Evaluate decides whether the trade is admissible and, if so, computes
// the resulting account state and the trade record to persist. On error
// the returned account is the input account, unchanged, and no trade
// record is produced.
func (e *Engine) Evaluate(account models.Account, req Request, quote decimal.Decimal) (models.Account, *models.Trade, error) {
	if !account.Active() {
		return account, nil, ErrAccountInactive
	}

	if req.Action != models.ActionBuy && req.Action != models.ActionSell {
		return account, nil, ErrInvalidAction
	}
	if req.Symbol == "" {
		return account, nil, ErrMissingSymbol
	}
	if req.Quantity != nil && !req.Quantity.IsPositive() {
		return account, nil, ErrInvalidQuantity
	}

	quantity := decimal.NewFromInt(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	// The priced model settles at the caller-supplied price; the fixed
	// model records the quote as the reference price.
	price := quote
	if e.model == config.ModelPriced {
		if req.Price == nil || !req.Price.IsPositive() {
			return account, nil, ErrInvalidPrice
		}
		price = *req.Price
	}

	amount := price.Mul(quantity)

	var delta decimal.Decimal
	switch e.model {
	case config.ModelPriced:
		// Cash model: a BUY spends the notional, a SELL receives it.
		if req.Action == models.ActionBuy {
			delta = amount.Neg()
		} else {
			delta = amount
		}
	default:
		// Fixed PnL simulation, not tied to price or quantity.
		if req.Action == models.ActionBuy {
			delta = e.buyGain
		} else {
			delta = e.sellLoss.Neg()
		}
	}

	newBalance := account.Balance.Add(delta)
	if e.model == config.ModelPriced && newBalance.IsNegative() {
		return account, nil, ErrInsufficientBalance
	}

	// Equity mirrors balance; no open positions are tracked.
	account.Balance = newBalance
	account.Equity = newBalance
	account.Status = e.StatusFor(newBalance)

	trade := &models.Trade{
		AccountID: models.AccountID,
		Symbol:    req.Symbol,
		Action:    req.Action,
		Price:     price,
		Quantity:  quantity,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	}

	return account, trade, nil
}
