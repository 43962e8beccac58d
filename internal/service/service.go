// Package service orchestrates the price source, settlement engine, and
// ledger into the operations exposed over HTTP.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradesense/internal/config"
	"tradesense/internal/ledger"
	"tradesense/internal/models"
	"tradesense/internal/pricing"
	"tradesense/internal/settlement"
)

// TradeRequest is the normalized submit-trade input. Price and Quantity
// are optional; the active settlement model decides how they are used.
type TradeRequest struct {
	Symbol   string
	Action   string
	Price    *decimal.Decimal
	Quantity *decimal.Decimal
}

// SubmitResult carries the account state after a submission attempt. On
// rejection the account is the current, unchanged state and Trade is nil.
type SubmitResult struct {
	Account models.Account
	Trade   *models.Trade
}

// SnapshotEntry is one instrument in the market snapshot.
type SnapshotEntry struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Note     string          `json:"note,omitempty"`
}

// TradeService exposes the submit/read/reset operations over the ledger.
// A single mutex serializes SubmitTrade and Reset: both are read-modify-write
// cycles over the one account row, and concurrent submissions must not both
// read the same starting balance.
type TradeService struct {
	mu     sync.Mutex
	logger *zap.Logger
	cfg    *config.Config
	store  *ledger.Store
	engine *settlement.Engine
	prices pricing.PriceSource
}

// NewTradeService wires the service from its collaborators.
func NewTradeService(logger *zap.Logger, cfg *config.Config, store *ledger.Store, engine *settlement.Engine, prices pricing.PriceSource) *TradeService {
	return &TradeService{
		logger: logger,
		cfg:    cfg,
		store:  store,
		engine: engine,
		prices: prices,
	}
}

// SubmitTrade runs one trade submission end to end: normalize, load the
// account, resolve a quote if the model needs one, evaluate, and persist
// the trade plus the new account state atomically. On rejection the
// returned result still carries the current account state.
func (s *TradeService) SubmitTrade(ctx context.Context, req TradeRequest) (SubmitResult, error) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.Action = strings.ToUpper(strings.TrimSpace(req.Action))

	// Malformed input fails before the ledger or price source is touched.
	if req.Action != models.ActionBuy && req.Action != models.ActionSell {
		return SubmitResult{}, settlement.ErrInvalidAction
	}
	if req.Symbol == "" {
		return SubmitResult{}, settlement.ErrMissingSymbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.store.Account()
	if err != nil {
		return SubmitResult{}, err
	}

	// Terminal accounts short-circuit before any quote fetch.
	if !account.Active() {
		return SubmitResult{Account: account}, settlement.ErrAccountInactive
	}

	// The quote is the settlement price in the fixed model. A failed
	// fetch fails the whole submission; a zero-priced trade record is
	// worse than no record.
	var quote decimal.Decimal
	if s.engine.NeedsQuote() {
		quote, err = s.prices.Quote(ctx, req.Symbol)
		if err != nil {
			s.logger.Warn("Quote resolution failed, rejecting trade",
				zap.String("symbol", req.Symbol), zap.Error(err))
			return SubmitResult{Account: account}, err
		}
	}

	newAccount, trade, err := s.engine.Evaluate(account, settlement.Request{
		Symbol:   req.Symbol,
		Action:   req.Action,
		Price:    req.Price,
		Quantity: req.Quantity,
	}, quote)
	if err != nil {
		return SubmitResult{Account: account}, err
	}

	if err := s.store.ApplyTrade(trade, newAccount); err != nil {
		return SubmitResult{Account: account}, fmt.Errorf("failed to persist trade: %w", err)
	}

	s.logger.Info("Trade settled",
		zap.Uint("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.String("action", trade.Action),
		zap.String("balance", newAccount.Balance.String()),
		zap.String("status", newAccount.Status),
	)

	return SubmitResult{Account: newAccount, Trade: trade}, nil
}

// MarketSnapshot resolves a quote for every configured symbol. Any quote
// failure fails the whole snapshot.
func (s *TradeService) MarketSnapshot(ctx context.Context) (map[string]SnapshotEntry, error) {
	snapshot := make(map[string]SnapshotEntry, len(s.cfg.Market.Symbols))
	for _, sym := range s.cfg.Market.Symbols {
		price, err := s.prices.Quote(ctx, sym.Symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s price: %w", sym.Symbol, err)
		}
		snapshot[sym.Key] = SnapshotEntry{
			Symbol:   sym.Symbol,
			Name:     sym.Name,
			Price:    price,
			Currency: sym.Currency,
			Note:     sym.Note,
		}
	}
	return snapshot, nil
}

// Balance returns the current account state.
func (s *TradeService) Balance() (models.Account, error) {
	return s.store.Account()
}

// Trades returns the full trade history in insertion order.
func (s *TradeService) Trades() ([]models.Trade, error) {
	return s.store.Trades()
}

// Reset restores the account to its starting state and clears the trade
// history. It shares the submission critical section.
func (s *TradeService) Reset() (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.store.Reset(decimal.NewFromFloat(s.cfg.Trading.StartingBalance))
	if err != nil {
		return models.Account{}, err
	}

	s.logger.Info("Account reset", zap.String("balance", account.Balance.String()))
	return account, nil
}
