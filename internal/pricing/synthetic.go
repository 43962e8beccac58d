package pricing

import (
	"context"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"

	"tradesense/internal/config"
)

// Synthetic quotes are rounded to 4 decimal places.
const syntheticScale = 4

type syntheticSymbol struct {
	base   float64
	spread float64
}

// Synthetic generates quotes for symbols with no live feed as
// base + uniform(-spread, +spread). Every call draws independently;
// no state is kept between calls. It never fails.
type Synthetic struct {
	mu      sync.Mutex
	rng     *rand.Rand
	symbols map[string]syntheticSymbol
	base    float64 // fallback for unconfigured symbols
	spread  float64
}

var _ PriceSource = (*Synthetic)(nil)

// NewSynthetic creates a synthetic source over the configured symbols.
// The random source is injectable so tests can seed it deterministically.
func NewSynthetic(symbols []config.Symbol, rng *rand.Rand) *Synthetic {
	table := make(map[string]syntheticSymbol, len(symbols))
	for _, s := range symbols {
		if s.Source == "synthetic" {
			table[s.Symbol] = syntheticSymbol{base: s.Base, spread: s.Spread}
		}
	}
	return &Synthetic{
		rng:     rng,
		symbols: table,
		base:    100.00,
		spread:  0.50,
	}
}

// Quote returns a fresh draw around the symbol's base price.
func (s *Synthetic) Quote(_ context.Context, symbol string) (decimal.Decimal, error) {
	cfg, ok := s.symbols[symbol]
	if !ok {
		cfg = syntheticSymbol{base: s.base, spread: s.spread}
	}

	// rand.Rand is not safe for concurrent use.
	s.mu.Lock()
	draw := s.rng.Float64()
	s.mu.Unlock()

	price := cfg.base + (draw*2-1)*cfg.spread
	return decimal.NewFromFloat(price).Round(syntheticScale), nil
}
