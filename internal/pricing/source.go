package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"tradesense/internal/config"
)

// ErrQuoteUnavailable is returned when a price cannot be resolved for a
// symbol, either because the provider returned no data or was unreachable.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// PriceSource supplies a current quote for a symbol.
type PriceSource interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Router dispatches quote requests to the real-feed or synthetic source
// based on the per-symbol configuration.
type Router struct {
	real      PriceSource
	synthetic PriceSource
	sources   map[string]string // symbol -> config source name
}

var _ PriceSource = (*Router)(nil)

// NewRouter creates a Router over the given sources and symbol table.
func NewRouter(real, synthetic PriceSource, symbols []config.Symbol) *Router {
	sources := make(map[string]string, len(symbols))
	for _, s := range symbols {
		sources[s.Symbol] = s.Source
	}
	return &Router{real: real, synthetic: synthetic, sources: sources}
}

// Quote resolves a price for the symbol via its configured source.
// Unknown symbols fall through to the synthetic source so that free-form
// instruments can still be simulated.
func (r *Router) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	switch r.sources[symbol] {
	case "real":
		price, err := r.real.Quote(ctx, symbol)
		if err != nil {
			return decimal.Zero, fmt.Errorf("real feed for %s: %w", symbol, err)
		}
		return price, nil
	default:
		return r.synthetic.Quote(ctx, symbol)
	}
}
