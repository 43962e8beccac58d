package pricing

import (
	"context"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesense/internal/config"
)

func testSymbols() []config.Symbol {
	return []config.Symbol{
		{Key: "iam_ma", Symbol: "IAM.MA", Source: "synthetic", Base: 100.00, Spread: 0.50},
		{Key: "btc_usd", Symbol: "BTC-USD", Source: "real"},
	}
}

func TestSynthetic_QuoteWithinBounds(t *testing.T) {
	source := NewSynthetic(testSymbols(), rand.New(rand.NewSource(42)))

	lower := decimal.NewFromFloat(99.50)
	upper := decimal.NewFromFloat(100.50)

	for i := 0; i < 100; i++ {
		price, err := source.Quote(context.Background(), "IAM.MA")
		require.NoError(t, err)
		assert.True(t, price.GreaterThanOrEqual(lower), "price %s below lower bound", price)
		assert.True(t, price.LessThanOrEqual(upper), "price %s above upper bound", price)
	}
}

func TestSynthetic_Rounding(t *testing.T) {
	source := NewSynthetic(testSymbols(), rand.New(rand.NewSource(1)))

	price, err := source.Quote(context.Background(), "IAM.MA")

	require.NoError(t, err)
	assert.LessOrEqual(t, int(-price.Exponent()), 4)
}

func TestSynthetic_DeterministicWithSeed(t *testing.T) {
	a := NewSynthetic(testSymbols(), rand.New(rand.NewSource(7)))
	b := NewSynthetic(testSymbols(), rand.New(rand.NewSource(7)))

	for i := 0; i < 10; i++ {
		pa, err := a.Quote(context.Background(), "IAM.MA")
		require.NoError(t, err)
		pb, err := b.Quote(context.Background(), "IAM.MA")
		require.NoError(t, err)
		assert.True(t, pa.Equal(pb))
	}
}

func TestSynthetic_UnknownSymbolFallsBack(t *testing.T) {
	source := NewSynthetic(testSymbols(), rand.New(rand.NewSource(3)))

	price, err := source.Quote(context.Background(), "UNLISTED")

	require.NoError(t, err)
	assert.True(t, price.GreaterThanOrEqual(decimal.NewFromFloat(99.50)))
	assert.True(t, price.LessThanOrEqual(decimal.NewFromFloat(100.50)))
}
