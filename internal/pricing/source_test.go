package pricing

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_DispatchesBySource(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/BTC-USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"indicators":{"quote":[{"close":[64000.00]}]}}],"error":null}}`))
	})
	real, server := setupTestServer(handler)
	defer server.Close()

	synthetic := NewSynthetic(testSymbols(), rand.New(rand.NewSource(9)))
	router := NewRouter(real, synthetic, testSymbols())

	price, err := router.Quote(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(64000)))

	price, err = router.Quote(context.Background(), "IAM.MA")
	require.NoError(t, err)
	assert.True(t, price.GreaterThanOrEqual(decimal.NewFromFloat(99.50)))
	assert.True(t, price.LessThanOrEqual(decimal.NewFromFloat(100.50)))
}

func TestRouter_RealFeedFailurePropagates(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	real, server := setupTestServer(handler)
	defer server.Close()

	router := NewRouter(real, NewSynthetic(testSymbols(), rand.New(rand.NewSource(9))), testSymbols())

	_, err := router.Quote(context.Background(), "BTC-USD")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuoteUnavailable))
}
