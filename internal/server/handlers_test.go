package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"tradesense/internal/config"
	"tradesense/internal/ledger"
	"tradesense/internal/models"
	"tradesense/internal/pricing"
	"tradesense/internal/service"
	"tradesense/internal/settlement"
)

// fakeSource returns a fixed price, or an error when price is zero.
type fakeSource struct {
	price decimal.Decimal
	err   error
}

func (f *fakeSource) Quote(context.Context, string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.price, nil
}

func setupServer(t *testing.T, model string, prices pricing.PriceSource) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	decimal.MarshalJSONWithoutQuotes = true

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Trade{}))

	starting := decimal.NewFromFloat(5000)
	require.NoError(t, db.Create(&models.Account{
		ID:      models.AccountID,
		Balance: starting,
		Equity:  starting,
		Status:  models.StatusRunning,
	}).Error)

	cfg := &config.Config{
		Market: config.Market{
			Symbols: []config.Symbol{
				{Key: "btc_usd", Symbol: "BTC-USD", Name: "Bitcoin / US Dollar", Currency: "USD", Source: "real"},
			},
		},
		Trading: config.Trading{
			Model:           model,
			StartingBalance: 5000.00,
			BuyGain:         150.00,
			SellLoss:        200.00,
			FailFloorRatio:  0.95,
			PassTargetRatio: 1.10,
		},
	}

	store := ledger.NewStore(db)
	engine := settlement.NewEngine(&cfg.Trading)
	svc := service.NewTradeService(zap.NewNop(), cfg, store, engine, prices)
	handler := NewHandler(zap.NewNop(), svc)

	return NewRouter(zap.NewNop(), handler), db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func TestBalanceEndpoint(t *testing.T) {
	router, _ := setupServer(t, config.ModelFixed, &fakeSource{price: decimal.NewFromFloat(100)})

	w, resp := doJSON(t, router, http.MethodGet, "/balance", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, 5000.0, resp["balance"])
	assert.Equal(t, 5000.0, resp["equity"])
	assert.Equal(t, models.StatusRunning, resp["status"])
}

func TestSubmitTradeEndpoint_Success(t *testing.T) {
	router, _ := setupServer(t, config.ModelFixed, &fakeSource{price: decimal.NewFromFloat(64000.50)})

	w, resp := doJSON(t, router, http.MethodPost, "/submit-trade", gin.H{"symbol": "BTC-USD", "action": "BUY"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, 5150.0, resp["balance"])
	assert.Equal(t, models.StatusRunning, resp["status"])

	trade, ok := resp["trade"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "BTC-USD", trade["symbol"])
	assert.Equal(t, models.ActionBuy, trade["action"])
	assert.Equal(t, 64000.50, trade["price"])
}

func TestSubmitTradeEndpoint_ValidationErrors(t *testing.T) {
	router, _ := setupServer(t, config.ModelFixed, &fakeSource{price: decimal.NewFromFloat(100)})

	tests := []struct {
		name string
		body gin.H
	}{
		{"UnknownAction", gin.H{"symbol": "BTC-USD", "action": "HOLD"}},
		{"MissingSymbol", gin.H{"action": "BUY"}},
		{"NonNumericPrice", gin.H{"symbol": "BTC-USD", "action": "BUY", "price": "not-a-number"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, router, http.MethodPost, "/submit-trade", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, resp["success"])
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestSubmitTradeEndpoint_InactiveAccount(t *testing.T) {
	router, db := setupServer(t, config.ModelFixed, &fakeSource{price: decimal.NewFromFloat(100)})

	failed := decimal.NewFromFloat(4600)
	require.NoError(t, db.Model(&models.Account{}).
		Where("id = ?", models.AccountID).
		Updates(map[string]any{"balance": failed, "equity": failed, "status": models.StatusFailed}).Error)

	w, resp := doJSON(t, router, http.MethodPost, "/submit-trade", gin.H{"symbol": "BTC-USD", "action": "BUY"})

	// Not a server error: the account simply is not tradable anymore, and
	// the current state is embedded in the response.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, 4600.0, resp["balance"])
	assert.Equal(t, models.StatusFailed, resp["status"])
}

func TestSubmitTradeEndpoint_QuoteFailure(t *testing.T) {
	router, _ := setupServer(t, config.ModelFixed, &fakeSource{err: pricing.ErrQuoteUnavailable})

	w, resp := doJSON(t, router, http.MethodPost, "/submit-trade", gin.H{"symbol": "BTC-USD", "action": "BUY"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestSubmitTradeEndpoint_PricedModel(t *testing.T) {
	router, _ := setupServer(t, config.ModelPriced, &fakeSource{err: pricing.ErrQuoteUnavailable})

	// The priced model never consults the price source, so the failing
	// fake is irrelevant here.
	w, resp := doJSON(t, router, http.MethodPost, "/submit-trade",
		gin.H{"symbol": "BTC-USD", "action": "SELL", "price": 50, "quantity": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, 5100.0, resp["balance"])
}

func TestResetEndpoint(t *testing.T) {
	router, _ := setupServer(t, config.ModelFixed, &fakeSource{price: decimal.NewFromFloat(100)})

	// Trade first, then reset back to the starting state.
	w, _ := doJSON(t, router, http.MethodPost, "/submit-trade", gin.H{"symbol": "BTC-USD", "action": "SELL"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, router, http.MethodPost, "/reset", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, 5000.0, resp["balance"])
	assert.Equal(t, models.StatusRunning, resp["status"])

	w, resp = doJSON(t, router, http.MethodGet, "/trades", nil)
	require.Equal(t, http.StatusOK, w.Code)
	trades, ok := resp["trades"].([]any)
	require.True(t, ok)
	assert.Empty(t, trades)
}

func TestMarketDataEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, _ := setupServer(t, config.ModelFixed, &fakeSource{price: decimal.NewFromFloat(64000.12)})

		w, resp := doJSON(t, router, http.MethodGet, "/market-data", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, resp["success"])

		data, ok := resp["data"].(map[string]any)
		require.True(t, ok)
		entry, ok := data["btc_usd"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "BTC-USD", entry["symbol"])
		assert.Equal(t, 64000.12, entry["price"])

		account, ok := resp["account"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 5000.0, account["balance"])
	})

	t.Run("QuoteFailure", func(t *testing.T) {
		router, _ := setupServer(t, config.ModelFixed, &fakeSource{err: pricing.ErrQuoteUnavailable})

		w, resp := doJSON(t, router, http.MethodGet, "/market-data", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, false, resp["success"])
	})
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupServer(t, config.ModelFixed, &fakeSource{price: decimal.NewFromFloat(100)})

	w, _ := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
