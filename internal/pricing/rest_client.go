package pricing

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tradesense/internal/config"
)

const (
	baseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

	// Real quotes are rounded to 2 decimal places, appropriate for the
	// quoted currency.
	realFeedScale = 2
)

// chartResponse is the subset of the provider's chart payload we consume.
// Close values may be null for bars with no trades, hence the pointers.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// RestClient fetches the most recent close price for a symbol from the
// market-data provider using a short trailing window (the last 1-minute
// bar of the current day). It implements PriceSource.
type RestClient struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
	timeout time.Duration
}

var _ PriceSource = (*RestClient)(nil)

// NewRestClient creates a new market-data REST client.
func NewRestClient(cfg *config.Market, logger *zap.Logger) *RestClient {
	client := resty.New().SetBaseURL(baseURL)

	// Initialize the rate limiter
	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &RestClient{
		client:  client,
		logger:  logger,
		limiter: limiter,
		timeout: time.Duration(cfg.QuoteTimeout) * time.Second,
	}
}

// Quote fetches the latest close price for the symbol, rounded to 2
// decimal places. Returns ErrQuoteUnavailable when the provider has no
// data for the symbol or cannot be reached.
func (c *RestClient) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"range":    "1d",
			"interval": "1m",
		}).
		SetResult(&chartResponse{})

	resp, err := c.doRequest(ctx, "GET", "/"+symbol, req)
	if err != nil {
		c.logger.Error("Failed to fetch quote", zap.String("symbol", symbol), zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}

	result := resp.Result().(*chartResponse)
	price, ok := lastClose(result)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no price data for %s", ErrQuoteUnavailable, symbol)
	}

	return decimal.NewFromFloat(price).Round(realFeedScale), nil
}

// lastClose extracts the most recent non-null close from the chart payload.
func lastClose(r *chartResponse) (float64, bool) {
	if r.Chart.Error != nil || len(r.Chart.Result) == 0 {
		return 0, false
	}
	quotes := r.Chart.Result[0].Indicators.Quote
	if len(quotes) == 0 {
		return 0, false
	}
	closes := quotes[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil && *closes[i] > 0 {
			return *closes[i], true
		}
	}
	return 0, false
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
