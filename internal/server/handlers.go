package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradesense/internal/models"
	"tradesense/internal/pricing"
	"tradesense/internal/service"
	"tradesense/internal/settlement"
)

// Handler holds dependencies for the API endpoints.
type Handler struct {
	logger  *zap.Logger
	service *service.TradeService
}

// NewHandler creates a new Handler.
func NewHandler(logger *zap.Logger, svc *service.TradeService) *Handler {
	return &Handler{logger: logger, service: svc}
}

// tradeBody is the submit-trade request payload. Price and quantity are
// optional and only honored by the priced settlement model.
type tradeBody struct {
	Symbol   string           `json:"symbol"`
	Action   string           `json:"action"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *decimal.Decimal `json:"quantity"`
}

func accountFields(account models.Account) gin.H {
	return gin.H{
		"balance": account.Balance,
		"equity":  account.Equity,
		"status":  account.Status,
	}
}

// MarketData returns quotes for all configured symbols plus the current
// account state.
func (h *Handler) MarketData(c *gin.Context) {
	snapshot, err := h.service.MarketSnapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("Market snapshot failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	account, err := h.service.Balance()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snapshot,
		"account": accountFields(account),
	})
}

// SubmitTrade settles one trade against the account.
func (h *Handler) SubmitTrade(c *gin.Context) {
	var body tradeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := h.service.SubmitTrade(c.Request.Context(), service.TradeRequest{
		Symbol:   body.Symbol,
		Action:   body.Action,
		Price:    body.Price,
		Quantity: body.Quantity,
	})

	switch {
	case err == nil:
		resp := accountFields(result.Account)
		resp["success"] = true
		resp["trade"] = result.Trade
		c.JSON(http.StatusOK, resp)

	case errors.Is(err, settlement.ErrAccountInactive),
		errors.Is(err, settlement.ErrInsufficientBalance):
		// Business-rule rejections return the current state, not an error
		// status; the account is simply not tradable.
		resp := accountFields(result.Account)
		resp["success"] = false
		resp["error"] = err.Error()
		c.JSON(http.StatusOK, resp)

	case errors.Is(err, settlement.ErrInvalidAction),
		errors.Is(err, settlement.ErrMissingSymbol),
		errors.Is(err, settlement.ErrInvalidQuantity),
		errors.Is(err, settlement.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})

	case errors.Is(err, pricing.ErrQuoteUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})

	default:
		h.logger.Error("Trade submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to submit trade"})
	}
}

// Balance returns the current account state.
func (h *Handler) Balance(c *gin.Context) {
	account, err := h.service.Balance()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	resp := accountFields(account)
	resp["success"] = true
	c.JSON(http.StatusOK, resp)
}

// Trades returns the trade history in insertion order.
func (h *Handler) Trades(c *gin.Context) {
	trades, err := h.service.Trades()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "trades": trades})
}

// Reset restores the account to its starting state.
func (h *Handler) Reset(c *gin.Context) {
	account, err := h.service.Reset()
	if err != nil {
		h.logger.Error("Reset failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to reset account"})
		return
	}

	resp := accountFields(account)
	resp["success"] = true
	c.JSON(http.StatusOK, resp)
}

// Health is a liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
