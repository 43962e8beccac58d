package server

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with logging, recovery, and CORS
// middleware and wires the API routes.
func NewRouter(logger *zap.Logger, handler *Handler) *gin.Engine {
	router := gin.New()

	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	// Allow all origins; can be restricted to the frontend origin if needed.
	router.Use(cors.Default())

	router.GET("/market-data", handler.MarketData)
	router.POST("/submit-trade", handler.SubmitTrade)
	router.GET("/balance", handler.Balance)
	router.GET("/trades", handler.Trades)
	router.POST("/reset", handler.Reset)
	router.GET("/health", handler.Health)

	return router
}
