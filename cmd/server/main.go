package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradesense/internal/config"
	"tradesense/internal/database"
	"tradesense/internal/ledger"
	"tradesense/internal/logger"
	"tradesense/internal/pricing"
	"tradesense/internal/server"
	"tradesense/internal/service"
	"tradesense/internal/settlement"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// API responses carry monetary values as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database and seed the account row
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Wire price sources: real feed behind a rate limiter, synthetic for
	// everything else.
	realFeed := pricing.NewRestClient(&cfg.Market, log)
	synthetic := pricing.NewSynthetic(cfg.Market.Symbols, rand.New(rand.NewSource(time.Now().UnixNano())))
	prices := pricing.NewRouter(realFeed, synthetic, cfg.Market.Symbols)

	store := ledger.NewStore(db)
	engine := settlement.NewEngine(&cfg.Trading)
	svc := service.NewTradeService(log, &cfg, store, engine, prices)

	handler := server.NewHandler(log, svc)
	router := server.NewRouter(log, handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("Starting server", zap.String("address", addr), zap.String("model", cfg.Trading.Model))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for a shutdown signal
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
