package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Settlement model names accepted for trading.model.
const (
	ModelFixed  = "fixed"
	ModelPriced = "priced"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
	Market   Market   `mapstructure:"market"`
	Trading  Trading  `mapstructure:"trading"`
}

// Server holds the configuration for the HTTP server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Symbol describes one quotable instrument. Source is either "real"
// (fetched from the market-data provider) or "synthetic" (generated
// in-process as Base plus a uniform draw from [-Spread, +Spread]).
type Symbol struct {
	Key      string  `mapstructure:"key"`
	Symbol   string  `mapstructure:"symbol"`
	Name     string  `mapstructure:"name"`
	Currency string  `mapstructure:"currency"`
	Source   string  `mapstructure:"source"`
	Base     float64 `mapstructure:"base"`
	Spread   float64 `mapstructure:"spread"`
	Note     string  `mapstructure:"note"`
}

// Market holds the configuration for price resolution.
type Market struct {
	Symbols        []Symbol `mapstructure:"symbols"`
	QuoteTimeout   int      `mapstructure:"quote_timeout"` // seconds
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
}

// Trading holds the settlement policy configuration.
type Trading struct {
	Model           string  `mapstructure:"model"`
	StartingBalance float64 `mapstructure:"starting_balance"`
	BuyGain         float64 `mapstructure:"buy_gain"`
	SellLoss        float64 `mapstructure:"sell_loss"`
	FailFloorRatio  float64 `mapstructure:"fail_floor_ratio"`
	PassTargetRatio float64 `mapstructure:"pass_target_ratio"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("database.dsn", "trades.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("market.quote_timeout", 10)   // seconds
	viper.SetDefault("market.rate_limit", 5)       // requests per second
	viper.SetDefault("market.rate_limit_burst", 2) // burst size
	viper.SetDefault("trading.model", ModelFixed)
	viper.SetDefault("trading.starting_balance", 5000.00)
	viper.SetDefault("trading.buy_gain", 150.00)
	viper.SetDefault("trading.sell_loss", 200.00)
	viper.SetDefault("trading.fail_floor_ratio", 0.95)
	viper.SetDefault("trading.pass_target_ratio", 1.10)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
