package config

import (
	"time"

	"golang-paper-trader/pkg/config"
)

// Simulation holds the paper-trading rules.
type Simulation struct {
	OpeningCash       string        `mapstructure:"opening_cash"`
	FeeRate           string        `mapstructure:"fee_rate"`
	MinFee            string        `mapstructure:"min_fee"`
	RecentTradesLimit int           `mapstructure:"recent_trades_limit"`
	OrderTimeout      time.Duration `mapstructure:"order_timeout"`
}

// YahooFinance holds the configuration for the Yahoo Finance quote API.
type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// TradeEvents holds the settings of the trade stream consumer.
type TradeEvents struct {
	ConsumerName   string        `mapstructure:"consumer_name"`
	BatchSize      int64         `mapstructure:"batch_size"`
	Block          time.Duration `mapstructure:"block"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
	RetryInterval  time.Duration `mapstructure:"retry_interval"`
	MaxIdle        time.Duration `mapstructure:"max_idle"`
}

// Config holds the full configuration for the simulation service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	Simulation   Simulation      `mapstructure:"simulation"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	TradeEvents  TradeEvents     `mapstructure:"trade_events"`
}

var defaults = map[string]interface{}{
	"app.name":                             "simulation-service",
	"logger.level":                         "info",
	"logger.encoding":                      "json",
	"database.driver":                      "postgres",
	"database.path":                        "simulation.db",
	"database.ssl_mode":                    "disable",
	"api.port":                             5000,
	"redis.stream_max_len":                 10000,
	"simulation.opening_cash":              "10000.00",
	"simulation.fee_rate":                  "0.0005",
	"simulation.min_fee":                   "0.50",
	"simulation.recent_trades_limit":       100,
	"simulation.order_timeout":             "15s",
	"yahoo_finance.base_url":               "https://query1.finance.yahoo.com",
	"yahoo_finance.timeout":                "8s",
	"yahoo_finance.max_request_per_minute": 120,
	"yahoo_finance.cache_ttl":              "5s",
	"trade_events.consumer_name":           "trade-event-consumer-1",
	"trade_events.batch_size":              50,
	"trade_events.block":                   "2s",
	"trade_events.handler_timeout":         "10s",
	"trade_events.retry_interval":          "30s",
	"trade_events.max_idle":                "1m",
}

// Load loads the simulation configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, defaults); err != nil {
		return nil, err
	}
	return &cfg, nil
}
