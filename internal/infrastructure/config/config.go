package config

import (
	"time"

	"coin-dashboard-service/internal/domain/entities"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Freshness   FreshnessConfig   `yaml:"freshness" mapstructure:"freshness"`
	Upstream    UpstreamConfig    `yaml:"upstream" mapstructure:"upstream"`
	Dashboard   DashboardConfig   `yaml:"dashboard" mapstructure:"dashboard"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Development DevelopmentConfig `yaml:"development" mapstructure:"development"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// StoreConfig selects and configures the durable key/value backend
type StoreConfig struct {
	Backend   string       `yaml:"backend" mapstructure:"backend"`
	Namespace string       `yaml:"namespace" mapstructure:"namespace"`
	Redis     RedisConfig  `yaml:"redis" mapstructure:"redis"`
	SQLite    SQLiteConfig `yaml:"sqlite" mapstructure:"sqlite"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	Addr            string `yaml:"addr" mapstructure:"addr"`
	Password        string `yaml:"password" mapstructure:"password"`
	DB              int    `yaml:"db" mapstructure:"db"`
	ConnectAttempts uint   `yaml:"connect_attempts" mapstructure:"connect_attempts"`
}

// SQLiteConfig contains SQLite-specific configuration
type SQLiteConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// FreshnessConfig holds the proactive-use window of each query kind
type FreshnessConfig struct {
	MarketPage time.Duration `yaml:"market_page" mapstructure:"market_page"`
	Ticker     time.Duration `yaml:"ticker" mapstructure:"ticker"`
	Trending   time.Duration `yaml:"trending" mapstructure:"trending"`
	CoinDetail time.Duration `yaml:"coin_detail" mapstructure:"coin_detail"`
	Chart      time.Duration `yaml:"chart" mapstructure:"chart"`
	Favorites  time.Duration `yaml:"favorites" mapstructure:"favorites"`
}

// Windows converts the configuration into per-kind windows
func (f FreshnessConfig) Windows() entities.FreshnessWindows {
	return entities.FreshnessWindows{
		entities.KindMarketPage: f.MarketPage,
		entities.KindTicker:     f.Ticker,
		entities.KindTrending:   f.Trending,
		entities.KindCoinDetail: f.CoinDetail,
		entities.KindChart:      f.Chart,
		entities.KindFavorites:  f.Favorites,
	}
}

// UpstreamConfig contains market data provider configuration
type UpstreamConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// DashboardConfig contains the defaults of the dashboard session
type DashboardConfig struct {
	DefaultCurrency  string        `yaml:"default_currency" mapstructure:"default_currency"`
	Currencies       []string      `yaml:"currencies" mapstructure:"currencies"`
	PerPage          int           `yaml:"per_page" mapstructure:"per_page"`
	TickerSize       int           `yaml:"ticker_size" mapstructure:"ticker_size"`
	SearchLimit      int           `yaml:"search_limit" mapstructure:"search_limit"`
	FeaturedInterval time.Duration `yaml:"featured_interval" mapstructure:"featured_interval"`
	FeaturedSize     int           `yaml:"featured_size" mapstructure:"featured_size"`
}

// RateLimitConfig contains inbound rate limiting configuration
type RateLimitConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	Capacity   int  `yaml:"capacity" mapstructure:"capacity"`
	RefillRate int  `yaml:"refill_rate" mapstructure:"refill_rate"`
}

// LoggingConfig contains logging system configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DevelopmentConfig contiene configuraciones para desarrollo y testing
type DevelopmentConfig struct {
	MockMode  bool `yaml:"mock_mode" mapstructure:"mock_mode"`
	DebugMode bool `yaml:"debug_mode" mapstructure:"debug_mode"`
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend:   "memory",
			Namespace: "coin_dash:",
			Redis: RedisConfig{
				Addr:            "localhost:6379",
				Password:        "",
				DB:              0,
				ConnectAttempts: 3,
			},
			SQLite: SQLiteConfig{
				Path: "data/coin-dashboard.db",
			},
		},
		Freshness: FreshnessConfig{
			MarketPage: 2 * time.Minute,
			Ticker:     5 * time.Minute,
			Trending:   15 * time.Minute,
			CoinDetail: 5 * time.Minute,
			Chart:      10 * time.Minute,
			Favorites:  5 * time.Minute,
		},
		Upstream: UpstreamConfig{
			BaseURL:           "https://api.coingecko.com/api/v3",
			Timeout:           10 * time.Second,
			RequestsPerMinute: 30,
			Burst:             10,
		},
		Dashboard: DashboardConfig{
			DefaultCurrency:  "usd",
			Currencies:       []string{"usd", "mxn", "eur"},
			PerPage:          10,
			TickerSize:       50,
			SearchLimit:      10,
			FeaturedInterval: 4 * time.Second,
			FeaturedSize:     3,
		},
		RateLimit: RateLimitConfig{
			Enabled:    true,
			Capacity:   100,
			RefillRate: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Development: DevelopmentConfig{
			MockMode:  false,
			DebugMode: false,
		},
	}
}
