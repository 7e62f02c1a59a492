package config

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"
)

var currencyCode = regexp.MustCompile(`^[a-z]{3}$`)

var (
	storeBackends = []string{"memory", "redis", "sqlite"}
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"json", "text"}
)

// Validator rechaza configuraciones con las que el servicio no puede arrancar
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate corre las secciones en orden y corta en el primer error
func (v *Validator) Validate(config *Config) error {
	sections := []struct {
		name  string
		check func() error
	}{
		{"server", func() error { return v.validateServer(config.Server) }},
		{"store", func() error { return v.validateStore(config.Store) }},
		{"freshness", func() error { return v.validateFreshness(config.Freshness) }},
		{"upstream", func() error { return v.validateUpstream(config.Upstream) }},
		{"dashboard", func() error { return v.validateDashboard(config.Dashboard) }},
		{"rate limit", func() error { return v.validateRateLimit(config.RateLimit) }},
		{"logging", func() error { return v.validateLogging(config.Logging) }},
	}
	for _, s := range sections {
		if err := s.check(); err != nil {
			return fmt.Errorf("%s config validation failed: %w", s.name, err)
		}
	}
	return nil
}

// inRange: lo <= got <= hi
func inRange[T int | uint | time.Duration](field string, got, lo, hi T) error {
	if got < lo || got > hi {
		return fmt.Errorf("%s must be between %v-%v, got: %v", field, lo, hi, got)
	}
	return nil
}

func oneOf(field, got string, allowed []string) error {
	if !slices.Contains(allowed, strings.ToLower(got)) {
		return fmt.Errorf("invalid %s: %s, must be one of: %v", field, got, allowed)
	}
	return nil
}

func (v *Validator) validateServer(config ServerConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d, must be between 1-65535", config.Port)
	}
	return inRange("shutdown_timeout", config.ShutdownTimeout, time.Millisecond, 5*time.Minute)
}

func (v *Validator) validateStore(config StoreConfig) error {
	if err := oneOf("store backend", config.Backend, storeBackends); err != nil {
		return err
	}

	switch strings.ToLower(config.Backend) {
	case "redis":
		r := config.Redis
		if _, _, ok := strings.Cut(r.Addr, ":"); !ok {
			return fmt.Errorf("invalid redis addr %q, expected host:port", r.Addr)
		}
		if err := inRange("redis db", r.DB, 0, 15); err != nil {
			return err
		}
		return inRange("redis connect_attempts", r.ConnectAttempts, 1, 10)
	case "sqlite":
		if strings.TrimSpace(config.SQLite.Path) == "" {
			return fmt.Errorf("sqlite path cannot be empty")
		}
	}
	return nil
}

// validateFreshness: cada ventana en (0, 24h]
func (v *Validator) validateFreshness(config FreshnessConfig) error {
	for kind, window := range config.Windows() {
		name := strings.ToLower(string(kind))
		if window <= 0 {
			return fmt.Errorf("%s window must be positive, got: %v", name, window)
		}
		if window > 24*time.Hour {
			return fmt.Errorf("%s window too long: %v, max 24 hours", name, window)
		}
	}
	return nil
}

func (v *Validator) validateUpstream(config UpstreamConfig) error {
	if err := validateHTTPURL("upstream base_url", config.BaseURL); err != nil {
		return err
	}
	if config.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got: %v", config.Timeout)
	}
	if err := inRange("upstream timeout", config.Timeout, time.Millisecond, 2*time.Minute); err != nil {
		return err
	}
	if config.RequestsPerMinute <= 0 || config.Burst <= 0 {
		return fmt.Errorf("upstream requests_per_minute and burst must be positive, got: %d/%d",
			config.RequestsPerMinute, config.Burst)
	}
	return nil
}

func (v *Validator) validateDashboard(config DashboardConfig) error {
	if len(config.Currencies) == 0 {
		return fmt.Errorf("currencies cannot be empty")
	}
	for _, c := range config.Currencies {
		if !currencyCode.MatchString(c) {
			return fmt.Errorf("invalid currency: %q, expected a lowercase 3-letter code", c)
		}
	}
	if !slices.Contains(config.Currencies, config.DefaultCurrency) {
		return fmt.Errorf("default_currency %q must be one of: %v", config.DefaultCurrency, config.Currencies)
	}

	for _, check := range []error{
		inRange("per_page", config.PerPage, 1, 250),
		inRange("ticker_size", config.TickerSize, 1, 250),
		inRange("search_limit", config.SearchLimit, 1, 250),
		inRange("featured_size", config.FeaturedSize, 1, 50),
	} {
		if check != nil {
			return check
		}
	}

	if config.FeaturedInterval < 100*time.Millisecond {
		return fmt.Errorf("featured_interval too short: %v, min 100ms", config.FeaturedInterval)
	}
	return nil
}

// validateRateLimit solo aplica con el limitador habilitado
func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if !config.Enabled {
		return nil
	}
	if err := inRange("rate_limit capacity", config.Capacity, 1, 10000); err != nil {
		return err
	}
	return inRange("rate_limit refill_rate", config.RefillRate, 1, 1000)
}

func (v *Validator) validateLogging(config LoggingConfig) error {
	if err := oneOf("log level", config.Level, logLevels); err != nil {
		return err
	}
	return oneOf("log format", config.Format, logFormats)
}

func validateHTTPURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s scheme %q, must be http or https", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must have a host", field)
	}
	return nil
}
