package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loader handles configuration loading using Viper
type Loader struct {
	v          *viper.Viper
	envFile    string
	configFile string
}

// NewLoader creates a new configuration loader instance
func NewLoader() *Loader {
	return &Loader{
		v:       viper.New(),
		envFile: ".env",
	}
}

// WithConfigFile points the loader at an explicit YAML file
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// WithEnvFile changes the dotenv file read before the environment is bound
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Load loads configuration from .env, files and environment variables
func (l *Loader) Load() (*Config, error) {
	// 1. Optional .env file, never overriding variables already set
	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", l.envFile, err)
		}
	}

	// 2. Configure Viper
	l.setupViper()

	// 3. Read configuration
	if err := l.v.ReadInConfig(); err != nil {
		// If config.yaml doesn't exist, use only env vars and defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 4. Unmarshal onto defaults
	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Special cases
	l.overrideWithEnvVars(config)

	return config, nil
}

// setupViper configures Viper to read files and env vars
// SetConfigName borra un SetConfigFile previo, así que el archivo explícito
// reemplaza la búsqueda por nombre en vez de combinarse con ella
func (l *Loader) setupViper() {
	l.v.SetConfigType("yaml")
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName("config")
		l.v.AddConfigPath("./configs")
		l.v.AddConfigPath("../configs")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("/etc/coin-dashboard")
	}

	l.v.AutomaticEnv()
	l.v.SetEnvPrefix("COIN_DASH") // COIN_DASH_SERVER_PORT
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l.bindEnvVars()
}

// bindEnvVars maps short environment variables to configuration keys
func (l *Loader) bindEnvVars() {
	envMappings := map[string]string{
		"server.port":                 "PORT",
		"store.backend":               "STORE_BACKEND",
		"store.redis.addr":            "REDIS_ADDR",
		"store.redis.password":        "REDIS_PASSWORD",
		"store.redis.db":              "REDIS_DB",
		"store.sqlite.path":           "SQLITE_PATH",
		"upstream.base_url":           "COINGECKO_BASE_URL",
		"upstream.timeout":            "COINGECKO_TIMEOUT",
		"dashboard.default_currency":  "DEFAULT_CURRENCY",
		"logging.level":               "LOG_LEVEL",
		"logging.format":              "LOG_FORMAT",
		"rate_limit.enabled":          "RATE_LIMIT_ENABLED",
		"rate_limit.capacity":         "RATE_LIMIT_CAPACITY",
		"rate_limit.refill_rate":      "RATE_LIMIT_REFILL_RATE",
		"development.mock_mode":       "MOCK_MODE",
		"dashboard.featured_interval": "FEATURED_INTERVAL",
	}

	for configKey, envVar := range envMappings {
		_ = l.v.BindEnv(configKey, envVar)
	}
}

// overrideWithEnvVars maneja casos especiales de env vars
func (l *Loader) overrideWithEnvVars(config *Config) {
	// CURRENCIES como string separado por comas
	if currenciesEnv := os.Getenv("CURRENCIES"); currenciesEnv != "" {
		var clean []string
		for _, c := range strings.Split(currenciesEnv, ",") {
			c = strings.ToLower(strings.TrimSpace(c))
			if c != "" {
				clean = append(clean, c)
			}
		}
		if len(clean) > 0 {
			config.Dashboard.Currencies = clean
		}
	}

	config.Dashboard.DefaultCurrency = strings.ToLower(config.Dashboard.DefaultCurrency)

	if debugMode := os.Getenv("DEBUG_MODE"); debugMode == "true" || debugMode == "1" {
		config.Development.DebugMode = true
	}
}

// GetEnvironment determina el entorno actual desde ENV vars
func GetEnvironment() string {
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	if env == "" {
		env = "development"
	}
	return env
}
