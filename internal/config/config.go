package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

// ConfigPathEnv names the variable holding the YAML config path
const ConfigPathEnv = "WALLETFX_CONFIG_PATH"

// Rate store kinds
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	Env        string `yaml:"env" env:"WALLETFX_ENV" env-default:"local"`
	GRPCServer `yaml:"grpc_server"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Redis      `yaml:"redis"`
	FastForex  `yaml:"fastforex"`
	Currencies `yaml:"currencies"`
	Quotes     `yaml:"quotes"`
	Rates      `yaml:"rates"`
	LogConfig  `yaml:"log_config"`
}

type GRPCServer struct {
	Host     string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"GRPC_PORT" env-default:"8080"`
	APIToken string `yaml:"api_token" env:"API_TOKEN" env-default:"dev-token"`
}

type HTTPServer struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"9090"`
}

type Database struct {
	Dsn string `yaml:"dsn" env:"DB_CONN_STR" env-default:"host=localhost port=5432 user=postgres password=postgres dbname=walletfx sslmode=disable"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type FastForex struct {
	APIKey  string        `yaml:"api_key" env:"FASTFOREX_API_KEY"`
	BaseURL string        `yaml:"base_url" env:"FASTFOREX_BASE_URL" env-default:"https://api.fastforex.io"`
	Timeout time.Duration `yaml:"timeout" env:"FASTFOREX_TIMEOUT" env-default:"15s"`
}

type Currencies struct {
	Base    string            `yaml:"base" env:"BASE_CURRENCY" env-default:"USD"`
	Peg     string            `yaml:"peg" env:"PEG_CURRENCY" env-default:"USDx"`
	Mapping map[string]string `yaml:"mapping" env:"CURRENCY_MAPPING" env-default:"cNGN:NGN,cXAF:XAF,USDx:USD,EURx:EUR,cGHS:GHS,cKES:KES"`
}

type Quotes struct {
	QuietWindow time.Duration `yaml:"quiet_window" env:"QUOTE_QUIET_WINDOW" env-default:"300ms"`
	Timeout     time.Duration `yaml:"timeout" env:"QUOTE_TIMEOUT" env-default:"10s"`
}

type Rates struct {
	Store           string            `yaml:"store" env:"RATE_STORE" env-default:"postgres"`
	MaxAge          time.Duration     `yaml:"max_age" env:"RATE_MAX_AGE" env-default:"24h"`
	RefreshInterval time.Duration     `yaml:"refresh_interval" env:"RATE_REFRESH_INTERVAL" env-default:"1h"`
	Fallback        map[string]string `yaml:"fallback" env:"FALLBACK_RATES" env-default:"NGN:1550,XAF:606,EUR:0.92,GHS:15.2,KES:129.5"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
}

// Load reads .env (when present), then the YAML file at path, then environment overrides.
// An empty path reads the environment only.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, errors.Wrap(err, "failed to read config from environment")
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrap(err, "failed to find config file")
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad loads the config from the path in WALLETFX_CONFIG_PATH and panics on failure
func MustLoad() *Config {
	cfg, err := Load(os.Getenv(ConfigPathEnv))
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the settings that have no usable default
func (c *Config) Validate() error {
	switch c.Rates.Store {
	case StorePostgres, StoreRedis, StoreMemory:
	default:
		return errors.Errorf("unknown rate store %q", c.Rates.Store)
	}
	if c.Quotes.QuietWindow <= 0 {
		return errors.New("quotes.quiet_window must be positive")
	}
	if c.Quotes.Timeout <= 0 {
		return errors.New("quotes.timeout must be positive")
	}
	if c.Rates.RefreshInterval <= 0 {
		return errors.New("rates.refresh_interval must be positive")
	}
	if _, err := c.CurrencyMapping(); err != nil {
		return err
	}
	if _, err := c.FallbackRates(time.Time{}); err != nil {
		return err
	}
	return nil
}

// CurrencyMapping builds the validated wallet-to-market mapping
func (c *Config) CurrencyMapping() (*domain.CurrencyMapping, error) {
	mapping := make(map[domain.CurrencyCode]domain.CurrencyCode, len(c.Currencies.Mapping))
	for wallet, market := range c.Currencies.Mapping {
		mapping[domain.CurrencyCode(wallet)] = domain.CurrencyCode(market)
	}

	m, err := domain.NewCurrencyMapping(domain.CurrencyCode(c.Currencies.Base), domain.CurrencyCode(c.Currencies.Peg), mapping)
	if err != nil {
		return nil, errors.Wrap(err, "invalid currency mapping")
	}
	return m, nil
}

// FallbackRates builds the rate table served when no fetched or stored rates exist.
// Returns nil when no fallback rates are configured.
func (c *Config) FallbackRates(updatedAt time.Time) (*domain.RateTable, error) {
	if len(c.Rates.Fallback) == 0 {
		return nil, nil
	}

	rates := make(map[domain.CurrencyCode]decimal.Decimal, len(c.Rates.Fallback))
	for code, raw := range c.Rates.Fallback {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid fallback rate for %s", code)
		}
		rates[domain.CurrencyCode(code)] = rate
	}
	return domain.NewRateTable(domain.CurrencyCode(c.Currencies.Base), rates, updatedAt), nil
}

// GRPCAddr returns host:port for the gRPC listener
func (c *Config) GRPCAddr() string {
	return c.GRPCServer.Host + ":" + c.GRPCServer.Port
}

// HTTPAddr returns host:port for the ops HTTP listener
func (c *Config) HTTPAddr() string {
	return c.HTTPServer.Host + ":" + c.HTTPServer.Port
}
