package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML []byte

const (
	ProviderAlphaVantage = "alphavantage"
	ProviderAlpaca       = "alpaca"
)

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RateLimitConfig struct {
	Capacity int           `yaml:"capacity"`
	Window   time.Duration `yaml:"window"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type MarketConfig struct {
	HistoryProvider    string        `yaml:"history_provider"`
	AlphaVantageURL    string        `yaml:"alphavantage_url"`
	AlphaVantageAPIKey string        `yaml:"alphavantage_api_key"`
	AlpacaAPIKey       string        `yaml:"alpaca_api_key"`
	AlpacaSecretKey    string        `yaml:"alpaca_secret_key"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
}

type SipConfig struct {
	StandardRatePercent float64 `yaml:"standard_rate_percent"`
}

type LogConfig struct {
	Development bool `yaml:"development"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Market    MarketConfig    `yaml:"market"`
	Sip       SipConfig       `yaml:"sip"`
	Log       LogConfig       `yaml:"log"`
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing default config: %w", err)
	}
	return &cfg, nil
}

// Load builds the configuration from the embedded defaults, the optional
// YAML file at path, a .env file in the working directory and the
// process environment, in that order of precedence (last wins).
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HTTP_ADDR":            &c.Server.Addr,
		"ALPHAVANTAGE_API_KEY": &c.Market.AlphaVantageAPIKey,
		"ALPHAVANTAGE_URL":     &c.Market.AlphaVantageURL,
		"ALPACA_API_KEY":       &c.Market.AlpacaAPIKey,
		"ALPACA_SECRET_KEY":    &c.Market.AlpacaSecretKey,
		"MARKET_PROVIDER":      &c.Market.HistoryProvider,
		"REDIS_ADDR":           &c.Redis.Addr,
		"REDIS_PASSWORD":       &c.Redis.Password,
	}
	for name, field := range strs {
		if v, ok := lookup(name); ok {
			*field = v
		}
	}

	if v, ok := lookup("SIP_STANDARD_RATE"); ok {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SIP_STANDARD_RATE: %w", err)
		}
		c.Sip.StandardRatePercent = rate
	}

	if v, ok := lookup("RATE_LIMIT_CAPACITY"); ok {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_CAPACITY: %w", err)
		}
		c.RateLimit.Capacity = capacity
	}

	if v, ok := lookup("LOG_DEVELOPMENT"); ok {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_DEVELOPMENT: %w", err)
		}
		c.Log.Development = dev
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.RateLimit.Capacity <= 0 {
		errs = append(errs, errors.New("rate_limit.capacity must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit.window must be positive"))
	}
	if c.Sip.StandardRatePercent < 0 || math.IsNaN(c.Sip.StandardRatePercent) || math.IsInf(c.Sip.StandardRatePercent, 0) {
		errs = append(errs, errors.New("sip.standard_rate_percent must be a non-negative number"))
	}

	switch c.Market.HistoryProvider {
	case ProviderAlphaVantage:
	case ProviderAlpaca:
		if c.Market.AlpacaAPIKey == "" || c.Market.AlpacaSecretKey == "" {
			errs = append(errs, errors.New("alpaca provider requires ALPACA_API_KEY and ALPACA_SECRET_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown market.history_provider %q", c.Market.HistoryProvider))
	}

	return errors.Join(errs...)
}
