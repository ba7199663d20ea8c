package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/env"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Locale  LocaleConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	cfg.Session.TokenFile = env.ExpandHome(cfg.Session.TokenFile)
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PHARMACY_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"PHARMACY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHARMACY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the pharmacy REST API.
type APIConfig struct {
	BaseURL     string        `envconfig:"PHARMACY_API_BASE_URL" default:"https://pharmacy-web-server.onrender.com"`
	Timeout     time.Duration `envconfig:"PHARMACY_API_TIMEOUT" default:"15s"`
	TokenHeader string        `envconfig:"PHARMACY_API_TOKEN_HEADER" default:"x-access-token"`
	MaxUploadMB int           `envconfig:"PHARMACY_API_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes returns the upload ceiling in bytes.
func (a APIConfig) MaxUploadBytes() int64 {
	if a.MaxUploadMB <= 0 {
		return 0
	}
	return int64(a.MaxUploadMB) << 20
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(a.BaseURL))
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", EnvAPIBaseURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", EnvAPIBaseURL)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvAPITimeout)
	}
	if strings.TrimSpace(a.TokenHeader) == "" {
		return fmt.Errorf("%s must not be empty", EnvAPITokenHeader)
	}
	return nil
}

// SessionConfig controls where the access token lives between runs.
type SessionConfig struct {
	TokenFile string        `envconfig:"PHARMACY_SESSION_TOKEN_FILE" default:"~/.pharmacyctl/access_token"`
	Terminal  string        `envconfig:"PHARMACY_SESSION_TERMINAL" default:"default"`
	TTL       time.Duration `envconfig:"PHARMACY_SESSION_TTL" default:"12h"`
}

// RedisConfig is optional; when URL and Address are empty tokens stay on disk.
type RedisConfig struct {
	URL          string        `envconfig:"PHARMACY_REDIS_URL"`
	Address      string        `envconfig:"PHARMACY_REDIS_ADDR"`
	Password     string        `envconfig:"PHARMACY_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHARMACY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHARMACY_REDIS_POOL_SIZE" default:"4"`
	DialTimeout  time.Duration `envconfig:"PHARMACY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHARMACY_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"PHARMACY_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a shared token store was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type LocaleConfig struct {
	CurrencySymbol string `envconfig:"PHARMACY_CURRENCY_SYMBOL" default:"Kz"`
}
