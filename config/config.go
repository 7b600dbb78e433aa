// Package config builds the runtime configuration of the salary service from
// defaults, an optional YAML file, environment variables and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DevSecret is the signing secret used when none is configured. It is refused
// when ENV=production.
const DevSecret = "default-dev-secret-change-me"

// MinBcryptCost is the lowest accepted password hashing cost.
const MinBcryptCost = 10

// Config holds runtime settings for the salary service.
type Config struct {
	Host        string        `yaml:"host"`
	Port        string        `yaml:"port"`
	Env         string        `yaml:"env"`
	DatabaseURL string        `yaml:"database_url"`
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	BcryptCost  int           `yaml:"bcrypt_cost"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	StaticDir   string        `yaml:"static_dir"`

	MetricsEnabled bool `yaml:"metrics_enabled"`

	// Requests per second allowed per client on signup/login; 0 disables.
	AuthRateLimit float64 `yaml:"auth_rate_limit"`
	AuthRateBurst int     `yaml:"auth_rate_burst"`

	NATSURL      string `yaml:"nats_url"`
	NATSEmbedded bool   `yaml:"nats_embedded"`
	NATSPort     int    `yaml:"nats_port"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Host = "0.0.0.0"
	c.Port = "3000"
	c.Env = "development"
	c.DatabaseURL = "sqlite://salary.db"
	c.JWTSecret = DevSecret
	c.TokenTTL = 24 * time.Hour
	c.BcryptCost = MinBcryptCost
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.StaticDir = "public"
	c.MetricsEnabled = true
	c.AuthRateLimit = 5
	c.AuthRateBurst = 10
	c.NATSPort = 4233
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// EventsEnabled reports whether a NATS broker is configured.
func (c *Config) EventsEnabled() bool {
	return c.NATSEmbedded || c.NATSURL != ""
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() && c.JWTSecret == DevSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.BcryptCost < MinBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least %d", MinBcryptCost))
	}
	if c.AuthRateLimit < 0 || c.AuthRateBurst < 0 {
		errs = append(errs, errors.New("auth rate limit must not be negative"))
	}
	return errors.Join(errs...)
}

// Load builds a Config by applying defaults, then a .env file, an optional YAML
// file, environment variables and finally the flags in args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	fs, configFile := newFlagSet(cfg)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	path := *configFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	// Flags win over everything else: parse again on top of the merged values.
	fs, _ = newFlagSet(cfg)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newFlagSet(cfg *Config) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("salary", flag.ContinueOnError)
	configFile := fs.String("config", "", "path to a YAML config file")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "interface to listen on")
	fs.StringVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "database URL (postgres://, mysql://, sqlite://)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "directory with frontend assets")
	return fs, configFile
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	lookupString("HOST", &c.Host)
	lookupString("PORT", &c.Port)
	lookupString("ENV", &c.Env)
	lookupString("DATABASE_URL", &c.DatabaseURL)
	lookupString("JWT_SECRET", &c.JWTSecret)
	lookupString("LOG_LEVEL", &c.LogLevel)
	lookupString("LOG_FORMAT", &c.LogFormat)
	lookupString("STATIC_DIR", &c.StaticDir)
	lookupString("NATS_URL", &c.NATSURL)

	var errs []error
	if v, ok := os.LookupEnv("TOKEN_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
		}
		c.TokenTTL = d
	}
	errs = append(errs,
		lookupInt("BCRYPT_COST", &c.BcryptCost),
		lookupInt("AUTH_RATE_BURST", &c.AuthRateBurst),
		lookupInt("NATS_PORT", &c.NATSPort),
		lookupBool("METRICS_ENABLED", &c.MetricsEnabled),
		lookupBool("NATS_EMBEDDED", &c.NATSEmbedded),
	)
	if v, ok := os.LookupEnv("AUTH_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT: %w", err))
		}
		c.AuthRateLimit = f
	}
	return errors.Join(errs...)
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func lookupBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
