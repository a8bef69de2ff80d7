package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"StockPulse/pkg/util"
)

// Duration is a time.Duration that unmarshals from the Go duration string
// form ("10s", "5m") used in the YAML file.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	td, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(td)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int      `yaml:"port"`
		ReadTimeout     Duration `yaml:"read_timeout"`
		WriteTimeout    Duration `yaml:"write_timeout"`
		ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	AlphaVantage struct {
		APIKey           string   `yaml:"api_key"`
		BaseURL          string   `yaml:"base_url"`
		Timeout          Duration `yaml:"timeout"`
		RateCapacity     float64  `yaml:"rate_capacity"`
		RateRefillPerSec float64  `yaml:"rate_refill_per_sec"`
		OverviewSymbols  []string `yaml:"overview_symbols"`
	} `yaml:"alphavantage"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		MemoryMaxSize int `yaml:"memory_max_size"`
		TTL           struct {
			Quote    Duration `yaml:"quote"`
			Chart    Duration `yaml:"chart"`
			Search   Duration `yaml:"search"`
			Overview Duration `yaml:"overview"`
		} `yaml:"ttl"`
		FreshWindow Duration `yaml:"fresh_window"` // durable tier staleness window
	} `yaml:"cache"`
	Postgres struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		DBName   string `yaml:"dbname"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"postgres"`
	Archive struct {
		Backend string `yaml:"backend"` // clickhouse, kafka, or none
	} `yaml:"archive"`
	ClickHouse struct {
		Host         string   `yaml:"host"`
		Port         int      `yaml:"port"`
		Database     string   `yaml:"database"`
		User         string   `yaml:"user"`
		Password     string   `yaml:"password"`
		UseHTTP      bool     `yaml:"use_http"`
		AsyncInsert  bool     `yaml:"async_insert"`
		WaitForAsync bool     `yaml:"wait_for_async_insert"`
		DialTimeout  Duration `yaml:"dial_timeout"`
		ReadTimeout  Duration `yaml:"read_timeout"`
		WriteTimeout Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		LogTopic     string   `yaml:"log_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		GroupID      string   `yaml:"group_id"`
	} `yaml:"kafka"`
	Stream struct {
		Enabled        bool     `yaml:"enabled"`
		APIKey         string   `yaml:"api_key"`
		WebSocketURL   string   `yaml:"websocket_url"`
		Symbols        []string `yaml:"symbols"`
		ReconnectDelay Duration `yaml:"reconnect_delay"`
		PingInterval   Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Auth struct {
		JWTSecret string   `yaml:"jwt_secret"`
		TokenTTL  Duration `yaml:"token_ttl"`
	} `yaml:"auth"`
	Watchlist struct {
		MaxSize int `yaml:"max_size"`
	} `yaml:"watchlist"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	return &c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables
// and validates the result. Validation runs after the overrides so secrets
// may come from the environment alone.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("OVERVIEW_SYMBOLS"); v != "" {
		c.AlphaVantage.OverviewSymbols = strings.Split(v, ",")
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		// DSN override wins over individual fields; parsed by pkg/postgres.
		c.Postgres.Host = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ARCHIVE_BACKEND"); v != "" {
		c.Archive.Backend = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Stream.APIKey = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = Duration(10 * time.Second)
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.AlphaVantage.BaseURL == "" {
		c.AlphaVantage.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.AlphaVantage.Timeout <= 0 {
		c.AlphaVantage.Timeout = Duration(10 * time.Second)
	}
	if c.AlphaVantage.RateCapacity <= 0 {
		c.AlphaVantage.RateCapacity = 5
	}
	if c.AlphaVantage.RateRefillPerSec <= 0 {
		c.AlphaVantage.RateRefillPerSec = 5.0 / 60.0 // free tier: 5 calls per minute
	}
	if c.Cache.TTL.Quote <= 0 {
		c.Cache.TTL.Quote = Duration(time.Minute)
	}
	if c.Cache.TTL.Chart <= 0 {
		c.Cache.TTL.Chart = Duration(30 * time.Minute)
	}
	if c.Cache.TTL.Search <= 0 {
		c.Cache.TTL.Search = Duration(time.Hour)
	}
	if c.Cache.TTL.Overview <= 0 {
		c.Cache.TTL.Overview = Duration(5 * time.Minute)
	}
	if c.Cache.FreshWindow <= 0 {
		c.Cache.FreshWindow = Duration(5 * time.Minute)
	}
	if c.Cache.MemoryMaxSize <= 0 {
		c.Cache.MemoryMaxSize = 1000
	}
	if c.Watchlist.MaxSize <= 0 {
		c.Watchlist.MaxSize = 50
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = Duration(time.Hour)
	}
	if c.Stream.ReconnectDelay <= 0 {
		c.Stream.ReconnectDelay = Duration(5 * time.Second)
	}
	if c.Stream.PingInterval <= 0 {
		c.Stream.PingInterval = Duration(20 * time.Second)
	}
	if c.Archive.Backend == "" {
		c.Archive.Backend = "none"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.AlphaVantage.APIKey == "" {
		return fmt.Errorf("alphavantage.api_key is required")
	}
	switch c.Archive.Backend {
	case "clickhouse", "kafka", "none":
	default:
		return fmt.Errorf("archive.backend must be 'clickhouse', 'kafka' or 'none', got '%s'", c.Archive.Backend)
	}
	if c.Archive.Backend == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when archive.backend is kafka")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Stream.Enabled && c.Stream.APIKey == "" {
		return fmt.Errorf("stream.api_key required when stream.enabled")
	}
	return nil
}
