package postgres

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Client wraps the gorm connection to the durable store.
type Client struct {
	DB *gorm.DB
}

// Config holds Postgres connection settings. Host may also carry a full
// DSN (postgres://...) from an environment override.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the connection string.
func (c Config) DSN() string {
	if strings.HasPrefix(c.Host, "postgres://") || strings.HasPrefix(c.Host, "postgresql://") {
		return c.Host
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslmode)
}

// NewClient connects to Postgres.
func NewClient(cfg Config) (*Client, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &Client{DB: db}, nil
}

// AutoMigrate runs gorm migrations for the given models.
func (p *Client) AutoMigrate(models ...interface{}) error {
	if err := p.DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Health pings the underlying connection.
func (p *Client) Health(ctx context.Context) error {
	db, err := p.DB.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close closes the connection pool.
func (p *Client) Close() error {
	db, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("retrieve raw DB: %w", err)
	}
	return db.Close()
}
