// Package sqldb opens the screening database. Two drivers are supported:
// the embedded pure-Go sqlite driver for single-node deployments and lib/pq
// for a shared Postgres instance.
package sqldb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver names accepted in configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection configuration.
type Config struct {
	Driver string

	// sqlite
	Path string

	// postgres
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Client wraps the database handle.
type Client struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewClient connects to the configured database and verifies the connection.
func NewClient(config *Config, logger *slog.Logger) (*Client, error) {
	var driver, dsn string

	switch config.Driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		dsn = config.Path
		if dsn == "" {
			dsn = "screener.db"
		}
	case DriverPostgres:
		driver = DriverPostgres
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			config.Host, config.Port, config.User, config.Password,
			config.Database, config.SSLMode,
		)
	default:
		return nil, fmt.Errorf("unknown database driver %q", config.Driver)
	}

	logger.Info("Connecting to database",
		slog.String("driver", driver),
	)

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// The sqlite driver serializes writers; a single connection avoids
		// SQLITE_BUSY under the parallel document workers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(config.MaxOpenConns)
		db.SetMaxIdleConns(config.MaxIdleConns)
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
		db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		slog.String("driver", driver),
	)

	return &Client{db: db, logger: logger}, nil
}

// DB returns the underlying sqlx handle.
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Close closes the database connection.
func (c *Client) Close() error {
	c.logger.Info("Closing database connection")
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// HealthCheck verifies the database responds to a trivial query.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var result int
	if err := c.db.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
