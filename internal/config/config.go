package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Upload   UploadConfig   `yaml:"upload"`
	Worker   WorkerConfig   `yaml:"worker"`
	Logging  LoggingConfig  `yaml:"logging"`
	App      AppConfig      `yaml:"app"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// DatabaseConfig holds database connection configuration. Driver selects
// between the embedded sqlite database and Postgres.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Path            string        `yaml:"path"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// ScoringConfig holds remote scoring service configuration. An empty
// base_url disables the remote strategy and runs keyword scoring only.
type ScoringConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	APIKey         string        `yaml:"api_key"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxJDChars     int           `yaml:"max_jd_chars"`
	MaxResumeChars int           `yaml:"max_resume_chars"`
}

// UploadConfig bounds job submissions
type UploadConfig struct {
	MaxFiles int `yaml:"max_files"`
}

// WorkerConfig holds per-job processing configuration
type WorkerConfig struct {
	Concurrency        int `yaml:"concurrency"`
	ScoringConcurrency int `yaml:"scoring_concurrency"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// Load reads and parses the configuration file, then applies environment
// overrides. The scoring API key is never kept in the YAML file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if key := os.Getenv("SCORING_API_KEY"); key != "" {
		config.Scoring.APIKey = key
	}
	if url := os.Getenv("SCORING_BASE_URL"); url != "" {
		config.Scoring.BaseURL = url
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Upload.MaxFiles <= 0 {
		c.Upload.MaxFiles = 20
	}
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = 4
	}
	if c.Worker.ScoringConcurrency <= 0 {
		c.Worker.ScoringConcurrency = 2
	}
	if c.Scoring.Timeout <= 0 {
		c.Scoring.Timeout = 30 * time.Second
	}
	if c.Scoring.MaxJDChars <= 0 {
		c.Scoring.MaxJDChars = 1500
	}
	if c.Scoring.MaxResumeChars <= 0 {
		c.Scoring.MaxResumeChars = 3000
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	switch c.Database.Driver {
	case "", "sqlite":
		// path defaults inside the db client
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for postgres")
		}
		if c.Database.Port < MinPort || c.Database.Port > MaxPort {
			return fmt.Errorf("invalid database port: %d (must be between %d and %d)", c.Database.Port, MinPort, MaxPort)
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}

	if c.Scoring.BaseURL != "" && c.Scoring.Model == "" {
		return fmt.Errorf("scoring model is required when a scoring base_url is set")
	}

	return nil
}
