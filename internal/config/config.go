package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration loaded from YAML with
// environment-variable overrides. It is loaded once in main and injected;
// nothing reads it through a package global.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	NATS       NATSConfig       `yaml:"nats"`
	POR        PORConfig        `yaml:"por"`
	Submission SubmissionConfig `yaml:"submission"`
	Backup     BackupConfig     `yaml:"backup"`
	Tokens     TokensConfig     `yaml:"tokens"`
	Blockchain BlockchainConfig `yaml:"blockchain"`
	Admin      AdminConfig      `yaml:"admin"`
	CORS       CORSConfig       `yaml:"cors"`
	LogLevel   string           `yaml:"logLevel"`
}

// ServerConfig HTTP server configuration.
type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"apiKey"` // shared secret for mutation endpoints
}

// DatabaseConfig persistence configuration. Driver "postgres" uses gorm;
// "memory" selects in-memory repositories (tests, demos).
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// NATSConfig operator notification channel. Optional; an empty URL
// disables publishing.
type NATSConfig struct {
	URL           string `yaml:"url"`
	Timeout       int    `yaml:"timeout"`        // seconds
	ReconnectWait int    `yaml:"reconnect_wait"` // seconds
	MaxReconnects int    `yaml:"max_reconnects"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// PORConfig proof-of-reserve oracle configuration.
type PORConfig struct {
	BaseURL       string `yaml:"baseUrl"`
	Timeout       int    `yaml:"timeout"`       // seconds
	MaxAgeSeconds int    `yaml:"maxAgeSeconds"` // attestation validity window
}

// ValidityWindow returns the attestation validity window.
func (p PORConfig) ValidityWindow() time.Duration {
	if p.MaxAgeSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(p.MaxAgeSeconds) * time.Second
}

// SubmissionConfig external transfer submission service configuration.
type SubmissionConfig struct {
	BaseURL         string `yaml:"baseUrl"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds"` // bounded per-asset submission timeout
	ConfirmReceipts bool   `yaml:"confirmReceipts"`
}

// PerAssetTimeout returns the bounded per-asset submission timeout.
func (s SubmissionConfig) PerAssetTimeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// BackupConfig timestamped registry snapshot configuration.
type BackupConfig struct {
	Dir       string `yaml:"dir"`
	QueueSize int    `yaml:"queueSize"`
}

// ResolveDir returns the backup directory, defaulting to the operator home.
func (b BackupConfig) ResolveDir() string {
	if b.Dir != "" {
		return b.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./backups"
	}
	return filepath.Join(home, ".basket-backend", "backups")
}

// TokensConfig decimal scaling defaults. A per-asset decimals value always
// takes precedence over DefaultDecimals.
type TokensConfig struct {
	DefaultDecimals int `yaml:"defaultDecimals"`
}

// BlockchainConfig RPC endpoints for receipt confirmation, keyed by
// network name.
type BlockchainConfig struct {
	Networks map[string]NetworkConfig `yaml:"networks"`
}

// NetworkConfig one network the submission adapter can confirm receipts on.
type NetworkConfig struct {
	ChainID      uint64   `yaml:"chainId"`
	Name         string   `yaml:"name"`
	RPCEndpoints []string `yaml:"rpcEndpoints"`
}

// AdminConfig admin API access configuration.
type AdminConfig struct {
	Username     string   `yaml:"username"`
	PasswordHash string   `yaml:"passwordHash"` // bcrypt
	JWTSecret    string   `yaml:"jwtSecret"`
	TokenTTL     int      `yaml:"tokenTTL"` // minutes
	AllowedIPs   []string `yaml:"allowedIPs"`
}

// CORSConfig cross-origin configuration for the dashboard.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"`
}

// Load reads the YAML file at path and applies environment overrides.
// A missing file is not an error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{Driver: "postgres"},
		Tokens:   TokensConfig{DefaultDecimals: 18},
		LogLevel: "info",
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	overrideFromEnv(cfg)

	if cfg.Tokens.DefaultDecimals <= 0 {
		cfg.Tokens.DefaultDecimals = 18
	}
	return cfg, nil
}

// overrideFromEnv applies environment variables over the YAML values.
// Environment always wins, matching the deployment convention.
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("POR_BASE_URL"); v != "" {
		cfg.POR.BaseURL = v
	}
	if v := os.Getenv("POR_MAX_AGE_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.POR.MaxAgeSeconds = secs
		}
	}
	if v := os.Getenv("SUBMISSION_BASE_URL"); v != "" {
		cfg.Submission.BaseURL = v
	}
	if v := os.Getenv("BACKUP_DIR"); v != "" {
		cfg.Backup.Dir = v
	}
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		cfg.Admin.Username = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		cfg.Admin.PasswordHash = v
	}
	if v := os.Getenv("ADMIN_JWT_SECRET"); v != "" {
		cfg.Admin.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
