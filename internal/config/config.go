package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logs     LogsConfig     `toml:"logs"`
	Database DatabaseConfig `toml:"database"`
	Cup      CupConfig      `toml:"cup"`
	Ghl      GhlConfig      `toml:"ghl"`
	Webhook  WebhookConfig  `toml:"webhook"`
	Sync     SyncConfig     `toml:"sync"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type DatabaseConfig struct {
	Enabled         bool   `toml:"enabled"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// CupConfig доступ к API CUP Solidale (basic auth)
type CupConfig struct {
	BaseURL     string `toml:"base_url"`
	CompanyCode string `toml:"company_code"`
	APIKey      string `toml:"api_key"`
	Timeout     int    `toml:"timeout"`
}

// GhlConfig доступ к API GoHighLevel (bearer token)
type GhlConfig struct {
	BaseURL    string `toml:"base_url"`
	APIToken   string `toml:"api_token"`
	LocationID string `toml:"location_id"`
	Timeout    int    `toml:"timeout"`
}

// WebhookConfig аутентификация входящих webhook'ов
type WebhookConfig struct {
	Secret string `toml:"secret"`
}

// SyncConfig параметры retry и circuit breaker'ов
type SyncConfig struct {
	MaxRetries       int `toml:"max_retries"`
	BaseDelayMs      int `toml:"base_delay_ms"`
	MaxDelayMs       int `toml:"max_delay_ms"`
	BreakerThreshold int `toml:"breaker_threshold"`
	BreakerCooldownS int `toml:"breaker_cooldown_s"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// Load загружает и валидирует конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Cup.BaseURL == "" || c.Cup.CompanyCode == "" || c.Cup.APIKey == "" {
		return fmt.Errorf("config: cup.base_url, cup.company_code and cup.api_key are required")
	}
	if c.Ghl.BaseURL == "" || c.Ghl.APIToken == "" || c.Ghl.LocationID == "" {
		return fmt.Errorf("config: ghl.base_url, ghl.api_token and ghl.location_id are required")
	}
	if c.Webhook.Secret == "" {
		return fmt.Errorf("config: webhook.secret is required")
	}
	if c.Database.Enabled && c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required when database is enabled")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 3000
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Cup.Timeout == 0 {
		c.Cup.Timeout = 30
	}
	if c.Ghl.Timeout == 0 {
		c.Ghl.Timeout = 30
	}
	if c.Sync.MaxRetries == 0 {
		c.Sync.MaxRetries = 3
	}
	if c.Sync.BaseDelayMs == 0 {
		c.Sync.BaseDelayMs = 1000
	}
	if c.Sync.MaxDelayMs == 0 {
		c.Sync.MaxDelayMs = 30000
	}
	if c.Sync.BreakerThreshold == 0 {
		c.Sync.BreakerThreshold = 5
	}
	if c.Sync.BreakerCooldownS == 0 {
		c.Sync.BreakerCooldownS = 60
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "cup-sync-service"
	}
}
