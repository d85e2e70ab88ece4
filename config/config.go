package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// List failure modes for the admin order listing.
const (
	ListFailEmpty = "empty"
	ListFailError = "error"
)

type Config struct {
	HTTP struct {
		Addr string `koanf:"addr"`
	} `koanf:"http"`

	Database struct {
		Driver       string `koanf:"driver"` // sqlite3 | mysql
		DSN          string `koanf:"dsn"`
		User         string `koanf:"user"`
		Password     string `koanf:"password"`
		Host         string `koanf:"host"`
		Port         string `koanf:"port"`
		Name         string `koanf:"name"`
		MaxOpenConns int    `koanf:"max_open_conns"`
		Seed         bool   `koanf:"seed"`
	} `koanf:"database"`

	Auth struct {
		JWTSecret     string        `koanf:"jwt_secret"`
		CustomerTTL   time.Duration `koanf:"customer_ttl"`
		AdminTTL      time.Duration `koanf:"admin_ttl"`
		AdminPassword string        `koanf:"admin_password"`
	} `koanf:"auth"`

	Orders struct {
		ListFailureMode  string `koanf:"list_failure_mode"`
		AllowStatusJumps bool   `koanf:"allow_status_jumps"`
	} `koanf:"orders"`

	Uploads struct {
		Dir      string `koanf:"dir"`
		MaxBytes int64  `koanf:"max_bytes"`
	} `koanf:"uploads"`

	RabbitMQ struct {
		URL             string `koanf:"url"`
		OrderExchange   string `koanf:"exchange"`
		OrderQueue      string `koanf:"queue"`
		DeadLetterQueue string `koanf:"dead_letter_queue"`
	} `koanf:"rabbitmq"`

	Redis struct {
		Addr           string        `koanf:"addr"`
		Password       string        `koanf:"password"`
		IdempotencyTTL time.Duration `koanf:"idempotency_ttl"`
	} `koanf:"redis"`

	Log struct {
		Level      string `koanf:"level"`
		Mode       string `koanf:"mode"` // production | development
		FileEnable bool   `koanf:"file_enable"`
		Filename   string `koanf:"filename"`
	} `koanf:"log"`

	CORS struct {
		AllowedOrigins []string `koanf:"allowed_origins"`
	} `koanf:"cors"`
}

// LoadConfig reads CONFIG_FILE (default config.yaml) if present and overlays
// STORE_* environment variables on top of the defaults.
func LoadConfig() (*Config, error) {
	return Load(getEnv("CONFIG_FILE", "config.yaml"))
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	// STORE_DATABASE__DRIVER -> database.driver
	if err := k.Load(env.Provider("STORE_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "STORE_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, fmt.Errorf("env overlay: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	// secrets mounted as files win over plain values
	cfg.Auth.JWTSecret = getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Database.Password = getEnvFromFile("DB_PASSWORD_FILE", "DB_PASSWORD", cfg.Database.Password)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":5000"
	cfg.Database.Driver = "sqlite3"
	cfg.Database.User = "root"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = "3306"
	cfg.Database.Name = "storefront"
	cfg.Database.MaxOpenConns = 16
	cfg.Database.Seed = true
	cfg.Auth.JWTSecret = "your-secret-key"
	cfg.Auth.CustomerTTL = 7 * 24 * time.Hour
	cfg.Auth.AdminTTL = 24 * time.Hour
	cfg.Auth.AdminPassword = "admin123"
	cfg.Orders.ListFailureMode = ListFailEmpty
	cfg.Uploads.Dir = "uploads"
	cfg.Uploads.MaxBytes = 5 * 1024 * 1024
	cfg.RabbitMQ.OrderExchange = "orders_exchange"
	cfg.RabbitMQ.OrderQueue = "orders_queue"
	cfg.RabbitMQ.DeadLetterQueue = "dead_letter_queue"
	cfg.Redis.IdempotencyTTL = 24 * time.Hour
	cfg.Log.Level = "info"
	cfg.Log.Mode = "development"
	cfg.Log.Filename = "./logs/storefront.log"
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	return cfg
}

func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr required")
	}
	switch c.Database.Driver {
	case "sqlite3", "mysql":
	default:
		return fmt.Errorf("database.driver %q not supported", c.Database.Driver)
	}
	switch c.Orders.ListFailureMode {
	case ListFailEmpty, ListFailError:
	default:
		return fmt.Errorf("orders.list_failure_mode must be %q or %q", ListFailEmpty, ListFailError)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret required")
	}
	if c.Auth.CustomerTTL <= 0 || c.Auth.AdminTTL <= 0 {
		return errors.New("auth token ttl must be positive")
	}
	return nil
}

// DataSource returns the DSN for the configured driver. An explicit
// database.dsn always wins.
func (c *Config) DataSource() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	if c.Database.Driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&clientFoundRows=true",
			c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
	}
	return "./database.sqlite"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFromFile(fileKey, envKey, defaultValue string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return getEnv(envKey, defaultValue)
}
