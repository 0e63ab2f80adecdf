package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Access   AccessConfig
	Order    OrderConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// AccessConfig holds the shared passcode per role and the key used to sign
// session tokens.
type AccessConfig struct {
	ClientCode  string
	AdminCode   string
	TokenSecret string
	TokenTTL    time.Duration
	Issuer      string
}

type OrderConfig struct {
	AllowRegression bool
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Load reads an optional .env file and an optional YAML file at path, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("database.conn_max_lifetime"))
	if err != nil {
		return nil, fmt.Errorf("parsing database.conn_max_lifetime: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			MaxUploadBytes:  v.GetInt64("server.max_upload_bytes"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			DSN:             v.GetString("database.dsn"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
			QueryTimeout:    v.GetDuration("database.query_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Access: AccessConfig{
			ClientCode:  v.GetString("access.client_code"),
			AdminCode:   v.GetString("access.admin_code"),
			TokenSecret: v.GetString("access.token_secret"),
			TokenTTL:    v.GetDuration("access.token_ttl"),
			Issuer:      v.GetString("access.issuer"),
		},
		Order: OrderConfig{
			AllowRegression: v.GetBool("order.allow_regression"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("database.driver", DriverMySQL)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "linentrack")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.name", "linentrack")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.query_timeout", "5s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("access.token_ttl", "12h")
	v.SetDefault("access.issuer", "linentrack")

	v.SetDefault("order.allow_regression", true)
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	v.BindEnv("server.max_upload_bytes", "SERVER_MAX_UPLOAD_BYTES")

	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.dsn", "DB_DSN")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.max_open_conns", "DB_MAX_OPEN_CONNS")
	v.BindEnv("database.max_idle_conns", "DB_MAX_IDLE_CONNS")
	v.BindEnv("database.conn_max_lifetime", "DB_CONN_MAX_LIFETIME")
	v.BindEnv("database.query_timeout", "DB_QUERY_TIMEOUT")

	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")

	v.BindEnv("access.client_code", "ACCESS_CLIENT_CODE")
	v.BindEnv("access.admin_code", "ACCESS_ADMIN_CODE")
	v.BindEnv("access.token_secret", "ACCESS_TOKEN_SECRET")
	v.BindEnv("access.token_ttl", "ACCESS_TOKEN_TTL")
	v.BindEnv("access.issuer", "ACCESS_TOKEN_ISSUER")

	v.BindEnv("order.allow_regression", "ORDER_ALLOW_REGRESSION")
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL:
	case DriverSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Access.ClientCode == "" || c.Access.AdminCode == "" {
		return fmt.Errorf("access.client_code and access.admin_code are required")
	}
	if c.Access.ClientCode == c.Access.AdminCode {
		return fmt.Errorf("access.client_code and access.admin_code must differ")
	}
	if c.Access.TokenSecret == "" {
		return fmt.Errorf("access.token_secret is required")
	}
	if c.Access.TokenTTL <= 0 {
		return fmt.Errorf("access.token_ttl must be positive")
	}

	return nil
}
