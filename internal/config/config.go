package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the full application configuration, populated from the
// environment with the LEDGER prefix (LEDGER_HTTP_PORT and so on).
type Config struct {
	HTTP     HTTPConfig     `envconfig:"HTTP"`
	Database DatabaseConfig `envconfig:"DB"`
	Auth     AuthConfig     `envconfig:"AUTH"`
	Log      LogConfig      `envconfig:"LOG"`
	Audit    AuditConfig    `envconfig:"AUDIT"`
}

type HTTPConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type DatabaseConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"5432"`
	User            string        `envconfig:"USER" default:"ledgercore"`
	Password        string        `envconfig:"PASSWORD" default:"ledgercore"`
	Name            string        `envconfig:"NAME" default:"ledgercore"`
	SSLMode         string        `envconfig:"SSLMODE" default:"disable"`
	MaxConns        int32         `envconfig:"MAX_CONNS" default:"10"`
	MinConns        int32         `envconfig:"MIN_CONNS" default:"2"`
	StatementTimeout time.Duration `envconfig:"STATEMENT_TIMEOUT" default:"30s"`
	MigrationsPath  string        `envconfig:"MIGRATIONS_PATH" default:"migrations"`
}

// DSN builds the pgx connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type AuthConfig struct {
	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
}

type LogConfig struct {
	Level       string `envconfig:"LEVEL" default:"info"`
	Development bool   `envconfig:"DEV" default:"false"`
}

type AuditConfig struct {
	// Payloads larger than this are stored zstd-compressed.
	CompressThreshold int `envconfig:"COMPRESS_THRESHOLD" default:"1024"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("LEDGER", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}
