package database

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"github.com/EggFine/neosched/pkg/metrics"
	"github.com/rs/zerolog"
)

// Type identifies a supported database engine.
type Type string

const (
	SQLite     Type = "sqlite"
	MySQL      Type = "mysql"
	PostgreSQL Type = "postgresql"
	MariaDB    Type = "mariadb"
)

// ParseType maps a configuration string to a database type,
// case-insensitively. Unknown values fall back to SQLite.
func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql":
		return MySQL
	case "postgresql", "postgres":
		return PostgreSQL
	case "mariadb":
		return MariaDB
	default:
		return SQLite
	}
}

// driverName returns the database/sql driver the type needs. MariaDB
// speaks the MySQL wire protocol and shares its driver.
func (t Type) driverName() string {
	switch t {
	case MySQL, MariaDB:
		return "mysql"
	case PostgreSQL:
		return "postgres"
	default:
		return "sqlite"
	}
}

func (t Type) defaultPort() int {
	switch t {
	case MySQL, MariaDB:
		return 3306
	case PostgreSQL:
		return 5432
	default:
		return 0
	}
}

// PoolConfig holds connection pool limits.
type PoolConfig struct {
	MaxSize           int           // Maximum open connections (default: 10)
	MinIdle           int           // Idle connections kept around (default: 2)
	ConnectionTimeout time.Duration // Connectivity check timeout (default: 30s)
	IdleTimeout       time.Duration // Close idle connections after (default: 10m)
	MaxLifetime       time.Duration // Recycle connections after (default: 30m)
}

// Config holds database configuration.
type Config struct {
	// Name labels log lines and metrics from this database
	// (default: "default").
	Name string

	Type     Type
	Host     string // default: "localhost"
	Port     int    // default: engine's standard port
	Database string
	Username string
	Password string

	// File is the SQLite database file (default: "database.db").
	File string

	UseSSL                  bool
	AllowPublicKeyRetrieval bool

	Pool PoolConfig

	// Workers sizes the pool executing async statements
	// (default: max(2, NumCPU)).
	Workers int

	// QueueSize bounds the async job queue (default: 256).
	QueueSize int

	// Logger receives pool lifecycle and async failure logs. Nil
	// disables logging.
	Logger *zerolog.Logger

	// Metrics controls Prometheus instrumentation.
	Metrics metrics.Config
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Type == "" {
		c.Type = SQLite
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port <= 0 {
		c.Port = c.Type.defaultPort()
	}
	if c.File == "" {
		c.File = "database.db"
	}
	if c.Pool.MaxSize <= 0 {
		c.Pool.MaxSize = 10
	}
	if c.Pool.MinIdle <= 0 {
		c.Pool.MinIdle = 2
	}
	if c.Pool.ConnectionTimeout <= 0 {
		c.Pool.ConnectionTimeout = 30 * time.Second
	}
	if c.Pool.IdleTimeout <= 0 {
		c.Pool.IdleTimeout = 10 * time.Minute
	}
	if c.Pool.MaxLifetime <= 0 {
		c.Pool.MaxLifetime = 30 * time.Minute
	}
	if c.Workers <= 0 {
		c.Workers = max(2, runtime.NumCPU())
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	return c
}

// dsn builds the connection string for the configured engine.
func (c Config) dsn() string {
	switch c.Type {
	case MySQL, MariaDB:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC&tls=%t&allowPublicKeyRetrieval=%t",
			c.Username, c.Password, c.Host, c.Port, c.Database, c.UseSSL, c.AllowPublicKeyRetrieval)
	case PostgreSQL:
		mode := "disable"
		if c.UseSSL {
			mode = "require"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			url.QueryEscape(c.Username), url.QueryEscape(c.Password), c.Host, c.Port, c.Database, mode)
	default:
		return c.File
	}
}

type yamlConfig struct {
	Type                    string   `yaml:"type"`
	Host                    string   `yaml:"host"`
	Port                    int      `yaml:"port"`
	Database                string   `yaml:"database"`
	Username                string   `yaml:"username"`
	Password                string   `yaml:"password"`
	File                    string   `yaml:"file"`
	UseSSL                  bool     `yaml:"use-ssl"`
	AllowPublicKeyRetrieval bool     `yaml:"allow-public-key-retrieval"`
	Pool                    yamlPool `yaml:"pool"`
}

type yamlPool struct {
	MaxSize           int   `yaml:"max-size"`
	MinIdle           int   `yaml:"min-idle"`
	ConnectionTimeout int64 `yaml:"connection-timeout"`
	IdleTimeout       int64 `yaml:"idle-timeout"`
	MaxLifetime       int64 `yaml:"max-lifetime"`
}

// ConfigFromYAML parses a database configuration section. Pool timeouts
// are integer milliseconds. Missing keys keep their defaults and an
// unknown type falls back to SQLite.
func ConfigFromYAML(data []byte) (Config, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("database: parse config: %w", err)
	}
	return Config{
		Type:                    ParseType(raw.Type),
		Host:                    raw.Host,
		Port:                    raw.Port,
		Database:                raw.Database,
		Username:                raw.Username,
		Password:                raw.Password,
		File:                    raw.File,
		UseSSL:                  raw.UseSSL,
		AllowPublicKeyRetrieval: raw.AllowPublicKeyRetrieval,
		Pool: PoolConfig{
			MaxSize:           raw.Pool.MaxSize,
			MinIdle:           raw.Pool.MinIdle,
			ConnectionTimeout: time.Duration(raw.Pool.ConnectionTimeout) * time.Millisecond,
			IdleTimeout:       time.Duration(raw.Pool.IdleTimeout) * time.Millisecond,
			MaxLifetime:       time.Duration(raw.Pool.MaxLifetime) * time.Millisecond,
		},
	}, nil
}
