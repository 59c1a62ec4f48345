// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// PoolConfig sizes a sink's connection pool; zero values keep driver defaults
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// loadPoolConfig reads <prefix>_MAX_OPEN_CONNS and friends. Exports are
// sequential per sink, so small pools are the default.
func loadPoolConfig(prefix string, lifetime, idle time.Duration) PoolConfig {
	return PoolConfig{
		MaxOpenConns:    getEnvAsInt(prefix+"_MAX_OPEN_CONNS", 4),
		MaxIdleConns:    getEnvAsInt(prefix+"_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: getEnvAsSeconds(prefix+"_CONN_MAX_LIFETIME_SECONDS", lifetime),
		ConnMaxIdleTime: getEnvAsSeconds(prefix+"_CONN_MAX_IDLE_TIME_SECONDS", idle),
	}
}

func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	return time.Duration(getEnvAsInt(key, int(defaultValue.Seconds()))) * time.Second
}

// SnowflakeConfig holds Snowflake connection parameters
type SnowflakeConfig struct {
	User          string
	Password      string
	Account       string
	Warehouse     string
	Database      string // Default: WRANGLER
	Schema        string // Default: PUBLIC
	Role          string
	Authenticator gosnowflake.AuthType
	Pool          PoolConfig
	QueryTimeout  time.Duration
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Pool     PoolConfig

	// Applied per session; zero disables it
	StatementTimeout time.Duration
}

// LoadSnowflakeConfig loads Snowflake configuration from environment variables
func LoadSnowflakeConfig() (*SnowflakeConfig, error) {
	required := map[string]string{}
	for _, key := range []string{"SNOWFLAKE_USER", "SNOWFLAKE_PASSWORD", "SNOWFLAKE_ACCOUNT", "SNOWFLAKE_WAREHOUSE"} {
		value := os.Getenv(key)
		if value == "" {
			return nil, fmt.Errorf("%s environment variable is required", key)
		}
		required[key] = value
	}

	cfg := &SnowflakeConfig{
		User:          required["SNOWFLAKE_USER"],
		Password:      required["SNOWFLAKE_PASSWORD"],
		Account:       required["SNOWFLAKE_ACCOUNT"],
		Warehouse:     required["SNOWFLAKE_WAREHOUSE"],
		Database:      getEnv("SNOWFLAKE_DATABASE", "WRANGLER"),
		Schema:        getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
		Role:          getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator: parseAuthenticator(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake")),
		Pool:          loadPoolConfig("SNOWFLAKE", 10*time.Minute, 5*time.Minute),
		QueryTimeout:  getEnvAsSeconds("SNOWFLAKE_QUERY_TIMEOUT_SECONDS", 5*time.Minute),
	}

	return cfg, nil
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig() (*PostgresConfig, error) {
	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		return nil, errors.New("POSTGRES_USER environment variable is required")
	}

	database := os.Getenv("POSTGRES_DB")
	if database == "" {
		return nil, errors.New("POSTGRES_DB environment variable is required")
	}

	cfg := &PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnvAsInt("POSTGRES_PORT", 5432),
		User:     user,
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Database: database,
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		Pool:     loadPoolConfig("POSTGRES", 30*time.Minute, 10*time.Minute),

		StatementTimeout: getEnvAsSeconds("POSTGRES_STATEMENT_TIMEOUT_SECONDS", 5*time.Minute),
	}

	return cfg, nil
}

// DSN returns the Snowflake DSN built by the driver
func (c *SnowflakeConfig) DSN() (string, error) {
	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:       c.Account,
		User:          c.User,
		Password:      c.Password,
		Database:      c.Database,
		Schema:        c.Schema,
		Warehouse:     c.Warehouse,
		Role:          c.Role,
		Authenticator: c.Authenticator,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}
	return dsn, nil
}

// ConnectionString returns a key/value DSN for the pgx stdlib driver
func (c *PostgresConfig) ConnectionString() string {
	parts := []string{
		"host=" + c.Host,
		"port=" + strconv.Itoa(c.Port),
		"user=" + c.User,
		"dbname=" + c.Database,
		"sslmode=" + c.SSLMode,
	}
	if c.Password != "" {
		parts = append(parts, "password="+c.Password)
	}
	return strings.Join(parts, " ")
}

func parseAuthenticator(name string) gosnowflake.AuthType {
	switch name {
	case "oauth":
		return gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		return gosnowflake.AuthTypeJwt
	case "token":
		return gosnowflake.AuthTypeTokenAccessor
	case "okta":
		return gosnowflake.AuthTypeOkta
	default:
		return gosnowflake.AuthTypeSnowflake
	}
}
