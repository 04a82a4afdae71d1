package store

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

const defaultPostgresPort = 5432

// DatabaseConfig holds the Postgres connection settings of the run archive.
type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"gte=1,lte=65535"`
	User     string `validate:"required"`
	Password string
	DBName   string `validate:"required"`
	SSLMode  string `validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

// LoadDatabaseConfig reads DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME
// and DB_SSLMODE. Variables from envFile are loaded first when the file
// exists; variables already set in the environment win.
func LoadDatabaseConfig(envFile string) (DatabaseConfig, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return DatabaseConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load %s", envFile)
			}
		}
	}

	port := defaultPostgresPort

	if raw := os.Getenv("DB_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return DatabaseConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid DB_PORT %q", raw)
		}

		port = parsed
	}

	return DatabaseConfig{
		Host:     os.Getenv("DB_HOST"),
		Port:     port,
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}, nil
}

// Configured reports whether a database host was provided at all.
func (c DatabaseConfig) Configured() bool {
	return c.Host != ""
}

func (c DatabaseConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid database configuration", err)
	}

	return nil
}

// DSN renders the libpq connection string.
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}
