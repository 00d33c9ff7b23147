package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-drive/internal/database"
	"github.com/pixil98/go-errors"
	"gorm.io/gorm"
)

type DatabaseConfig struct {
	Driver string `json:"driver"`
	// DSN is a file path for sqlite and a connection string for postgres.
	DSN string `json:"dsn"`
}

func (c *DatabaseConfig) driver() string {
	if c.Driver == "" {
		return database.DriverSqlite
	}
	return c.Driver
}

func (c *DatabaseConfig) validate() error {
	el := errors.NewErrorList()

	switch c.driver() {
	case database.DriverSqlite:
	case database.DriverPostgres:
		if c.DSN == "" {
			el.Add(fmt.Errorf("database dsn is required for postgres"))
		}
	default:
		el.Add(fmt.Errorf("unknown database driver: %s", c.Driver))
	}

	return el.Err()
}

func (c *DatabaseConfig) Open(ctx context.Context) (*gorm.DB, error) {
	return database.Open(ctx, c.driver(), c.DSN)
}
