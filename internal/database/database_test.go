package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestOpen(t *testing.T) {
	tests := map[string]struct {
		driver     string
		dsn        func(t *testing.T) string
		expErr     string
		expDialect string
	}{
		"sqlite file": {
			driver:     DriverSqlite,
			dsn:        func(t *testing.T) string { return filepath.Join(t.TempDir(), "drive.db") },
			expDialect: "sqlite",
		},
		"sqlite memory": {
			driver:     DriverSqlite,
			dsn:        func(*testing.T) string { return "" },
			expDialect: "sqlite",
		},
		"unknown driver": {
			driver: "mongo",
			dsn:    func(*testing.T) string { return "" },
			expErr: "unknown database driver: mongo",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			db, err := Open(context.Background(), tt.driver, tt.dsn(t))
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer Close(db)

			testutil.AssertEqual(t, "dialector", db.Dialector.Name(), tt.expDialect)

			var one int
			if err := db.Raw("SELECT 1").Scan(&one).Error; err != nil {
				t.Fatalf("query failed: %v", err)
			}
			testutil.AssertEqual(t, "select", one, 1)
		})
	}
}
