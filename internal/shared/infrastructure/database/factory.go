package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and configures the backend.
type Config struct {
	Driver     Driver
	URL        string
	SQLitePath string
	MaxConns   int
}

// Opener opens a connection for one driver. Driver packages register
// themselves from init so importing them is enough to enable a backend.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]Opener{}

// Register installs the opener for driver.
func Register(driver Driver, open Opener) {
	openers[driver] = open
}

// Open connects to the backend selected by cfg.
func Open(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DetectDriver(cfg.URL)
	}
	if driver == DriverSQLite && cfg.SQLitePath == "" {
		cfg.SQLitePath = SQLitePathFromURL(cfg.URL)
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = DefaultSQLitePath()
		}
	}

	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("database driver %q is not registered", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath is ~/.shiftgrid/shiftgrid.db.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".shiftgrid", "shiftgrid.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o750)
}
