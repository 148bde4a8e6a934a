package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/exp/slog"
)

type ClickhouseOptions struct {
	Addr     string
	Database string
	Username string
	Password string
}

func ConnectClickhouse(ctx context.Context, opts ClickhouseOptions, logger *slog.Logger) (driver.Conn, error) {
	var conn driver.Conn
	var err error

	for i := 1; i <= connectAttempts; i++ {
		conn, err = clickhouse.Open(&clickhouse.Options{
			Addr: []string{opts.Addr},
			Auth: clickhouse.Auth{
				Database: opts.Database,
				Username: opts.Username,
				Password: opts.Password,
			},
			ClientInfo: clickhouse.ClientInfo{
				Products: []struct {
					Name    string
					Version string
				}{
					{Name: "videotube-api-server", Version: "1.0"},
				},
			},
			DialTimeout: 5 * time.Second,
		})

		if err == nil {
			err = conn.Ping(ctx)
			if err == nil {
				logger.Info("connected to clickhouse")
				return conn, nil
			}
		}

		logger.Warn("clickhouse not ready", "attempt", i, "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}

	return nil, fmt.Errorf("could not connect to ClickHouse after multiple attempts: %w", err)
}

// MigrateClickhouse applies the analytics migrations found at sourceURL,
// e.g. "file://./migrations/analytics".
func MigrateClickhouse(sourceURL string, opts ClickhouseOptions) error {
	dbURL := fmt.Sprintf("clickhouse://%s:%s@%s/%s?x-multi-statement=true",
		opts.Username, opts.Password, opts.Addr, opts.Database)

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("migration init error: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}
