package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/exp/slog"
)

const (
	connectAttempts = 10
	connectBackoff  = 3 * time.Second
)

func ConnectPGDB(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 1; i <= connectAttempts; i++ {
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			logger.Warn("failed to open db", "attempt", i, "err", err)
		} else {
			err = db.PingContext(ctx)
			if err == nil {
				db.SetMaxOpenConns(25)
				db.SetMaxIdleConns(5)
				db.SetConnMaxLifetime(5 * time.Minute)
				logger.Info("connected to database")
				return db, nil
			}
			db.Close()
			logger.Warn("db not ready", "attempt", i, "err", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}

	return nil, fmt.Errorf("could not connect to database after multiple attempts: %w", err)
}

func MigrateFS(db *sql.DB, migrationsFS fs.FS, dir string) error {
	goose.SetBaseFS(migrationsFS)
	defer func() {
		goose.SetBaseFS(nil)
	}()
	return Migrate(db, dir)
}

func Migrate(db *sql.DB, dir string) error {
	err := goose.SetDialect("postgres")
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	err = goose.Up(db, dir)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
