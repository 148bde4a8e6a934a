package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
)

const foreignKeyViolation = "23503"

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (pg *PostgresUserStore) AddToWatchHistory(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	query := `
	INSERT INTO watch_history (user_id, video_id)
	VALUES ($1, $2)
	ON CONFLICT (user_id, video_id) DO NOTHING;
	`

	res, err := pg.db.ExecContext(ctx, query, userID, videoID)
	if err != nil {
		return false, watchHistoryError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading watch history insert result: %w", err)
	}

	return n == 1, nil
}

// watchHistoryError maps a foreign key failure on user_id to ErrUnknownUser.
// The video is read before the insert, so the user is the only reference
// that can be missing.
func watchHistoryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: %s", ErrUnknownUser, pgErr.ConstraintName)
	}
	return fmt.Errorf("error adding video to watch history: %w", err)
}
