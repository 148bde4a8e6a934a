package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/grvbrk/videotube_server/internal/query"
)

type PostgresCommentStore struct {
	db *sql.DB
}

func NewPostgresCommentStore(db *sql.DB) *PostgresCommentStore {
	return &PostgresCommentStore{db: db}
}

func (p *PostgresCommentStore) ListComments(ctx context.Context, q query.Query) ([]CommentWithOwner, int, error) {
	listing, err := commentRelation.buildListing(q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build comment listing: %w", err)
	}

	var total int
	if err := p.db.QueryRowContext(ctx, listing.CountSQL, listing.CountArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get total comment count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, listing.SelectSQL, listing.SelectArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	comments := []CommentWithOwner{}
	for rows.Next() {
		var c CommentWithOwner
		var owner ownerColumns

		targets := make([]interface{}, 0, len(q.Projection)+2)
		for _, f := range q.Projection {
			switch f {
			case query.FieldID:
				targets = append(targets, &c.ID)
			case query.FieldContent:
				targets = append(targets, &c.Content)
			case query.FieldVideo:
				targets = append(targets, &c.VideoID)
			case query.FieldCreatedAt:
				targets = append(targets, &c.CreatedAt)
			case query.FieldUpdatedAt:
				targets = append(targets, &c.UpdatedAt)
			case query.FieldOwner:
				targets = append(targets, owner.targets()...)
			default:
				targets = append(targets, new(interface{}))
			}
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan comment row: %w", err)
		}
		c.Owner = owner.profile()

		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over comment rows: %w", err)
	}

	return comments, total, nil
}
