package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/redis/go-redis/v9"
)

type fakeSetClient struct {
	redis.Cmdable
	added int64
	err   error
	key   string
}

func (f *fakeSetClient) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	f.key = key
	return redis.NewIntResult(f.added, f.err)
}

func TestRedisWatchHistoryStore_AddToWatchHistory(t *testing.T) {
	cases := []struct {
		name    string
		added   int64
		err     error
		want    bool
		wantErr bool
	}{
		{"new member", 1, nil, true, false},
		{"already watched", 0, nil, false, false},
		{"redis down", 0, errors.New("connection refused"), false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeSetClient{added: tc.added, err: tc.err}
			user := uuid.New()

			got, err := NewRedisWatchHistoryStore(client).AddToWatchHistory(context.Background(), user, uuid.New())
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("added = %v, want %v", got, tc.want)
			}
			if client.key != watchHistoryKey(user) {
				t.Errorf("SADD key = %q", client.key)
			}
		})
	}
}

func TestWatchHistoryErrorMapsMissingUser(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "watch_history_user_id_fkey"}
	if err := watchHistoryError(fk); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("expected ErrUnknownUser, got %v", err)
	}

	other := &pgconn.PgError{Code: "57014"}
	if err := watchHistoryError(other); errors.Is(err, ErrUnknownUser) {
		t.Errorf("unrelated error mapped to ErrUnknownUser: %v", err)
	}
}
