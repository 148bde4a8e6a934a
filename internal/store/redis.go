package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func ConnectRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		Protocol: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not reach redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}

// RedisWatchHistoryStore keeps each user's watch history as a Redis set.
type RedisWatchHistoryStore struct {
	client redis.Cmdable
}

func NewRedisWatchHistoryStore(client redis.Cmdable) *RedisWatchHistoryStore {
	return &RedisWatchHistoryStore{client: client}
}

func watchHistoryKey(userID uuid.UUID) string {
	return "user:" + userID.String() + ":watch_history"
}

func (r *RedisWatchHistoryStore) AddToWatchHistory(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	added, err := r.client.SAdd(ctx, watchHistoryKey(userID), videoID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("error adding video to redis watch history: %w", err)
	}
	return added == 1, nil
}
