package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const presenceKeyPrefix = "presence:"

// redisPresenceRepository keeps one key per user. Keys never expire: the flag
// is last-write-wins and a missing key means not coworking.
type redisPresenceRepository struct {
	client *redis.Client
}

func NewRedisPresenceRepository(client *redis.Client) PresenceRepository {
	return &redisPresenceRepository{client: client}
}

func presenceKey(userID int64) string {
	return presenceKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *redisPresenceRepository) SetPresence(ctx context.Context, userID int64, isCoworking bool) error {
	value := "0"
	if isCoworking {
		value = "1"
	}
	if err := r.client.Set(ctx, presenceKey(userID), value, 0).Err(); err != nil {
		return writeFault(fmt.Errorf("failed to update presence: %w", err))
	}
	return nil
}

func (r *redisPresenceRepository) ArePresent(ctx context.Context, ids []int64) (map[int64]bool, error) {
	present := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return present, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = presenceKey(id)
	}

	values, err := retryRead(ctx, func() ([]any, error) {
		return r.client.MGet(ctx, keys...).Result()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get presence data: %w", err)
	}
	for i, id := range ids {
		s, _ := values[i].(string)
		present[id] = s == "1"
	}
	return present, nil
}

// NewRedisClient parses redisURL, selects db and checks connectivity.
func NewRedisClient(ctx context.Context, redisURL string, db int) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	opt.DB = db

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
