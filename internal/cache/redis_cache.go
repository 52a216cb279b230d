package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Igorithmltd/muta-app-backend-sub001/internal/config"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/domain"
)

// RecentMessageCache keeps the last N messages per room in a capped Redis
// list. Write-through only: a cache failure never fails the send.
type RecentMessageCache struct {
	client  *redis.Client
	prefix  string
	maxSize int64
	ttl     time.Duration
}

func NewRecentMessageCache(cfg config.RedisConfig) (*RecentMessageCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RecentMessageCache{
		client:  client,
		prefix:  cfg.CachePrefix,
		maxSize: int64(cfg.CacheSize),
		ttl:     cfg.CacheTTL,
	}, nil
}

func (c *RecentMessageCache) roomKey(roomID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, roomID)
}

// Push appends a message to the room's recent list and trims it to the
// configured size.
func (c *RecentMessageCache) Push(ctx context.Context, msg *domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := c.roomKey(msg.FanoutRoom())
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, c.maxSize-1)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache message: %w", err)
	}

	return nil
}

// Recent returns the cached messages for a room, newest first.
func (c *RecentMessageCache) Recent(ctx context.Context, roomID string) ([]*domain.Message, error) {
	raw, err := c.client.LRange(ctx, c.roomKey(roomID), 0, c.maxSize-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	out := make([]*domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		out = append(out, &msg)
	}
	return out, nil
}

func (c *RecentMessageCache) Close() error {
	return c.client.Close()
}
