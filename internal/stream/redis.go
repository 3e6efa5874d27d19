package stream

import (
	"context"
	"strconv"
	"time"

	"inventory-audit-api/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PublishTimeout bounds a single XADD so a slow Redis cannot stall a request.
const PublishTimeout = 2 * time.Second

// RedisAuditStream mirrors audit records onto a Redis stream for downstream consumers.
type RedisAuditStream struct {
	client *redis.Client
	key    string
	maxLen int64
}

// RedisStreamConfig holds configuration for the audit stream.
type RedisStreamConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	MaxLen   int64
}

// NewRedisAuditStream connects to Redis and verifies the connection.
func NewRedisAuditStream(cfg RedisStreamConfig) (*RedisAuditStream, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		ReadTimeout:  PublishTimeout,
		WriteTimeout: PublishTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	s := NewRedisAuditStreamWithClient(client, cfg.Key, cfg.MaxLen)
	log.Info().Int("db", cfg.DB).Str("key", s.Key()).Int64("max_len", s.maxLen).Msg("audit stream connected")
	return s, nil
}

// NewRedisAuditStreamWithClient wraps an existing client.
func NewRedisAuditStreamWithClient(client *redis.Client, key string, maxLen int64) *RedisAuditStream {
	if key == "" {
		key = "inventory:audit"
	}
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &RedisAuditStream{client: client, key: key, maxLen: maxLen}
}

// Key returns the stream key.
func (s *RedisAuditStream) Key() string {
	return s.key
}

// Publish appends the record to the stream, trimming it to roughly maxLen entries.
func (s *RedisAuditStream) Publish(ctx context.Context, rec *model.AuditRecord) error {
	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	values := map[string]interface{}{
		"audit_id":     strconv.FormatInt(rec.ID, 10),
		"inventory_id": strconv.FormatInt(rec.InventoryID, 10),
		"action":       string(rec.Action),
		"performed_at": rec.PerformedAt.Format(time.RFC3339Nano),
		"before_state": string(rec.BeforeState),
		"after_state":  string(rec.AfterState),
	}
	if rec.Reason != nil {
		values["reason"] = *rec.Reason
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.key,
		MaxLen: s.maxLen,
		Approx: true,
		Values: values,
	}).Err()
}

// Ping checks the Redis connection.
func (s *RedisAuditStream) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisAuditStream) Close() error {
	return s.client.Close()
}
