package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/logger"
	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// redisInsightCache keeps the newest insight per (user, type) in Redis in front
// of the durable insight history. Redis failures never fail a lookup; they fall
// through to the wrapped repository.
type redisInsightCache struct {
	client *redis.Client
	next   InsightRepository
	ttl    time.Duration
}

// NewRedisInsightCache wraps next with a Redis read-through cache
func NewRedisInsightCache(client *redis.Client, next InsightRepository, ttl time.Duration) InsightRepository {
	return &redisInsightCache{
		client: client,
		next:   next,
		ttl:    ttl,
	}
}

func insightKey(userID string, insightType models.InsightType) string {
	return fmt.Sprintf("insight:%s:%s", userID, insightType)
}

func (c *redisInsightCache) GetCurrent(ctx context.Context, userID string, insightType models.InsightType, startDate time.Time) (*models.InsightRecord, error) {
	log := logger.Ctx(ctx)
	key := insightKey(userID, insightType)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		record, err := decodeInsight(data)
		if err != nil {
			log.Warn("discarding undecodable cached insight", logger.String("key", key), logger.Err(err))
			break
		}
		if record.PeriodStartDate.Format(models.DateLayout) >= startDate.Format(models.DateLayout) {
			return record, nil
		}
	case errors.Is(err, redis.Nil):
		// Not cached
	default:
		log.Warn("redis lookup failed, falling back to store", logger.String("key", key), logger.Err(err))
	}

	record, err := c.next.GetCurrent(ctx, userID, insightType, startDate)
	if err != nil || record == nil {
		return record, err
	}

	c.set(ctx, key, record)
	return record, nil
}

func (c *redisInsightCache) Store(ctx context.Context, userID string, insightType models.InsightType, content string, startDate time.Time) (*models.InsightRecord, error) {
	record, err := c.next.Store(ctx, userID, insightType, content, startDate)
	if err != nil {
		return nil, err
	}

	c.set(ctx, insightKey(userID, insightType), record)
	return record, nil
}

// maxSetAttempts bounds retries when another writer touches the key between
// WATCH and EXEC
const maxSetAttempts = 3

// set caches record unless Redis already holds a record generated at the
// same time or later. Writers that race, and read fills that lose to a newer
// write, therefore leave the newest record in place.
func (c *redisInsightCache) set(ctx context.Context, key string, record *models.InsightRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}

	compareAndSet := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if current, err := decodeInsight(data); err == nil && !record.GeneratedAt.After(current.GeneratedAt) {
				return nil
			}
		case !errors.Is(err, redis.Nil):
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxSetAttempts; attempt++ {
		err = c.client.Watch(ctx, compareAndSet, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		logger.Ctx(ctx).Warn("failed to cache insight in redis", logger.String("key", key), logger.Err(err))
	}
}

func decodeInsight(data []byte) (*models.InsightRecord, error) {
	var record models.InsightRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// NewRedisClient parses a redis:// URL and verifies the server is reachable
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
