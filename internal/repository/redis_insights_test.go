package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryInsights is an append-only insight history. Each Store takes the
// next timestamp from stamps.
type memoryInsights struct {
	mu       sync.Mutex
	records  []models.InsightRecord
	stamps   []time.Time
	getCalls int
}

func (m *memoryInsights) GetCurrent(ctx context.Context, userID string, insightType models.InsightType, startDate time.Time) (*models.InsightRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	var current *models.InsightRecord
	for i := range m.records {
		r := m.records[i]
		if r.UserID != userID || r.InsightType != insightType {
			continue
		}
		if r.PeriodStartDate.Format(models.DateLayout) < startDate.Format(models.DateLayout) {
			continue
		}
		if current == nil || r.GeneratedAt.After(current.GeneratedAt) {
			current = &r
		}
	}
	return current, nil
}

func (m *memoryInsights) Store(ctx context.Context, userID string, insightType models.InsightType, content string, startDate time.Time) (*models.InsightRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp := m.stamps[0]
	m.stamps = m.stamps[1:]

	record := models.InsightRecord{
		ID:              fmt.Sprintf("insight-%d", len(m.records)+1),
		UserID:          userID,
		InsightType:     insightType,
		Content:         content,
		PeriodStartDate: startDate,
		GeneratedAt:     stamp,
	}
	m.records = append(m.records, record)
	return &record, nil
}

func (m *memoryInsights) lookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

var (
	weekStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	stampBase = time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC)
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func cachedRecord(t *testing.T, mr *miniredis.Miniredis, key string) models.InsightRecord {
	t.Helper()
	raw, err := mr.Get(key)
	require.NoError(t, err)

	var record models.InsightRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))
	return record
}

func TestRedisCacheServesHitWithoutStore(t *testing.T) {
	mr, client := newTestRedis(t)
	durable := &memoryInsights{stamps: []time.Time{stampBase}}
	cache := NewRedisInsightCache(client, durable, time.Hour)
	ctx := context.Background()

	stored, err := cache.Store(ctx, "user-1", models.InsightTypeWeeklySummary, "calm week", weekStart)
	require.NoError(t, err)

	got, err := cache.GetCurrent(ctx, "user-1", models.InsightTypeWeeklySummary, weekStart)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, "calm week", got.Content)
	assert.Zero(t, durable.lookups())

	key := insightKey("user-1", models.InsightTypeWeeklySummary)
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestRedisCacheFillsFromStoreOnMiss(t *testing.T) {
	mr, client := newTestRedis(t)
	durable := &memoryInsights{stamps: []time.Time{stampBase}}
	_, err := durable.Store(context.Background(), "user-1", models.InsightTypeMoodTrigger, "evenings are hard", weekStart)
	require.NoError(t, err)

	cache := NewRedisInsightCache(client, durable, time.Hour)

	got, err := cache.GetCurrent(context.Background(), "user-1", models.InsightTypeMoodTrigger, weekStart)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "evenings are hard", got.Content)
	assert.Equal(t, 1, durable.lookups())

	assert.Equal(t, "evenings are hard", cachedRecord(t, mr, insightKey("user-1", models.InsightTypeMoodTrigger)).Content)
}

func TestRedisCacheIgnoresRecordFromEarlierWindow(t *testing.T) {
	mr, client := newTestRedis(t)
	durable := &memoryInsights{}
	cache := NewRedisInsightCache(client, durable, time.Hour)

	old := models.InsightRecord{
		ID:              "old",
		UserID:          "user-1",
		InsightType:     models.InsightTypeWeeklySummary,
		Content:         "last week",
		PeriodStartDate: weekStart.AddDate(0, 0, -7),
		GeneratedAt:     stampBase.AddDate(0, 0, -7),
	}
	payload, err := json.Marshal(old)
	require.NoError(t, err)
	require.NoError(t, mr.Set(insightKey("user-1", models.InsightTypeWeeklySummary), string(payload)))

	got, err := cache.GetCurrent(context.Background(), "user-1", models.InsightTypeWeeklySummary, weekStart)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, durable.lookups())
}

func TestRedisCacheReplacesUndecodableEntry(t *testing.T) {
	mr, client := newTestRedis(t)
	durable := &memoryInsights{stamps: []time.Time{stampBase}}
	_, err := durable.Store(context.Background(), "user-1", models.InsightTypeWeeklySummary, "steady week", weekStart)
	require.NoError(t, err)

	key := insightKey("user-1", models.InsightTypeWeeklySummary)
	require.NoError(t, mr.Set(key, "{not json"))

	cache := NewRedisInsightCache(client, durable, time.Hour)

	got, err := cache.GetCurrent(context.Background(), "user-1", models.InsightTypeWeeklySummary, weekStart)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "steady week", got.Content)
	assert.Equal(t, "steady week", cachedRecord(t, mr, key).Content)
}

func TestRedisCacheFallsBackWhenRedisIsDown(t *testing.T) {
	mr, client := newTestRedis(t)
	durable := &memoryInsights{stamps: []time.Time{stampBase, stampBase.Add(time.Second)}}
	cache := NewRedisInsightCache(client, durable, time.Hour)
	ctx := context.Background()

	mr.Close()

	stored, err := cache.Store(ctx, "user-1", models.InsightTypeRecommendation, "take a walk", weekStart)
	require.NoError(t, err)
	assert.Equal(t, "take a walk", stored.Content)

	got, err := cache.GetCurrent(ctx, "user-1", models.InsightTypeRecommendation, weekStart)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, 1, durable.lookups())
}

func TestRedisCacheKeepsNewestRecordWhenWritesLandOutOfOrder(t *testing.T) {
	mr, client := newTestRedis(t)
	// The second write to reach the cache was generated first.
	durable := &memoryInsights{stamps: []time.Time{stampBase.Add(2 * time.Second), stampBase.Add(time.Second)}}
	cache := NewRedisInsightCache(client, durable, time.Hour)
	ctx := context.Background()

	_, err := cache.Store(ctx, "user-1", models.InsightTypeWeeklySummary, "B-newer", weekStart)
	require.NoError(t, err)
	_, err = cache.Store(ctx, "user-1", models.InsightTypeWeeklySummary, "A-older", weekStart)
	require.NoError(t, err)

	want, err := durable.GetCurrent(ctx, "user-1", models.InsightTypeWeeklySummary, weekStart)
	require.NoError(t, err)
	require.Equal(t, "B-newer", want.Content)

	got, err := cache.GetCurrent(ctx, "user-1", models.InsightTypeWeeklySummary, weekStart)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Content, got.Content)

	mr.FastForward(2 * time.Hour)

	got, err = cache.GetCurrent(ctx, "user-1", models.InsightTypeWeeklySummary, weekStart)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Content, got.Content)
}

func TestRedisCacheReadFillDoesNotOverwriteNewerWrite(t *testing.T) {
	mr, client := newTestRedis(t)
	durable := &memoryInsights{stamps: []time.Time{stampBase.Add(time.Second)}}
	cache := NewRedisInsightCache(client, durable, time.Hour).(*redisInsightCache)
	ctx := context.Background()

	newer, err := cache.Store(ctx, "user-1", models.InsightTypeMoodTrigger, "newer", weekStart)
	require.NoError(t, err)

	// A reader that loaded the previous record before the write finished
	key := insightKey("user-1", models.InsightTypeMoodTrigger)
	cache.set(ctx, key, &models.InsightRecord{
		ID:              "previous",
		UserID:          "user-1",
		InsightType:     models.InsightTypeMoodTrigger,
		Content:         "previous",
		PeriodStartDate: weekStart,
		GeneratedAt:     stampBase,
	})

	assert.Equal(t, newer.ID, cachedRecord(t, mr, key).ID)
}
