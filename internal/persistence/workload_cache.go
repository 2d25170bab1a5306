package persistence

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

const workloadCacheKey = "assignment:agent_workload"

// WorkloadCache caches the agent-workload snapshot. The snapshot is
// advisory; assignment correctness only needs a point-in-time view.
type WorkloadCache struct {
	redis  *Redis
	logger *zap.Logger
	ttl    time.Duration
}

// NewWorkloadCache builds the cache over the shared Redis client.
func NewWorkloadCache(redis *Redis, logger *zap.Logger, ttl time.Duration) *WorkloadCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &WorkloadCache{redis: redis, logger: logger, ttl: ttl}
}

// Get returns the cached snapshot, or false when absent or unreadable.
func (c *WorkloadCache) Get(ctx context.Context) (map[string]int, bool) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil, false
	}
	raw, err := c.redis.Client.Get(ctx, workloadCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var workload map[string]int
	if err := json.Unmarshal(raw, &workload); err != nil {
		c.logger.Warn("discarding malformed workload cache entry", zap.Error(err))
		return nil, false
	}
	return workload, true
}

// Set stores the snapshot with the configured TTL. Failures are logged and
// swallowed; the cache is best effort.
func (c *WorkloadCache) Set(ctx context.Context, workload map[string]int) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	raw, err := json.Marshal(workload)
	if err != nil {
		return
	}
	if err := c.redis.Client.Set(ctx, workloadCacheKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("unable to cache workload snapshot", zap.Error(err))
	}
}

// Invalidate drops the snapshot after an assignment changes workloads.
func (c *WorkloadCache) Invalidate(ctx context.Context) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	_ = c.redis.Client.Del(ctx, workloadCacheKey).Err()
}
