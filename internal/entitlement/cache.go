// AngelaMos | 2026
// cache.go

package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/carterperez-dev/smartlink/internal/core"
)

const (
	planCachePrefix = "plan_config:"
	planGenPrefix   = "plan_config_gen:"
)

// fillScript caches a config read from the store only when no write has
// bumped the plan's generation since the read began.
var fillScript = redis.NewScript(`
if (redis.call("GET", KEYS[2]) or "0") ~= ARGV[1] then
	return 0
end
if ARGV[3] == "0" then
	redis.call("SET", KEYS[1], ARGV[2])
else
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
end
return 1
`)

// CachedStore fronts a Store with a shared redis cache. Writes go through
// to the wrapped store and then replace the cached entry, so every
// instance sees the edit on its next lookup. Each write bumps a per-plan
// generation and a miss only fills the cache if the generation it saw is
// still current.
type CachedStore struct {
	Store

	rdb     redis.Cmdable
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
	metrics *core.Metrics
}

func NewCachedStore(
	store Store,
	rdb redis.Cmdable,
	ttl time.Duration,
	logger *slog.Logger,
	metrics *core.Metrics,
) *CachedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{
		Store:   store,
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

func (c *CachedStore) Get(
	ctx context.Context,
	planName string,
) (*PlanConfig, error) {
	key := planCachePrefix + planName

	var cached PlanConfig
	err := core.GetJSON(ctx, c.rdb, key, &cached)
	if err == nil {
		c.metrics.PlanCacheLookup(true)
		return &cached, nil
	}
	if !errors.Is(err, core.ErrCacheMiss) {
		c.logger.WarnContext(ctx, "plan cache read failed",
			"plan", planName,
			"error", err,
		)
	}
	c.metrics.PlanCacheLookup(false)

	v, err, _ := c.group.Do(planName, func() (any, error) {
		gen, genErr := c.generation(ctx, planName)

		cfg, err := c.Store.Get(ctx, planName)
		if err != nil {
			return nil, err
		}

		if genErr != nil {
			c.logger.WarnContext(ctx, "plan cache generation read failed",
				"plan", planName,
				"error", genErr,
			)
			return cfg, nil
		}

		c.fill(ctx, planName, gen, cfg)
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}

	cfg := *v.(*PlanConfig)
	return &cfg, nil
}

func (c *CachedStore) generation(ctx context.Context, planName string) (int64, error) {
	gen, err := c.rdb.Get(ctx, planGenPrefix+planName).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *CachedStore) fill(
	ctx context.Context,
	planName string,
	gen int64,
	cfg *PlanConfig,
) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		c.logger.WarnContext(ctx, "plan cache encode failed",
			"plan", planName,
			"error", err,
		)
		return
	}

	keys := []string{planCachePrefix + planName, planGenPrefix + planName}
	ttl := max(c.ttl.Milliseconds(), 0)

	if err := fillScript.Run(ctx, c.rdb, keys, gen, raw, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "plan cache write failed",
			"plan", planName,
			"error", err,
		)
	}
}

func (c *CachedStore) Create(ctx context.Context, cfg *PlanConfig) error {
	if err := c.Store.Create(ctx, cfg); err != nil {
		return err
	}
	c.publish(ctx, cfg)
	return nil
}

func (c *CachedStore) Upsert(ctx context.Context, cfg *PlanConfig) error {
	if err := c.Store.Upsert(ctx, cfg); err != nil {
		return err
	}
	c.publish(ctx, cfg)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, planName string) error {
	if err := c.Store.Delete(ctx, planName); err != nil {
		return err
	}
	c.invalidate(ctx, planName)
	return nil
}

// publish replaces the cached entry with the config just written.
func (c *CachedStore) publish(ctx context.Context, cfg *PlanConfig) {
	defer c.group.Forget(cfg.PlanName)

	if err := c.bump(ctx, cfg.PlanName); err != nil {
		c.invalidate(ctx, cfg.PlanName)
		return
	}

	if err := core.SetJSON(ctx, c.rdb, planCachePrefix+cfg.PlanName, cfg, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "plan cache write failed",
			"plan", cfg.PlanName,
			"error", err,
		)
		c.invalidate(ctx, cfg.PlanName)
	}
}

func (c *CachedStore) invalidate(ctx context.Context, planName string) {
	defer c.group.Forget(planName)

	_ = c.bump(ctx, planName)
	if err := c.rdb.Del(ctx, planCachePrefix+planName).Err(); err != nil {
		c.logger.WarnContext(ctx, "plan cache invalidation failed",
			"plan", planName,
			"error", err,
		)
	}
}

func (c *CachedStore) bump(ctx context.Context, planName string) error {
	if err := c.rdb.Incr(ctx, planGenPrefix+planName).Err(); err != nil {
		c.logger.WarnContext(ctx, "plan cache generation bump failed",
			"plan", planName,
			"error", err,
		)
		return err
	}
	return nil
}

var _ Store = (*CachedStore)(nil)
