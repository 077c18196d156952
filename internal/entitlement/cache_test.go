// AngelaMos | 2026
// cache_test.go

package entitlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/smartlink/internal/core"
)

func newTestCache(t *testing.T, store Store) (*CachedStore, *miniredis.Miniredis, *core.Metrics) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	metrics := core.NewMetrics(prometheus.NewRegistry())
	return NewCachedStore(store, rdb, 5*time.Minute, nil, metrics), mr, metrics
}

func TestCachedStoreServesRepeatReadsFromRedis(t *testing.T) {
	store := newMemStore(DefaultPlanConfigs()...)
	cache, mr, metrics := newTestCache(t, store)
	ctx := context.Background()

	for range 3 {
		cfg, err := cache.Get(ctx, PlanFree)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.MaxPagesLimit)
	}

	assert.Equal(t, 1, store.getCount())
	assert.True(t, mr.Exists(planCachePrefix+PlanFree))
	assert.Equal(t, 5*time.Minute, mr.TTL(planCachePrefix+PlanFree))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.PlanCacheLookupsTotal.WithLabelValues("hit")))
}

func TestCachedStoreUpsertWritesThrough(t *testing.T) {
	store := newMemStore(DefaultPlanConfigs()...)
	cache, mr, _ := newTestCache(t, store)
	ctx := context.Background()

	_, err := cache.Get(ctx, PlanFree)
	require.NoError(t, err)

	raised := DefaultPlanConfig(PlanFree)
	raised.MaxPagesLimit = 10
	require.NoError(t, cache.Upsert(ctx, &raised))
	assert.True(t, mr.Exists(planCachePrefix+PlanFree))

	cfg, err := cache.Get(ctx, PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxPagesLimit)
	assert.Equal(t, 1, store.getCount(), "served from the written-through entry")
}

// pausingStore returns what the wrapped store held when Get was called,
// but only after the test releases it.
type pausingStore struct {
	*memStore

	entered chan struct{}
	release chan struct{}
}

func newPausingStore(inner *memStore) *pausingStore {
	return &pausingStore{
		memStore: inner,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (s *pausingStore) Get(ctx context.Context, name string) (*PlanConfig, error) {
	cfg, err := s.memStore.Get(ctx, name)
	close(s.entered)
	<-s.release
	return cfg, err
}

func TestCachedStoreStaleFillLosesToUpsert(t *testing.T) {
	store := newPausingStore(newMemStore(DefaultPlanConfigs()...))
	cache, mr, _ := newTestCache(t, store)
	r := NewResolver(cache, ResolverOptions{})
	ctx := context.Background()

	done := make(chan *PlanConfig)
	go func() {
		cfg, err := cache.Get(ctx, PlanFree)
		assert.NoError(t, err)
		done <- cfg
	}()

	<-store.entered

	raised := DefaultPlanConfig(PlanFree)
	raised.MaxPagesLimit = 10
	require.NoError(t, cache.Upsert(ctx, &raised))

	close(store.release)
	stale := <-done
	assert.Equal(t, 3, stale.MaxPagesLimit, "the in-flight read began before the edit")

	var cached PlanConfig
	require.NoError(t, core.GetJSON(ctx, cache.rdb, planCachePrefix+PlanFree, &cached))
	assert.Equal(t, 10, cached.MaxPagesLimit)
	assert.Equal(t, 5*time.Minute, mr.TTL(planCachePrefix+PlanFree))

	assert.True(t, r.CheckAccess(ctx, freePrincipal(), MaxPages, Count(3)))
}

func TestCachedStoreStaleFillLosesToDelete(t *testing.T) {
	gold := DefaultPlanConfig(PlanPro)
	gold.PlanName = "gold"
	store := newPausingStore(newMemStore(gold))
	cache, mr, _ := newTestCache(t, store)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := cache.Get(ctx, "gold")
		assert.NoError(t, err)
	}()

	<-store.entered
	require.NoError(t, cache.Delete(ctx, "gold"))
	close(store.release)
	<-done

	assert.False(t, mr.Exists(planCachePrefix+"gold"))
}

func TestCachedStoreDoesNotCacheMisses(t *testing.T) {
	store := newMemStore()
	cache, mr, _ := newTestCache(t, store)
	ctx := context.Background()

	_, err := cache.Get(ctx, "gold")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.False(t, mr.Exists(planCachePrefix+"gold"))

	gold := DefaultPlanConfig(PlanPro)
	gold.PlanName = "gold"
	require.NoError(t, cache.Create(ctx, &gold))

	cfg, err := cache.Get(ctx, "gold")
	require.NoError(t, err)
	assert.Equal(t, "gold", cfg.PlanName)
}

func TestCachedStoreConcurrentReads(t *testing.T) {
	store := newMemStore(DefaultPlanConfigs()...)
	cache, _, _ := newTestCache(t, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := cache.Get(ctx, PlanPro)
			assert.NoError(t, err)
			assert.Equal(t, Unlimited, cfg.MaxPagesLimit)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, store.getCount(), 20)
}

func TestResolverThroughCacheSeesEditsImmediately(t *testing.T) {
	store := newMemStore(DefaultPlanConfigs()...)
	cache, _, _ := newTestCache(t, store)
	r := NewResolver(cache, ResolverOptions{})
	ctx := context.Background()
	p := freePrincipal()

	require.False(t, r.CheckAccess(ctx, p, MaxPages, Count(3)))

	raised := DefaultPlanConfig(PlanFree)
	raised.MaxPagesLimit = 10
	require.NoError(t, cache.Upsert(ctx, &raised))

	assert.True(t, r.CheckAccess(ctx, p, MaxPages, Count(3)))
}
