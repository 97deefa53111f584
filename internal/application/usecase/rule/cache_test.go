package rule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/domain/valueobject"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(repo *fakeRuleRepo, bus *fakeBus, metrics *recordingMetrics) (*RuleCache, *testClock) {
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	var cache *RuleCache
	if bus == nil {
		cache = NewRuleCache(repo, nil, metrics, DefaultRuleCacheConfig())
	} else {
		cache = NewRuleCache(repo, bus, metrics, DefaultRuleCacheConfig())
	}
	cache.now = clock.Now
	return cache, clock
}

func TestRuleCache_ServesFromCacheWithinTTL(t *testing.T) {
	repo := &fakeRuleRepo{rules: []*entity.Rule{
		newTestRule(entity.AppliesToMerchant, "AMAZON", "shopping", 10, entity.GlobalScope, entity.ProvenanceSeed),
	}}
	cache, clock := newTestCache(repo, nil, newRecordingMetrics())
	ctx := context.Background()

	first, err := cache.Get(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, first, 1)

	clock.Advance(9 * time.Minute)
	_, err = cache.Get(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls())

	clock.Advance(2 * time.Minute)
	_, err = cache.Get(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls())
}

func TestRuleCache_InvalidateForcesRefresh(t *testing.T) {
	repo := &fakeRuleRepo{}
	bus := &fakeBus{}
	cache, _ := newTestCache(repo, bus, newRecordingMetrics())
	ctx := context.Background()

	rules, err := cache.Get(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Empty(t, rules)

	repo.rules = append(repo.rules, newTestRule(entity.AppliesToMerchant, "SHOBA", "shopping", 10, "tenant-a", entity.ProvenanceLearned))
	require.NoError(t, cache.Invalidate(ctx, "tenant-a"))

	rules, err = cache.Get(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, []entity.Scope{"tenant-a"}, bus.published)
}

func TestRuleCache_GlobalEvictionExpiresEveryScope(t *testing.T) {
	repo := &fakeRuleRepo{}
	cache, _ := newTestCache(repo, nil, newRecordingMetrics())
	ctx := context.Background()

	_, _ = cache.Get(ctx, "tenant-a")
	_, _ = cache.Get(ctx, "tenant-b")
	require.Equal(t, 2, repo.calls())

	cache.Evict(entity.GlobalScope)

	_, _ = cache.Get(ctx, "tenant-a")
	_, _ = cache.Get(ctx, "tenant-b")
	assert.Equal(t, 4, repo.calls())
}

func TestRuleCache_ServesStaleOnStoreFailure(t *testing.T) {
	repo := &fakeRuleRepo{rules: []*entity.Rule{
		newTestRule(entity.AppliesToMerchant, "AMAZON", "shopping", 10, entity.GlobalScope, entity.ProvenanceSeed),
	}}
	metrics := newRecordingMetrics()
	cache, clock := newTestCache(repo, nil, metrics)
	ctx := context.Background()

	_, err := cache.Get(ctx, entity.GlobalScope)
	require.NoError(t, err)

	repo.findErr = errors.New("connection refused")
	clock.Advance(11 * time.Minute)

	rules, err := cache.Get(ctx, entity.GlobalScope)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, 1, metrics.stale)

	// The stale entry is extended by the retry interval, not retried on every call.
	calls := repo.calls()
	clock.Advance(10 * time.Second)
	_, err = cache.Get(ctx, entity.GlobalScope)
	require.NoError(t, err)
	assert.Equal(t, calls, repo.calls())
}

func TestRuleCache_StaleSurvivesInvalidation(t *testing.T) {
	repo := &fakeRuleRepo{rules: []*entity.Rule{
		newTestRule(entity.AppliesToMerchant, "AMAZON", "shopping", 10, entity.GlobalScope, entity.ProvenanceSeed),
	}}
	cache, _ := newTestCache(repo, nil, newRecordingMetrics())
	ctx := context.Background()

	_, err := cache.Get(ctx, "tenant-a")
	require.NoError(t, err)

	cache.Evict("tenant-a")
	repo.findErr = errors.New("timeout")

	rules, err := cache.Get(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestRuleCache_UnavailableWithoutStaleEntry(t *testing.T) {
	repo := &fakeRuleRepo{findErr: errors.New("connection refused")}
	cache, _ := newTestCache(repo, nil, newRecordingMetrics())

	_, err := cache.Get(context.Background(), "tenant-a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerror.ErrRulesUnavailable))

	var ruleErr *domainerror.RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, domainerror.ErrCodeRulesUnavailable, ruleErr.Code)
}

func TestRuleCache_ConcurrentMissesShareOneRefresh(t *testing.T) {
	repo := &fakeRuleRepo{}
	cache, _ := newTestCache(repo, nil, newRecordingMetrics())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background(), "tenant-a")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, repo.calls(), 20)
	assert.GreaterOrEqual(t, repo.calls(), 1)
}

func TestRuleCache_ConcurrentGetAndEvict(t *testing.T) {
	repo := &fakeRuleRepo{rules: []*entity.Rule{
		newTestRule(entity.AppliesToMerchant, "AMAZON", "shopping", 10, entity.GlobalScope, entity.ProvenanceSeed),
	}}
	cache, _ := newTestCache(repo, nil, newRecordingMetrics())
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				rules, err := cache.Get(ctx, "tenant-a")
				assert.NoError(t, err)
				assert.Len(t, rules, 1)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				cache.Evict("tenant-a")
			}
		}()
	}
	wg.Wait()
}

func TestRuleCache_RefreshPrunesRetiredPatterns(t *testing.T) {
	kept := newTestRule(entity.AppliesToMerchant, "AMAZON", "shopping", 10, "tenant-a", entity.ProvenanceLearned)
	retired := newTestRule(entity.AppliesToMerchant, "SHOBA.*ENT", "shopping", 10, "tenant-a", entity.ProvenanceLearned)
	repo := &fakeRuleRepo{rules: []*entity.Rule{kept, retired}}
	cache, _ := newTestCache(repo, nil, newRecordingMetrics())
	patterns := NewPatternCache()
	matcher := NewMatcher(valueobject.DefaultMatchingConfig(), patterns, nil)
	cache.OnRefresh(matcher.PrunePatterns)
	ctx := context.Background()

	rules, err := cache.Get(ctx, "tenant-a")
	require.NoError(t, err)
	for _, r := range rules {
		_, err := patterns.Get(r)
		require.NoError(t, err)
	}
	assert.Len(t, patterns.compiled, 2)

	repo.mu.Lock()
	retired.Active = false
	repo.mu.Unlock()
	cache.Evict("tenant-a")

	rules, err = cache.Get(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, rules, 1)

	patterns.mu.RLock()
	defer patterns.mu.RUnlock()
	assert.Len(t, patterns.compiled, 1)
	assert.Contains(t, patterns.compiled, patternKey(kept))
	assert.NotContains(t, patterns.compiled, patternKey(retired))
}
