package rule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

// RuleCacheConfig contains the timing of the rule cache.
type RuleCacheConfig struct {
	TTL            time.Duration // lifetime of a fresh entry
	RetryInterval  time.Duration // lifetime of a stale entry re-served after a store failure
	RefreshTimeout time.Duration // bound on one store round-trip
}

// DefaultRuleCacheConfig returns the default cache timing.
func DefaultRuleCacheConfig() RuleCacheConfig {
	return RuleCacheConfig{
		TTL:            10 * time.Minute,
		RetryInterval:  30 * time.Second,
		RefreshTimeout: 5 * time.Second,
	}
}

// cacheEntry is never mutated once installed; eviction and stale serving swap in a copy.
type cacheEntry struct {
	rules     []*entity.Rule
	expiresAt time.Time
}

// RuleCache holds the ordered active rules of each scope for a bounded time.
//
// Invalidation marks entries expired instead of dropping them, so a store outage right
// after an invalidation still has stale rules to serve. A refresh that raced with an
// invalidation is discarded rather than installed.
type RuleCache struct {
	repo    adapter.RuleRepository
	bus     adapter.RuleCacheBus
	metrics adapter.CategorizationMetrics
	cfg     RuleCacheConfig
	now     func() time.Time

	mu         sync.RWMutex
	entries    map[entity.Scope]*cacheEntry
	generation uint64
	onRefresh  func(live map[string]struct{})

	flights singleflight.Group
}

// NewRuleCache creates a new RuleCache. bus may be nil for a single instance.
func NewRuleCache(
	repo adapter.RuleRepository,
	bus adapter.RuleCacheBus,
	metrics adapter.CategorizationMetrics,
	cfg RuleCacheConfig,
) *RuleCache {
	if metrics == nil {
		metrics = adapter.NopMetrics{}
	}
	return &RuleCache{
		repo:    repo,
		bus:     bus,
		metrics: metrics,
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[entity.Scope]*cacheEntry),
	}
}

// Get returns the active rules visible to scope in match order.
// On a store failure it serves the stale entry, or ErrRulesUnavailable when there is none.
func (c *RuleCache) Get(ctx context.Context, scope entity.Scope) ([]*entity.Rule, error) {
	scope = scope.Normalize()

	c.mu.RLock()
	entry, ok := c.entries[scope]
	generation := c.generation
	c.mu.RUnlock()

	if ok && c.now().Before(entry.expiresAt) {
		return entry.rules, nil
	}

	key := fmt.Sprintf("%s#%d", scope, generation)
	ch := c.flights.DoChan(key, func() (interface{}, error) {
		return c.refresh(ctx, scope, generation)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*entity.Rule), nil
	}
}

func (c *RuleCache) refresh(ctx context.Context, scope entity.Scope, generation uint64) ([]*entity.Rule, error) {
	// Detached from the caller: other callers share this flight and a row deadline
	// must not cancel their refresh.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.RefreshTimeout)
	defer cancel()

	rules, err := c.repo.FindActiveForScope(fetchCtx, scope)
	if err != nil {
		return c.serveStale(scope, err)
	}

	c.mu.Lock()
	installed := c.generation == generation
	if installed {
		c.entries[scope] = &cacheEntry{rules: rules, expiresAt: c.now().Add(c.cfg.TTL)}
	}
	hook := c.onRefresh
	var live map[string]struct{}
	if installed && hook != nil {
		live = c.livePatternsLocked()
	}
	c.mu.Unlock()

	if live != nil {
		hook(live)
	}
	return rules, nil
}

// OnRefresh registers fn to receive the pattern fingerprints of every cached rule
// after each installed refresh. It must be called before the cache is shared.
func (c *RuleCache) OnRefresh(fn func(live map[string]struct{})) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = fn
}

func (c *RuleCache) livePatternsLocked() map[string]struct{} {
	live := make(map[string]struct{})
	for _, entry := range c.entries {
		for _, r := range entry.rules {
			live[patternKey(r)] = struct{}{}
		}
	}
	return live
}

func (c *RuleCache) serveStale(scope entity.Scope, cause error) ([]*entity.Rule, error) {
	c.mu.Lock()
	entry, ok := c.entries[scope]
	if ok {
		entry = &cacheEntry{rules: entry.rules, expiresAt: c.now().Add(c.cfg.RetryInterval)}
		c.entries[scope] = entry
	}
	c.mu.Unlock()

	if !ok {
		slog.Error("Rule store unavailable and no cached rules", "scope", scope, "error", cause)
		return nil, domainerror.NewRuleError(
			domainerror.ErrCodeRulesUnavailable,
			"rules unavailable for scope "+string(scope),
			fmt.Errorf("%w: %v", domainerror.ErrRulesUnavailable, cause),
		)
	}

	slog.Warn("Rule store unavailable, serving stale rules",
		"scope", scope,
		"rules", len(entry.rules),
		"retry_in", c.cfg.RetryInterval,
		"error", cause,
	)
	c.metrics.StaleRulesServed(string(scope))
	return entry.rules, nil
}

// Evict expires the cached rules of scope on this instance.
// Evicting the global scope expires every scope, since every scope includes global rules.
func (c *RuleCache) Evict(scope entity.Scope) {
	scope = scope.Normalize()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if scope.IsGlobal() {
		for s, entry := range c.entries {
			c.entries[s] = &cacheEntry{rules: entry.rules}
		}
		return
	}
	if entry, ok := c.entries[scope]; ok {
		c.entries[scope] = &cacheEntry{rules: entry.rules}
	}
}

// Invalidate evicts scope locally and broadcasts the eviction to other instances.
// The broadcast is best effort: its error is returned for logging only.
func (c *RuleCache) Invalidate(ctx context.Context, scope entity.Scope) error {
	c.Evict(scope)
	if c.bus == nil {
		return nil
	}
	if err := c.bus.Publish(ctx, scope.Normalize()); err != nil {
		return fmt.Errorf("failed to broadcast rule invalidation: %w", err)
	}
	return nil
}

// Listen applies invalidations broadcast by other instances until ctx is done.
func (c *RuleCache) Listen(ctx context.Context) error {
	if c.bus == nil {
		return nil
	}
	return c.bus.Subscribe(ctx, c.Evict)
}
