// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/finance-tracker/categorizer/config"
	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/application/usecase/category"
	"github.com/finance-tracker/categorizer/internal/application/usecase/loader"
	"github.com/finance-tracker/categorizer/internal/application/usecase/rule"
	"github.com/finance-tracker/categorizer/internal/application/usecase/transaction"
	"github.com/finance-tracker/categorizer/internal/domain/valueobject"
	"github.com/finance-tracker/categorizer/internal/infra/server/router"
	"github.com/finance-tracker/categorizer/internal/integration/adapters"
	"github.com/finance-tracker/categorizer/internal/integration/cache"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/categorizer/internal/integration/observability"
	"github.com/finance-tracker/categorizer/internal/integration/persistence"
	"github.com/finance-tracker/categorizer/internal/integration/scheduler"
	"github.com/finance-tracker/categorizer/internal/integration/seed"
)

const rateLimiterCleanupInterval = time.Minute

// Injector holds all application dependencies.
type Injector struct {
	Config      *config.Config
	DB          *gorm.DB
	Router      *router.Router
	Registry    *prometheus.Registry
	RuleCache   *rule.RuleCache
	Seeder      *seed.Seeder
	Reenrich    *loader.ReenrichUseCase
	ReenrichJob *scheduler.ReenrichJob // nil when the schedule is disabled
	RateLimiter *middleware.RateLimiter
}

// NewInjector creates a new dependency injector with all dependencies wired.
// redisClient may be nil, in which case cache invalidation stays local to this
// process and load notifications are skipped.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Injector, error) {
	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	// Create repositories
	ruleRepo := persistence.NewRuleRepository(db)
	categoryRepo := persistence.NewCategoryRepository(db)
	factRepo := persistence.NewFactRepository(db)
	stagingRepo := persistence.NewStagingRepository(db)

	// Redis backed collaborators
	var bus adapter.RuleCacheBus
	var notifier adapter.AggregateNotifier
	if redisClient != nil {
		bus = cache.NewRuleCacheBus(redisClient, cfg.Redis.RulesInvalidateChannel)
		notifier = cache.NewAggregateNotifier(redisClient, cache.AggregateNotifierConfig{
			KeyPrefix:      cfg.Redis.AggregateKeyPrefix,
			LoadsChannel:   cfg.Redis.LoadsCompletedChannel,
			ScanBatchCount: cache.DefaultAggregateNotifierConfig().ScanBatchCount,
		})
	}

	matching := matchingConfig(cfg)
	fallback := fallbackPolicy(cfg)

	// Create rule use cases
	ruleCache := rule.NewRuleCache(ruleRepo, bus, metrics, rule.RuleCacheConfig{
		TTL:            cfg.Rules.CacheTTL,
		RetryInterval:  cfg.Rules.CacheRetryInterval,
		RefreshTimeout: cfg.Rules.CacheRefreshTimeout,
	})
	matcher := rule.NewMatcher(matching, rule.NewPatternCache(), metrics)
	ruleCache.OnRefresh(matcher.PrunePatterns)
	classifyUseCase := rule.NewClassifyUseCase(ruleCache, matcher, fallback, matching, metrics)
	recordCorrectionUseCase := rule.NewRecordCorrectionUseCase(ruleRepo, categoryRepo, ruleCache, metrics, rule.LearningConfig{
		DailyLimit:          cfg.Rules.LearnDailyLimit,
		MerchantPriority:    cfg.Rules.LearnMerchantPriority,
		DescriptionPriority: cfg.Rules.LearnDescriptionPriority,
	})
	listRulesUseCase := rule.NewListRulesUseCase(ruleRepo)
	createRuleUseCase := rule.NewCreateRuleUseCase(ruleRepo, categoryRepo, ruleCache, matching)
	deactivateRuleUseCase := rule.NewDeactivateRuleUseCase(ruleRepo, ruleCache)
	testPatternUseCase := rule.NewTestPatternUseCase(factRepo)

	// Create category use cases
	listCategoriesUseCase := category.NewListCategoriesUseCase(categoryRepo)
	createCategoryUseCase := category.NewCreateCategoryUseCase(categoryRepo)
	createSubcategoryUseCase := category.NewCreateSubcategoryUseCase(categoryRepo)
	updateCategoryUseCase := category.NewUpdateCategoryUseCase(categoryRepo)

	// Create loader use cases
	stageRowsUseCase := loader.NewStageRowsUseCase(stagingRepo)
	loadStagingUseCase := loader.NewLoadStagingUseCase(stagingRepo, factRepo, ruleCache, classifyUseCase, notifier, metrics, loader.Config{
		RowTimeout:     cfg.Loader.RowTimeout,
		MaxRowAttempts: cfg.Loader.MaxRowAttempts,
	})
	loadStatusUseCase := loader.NewLoadStatusUseCase(stagingRepo)
	reenrichUseCase := loader.NewReenrichUseCase(factRepo, classifyUseCase)

	// Create transaction use cases
	correctClassificationUseCase := transaction.NewCorrectClassificationUseCase(factRepo, categoryRepo, recordCorrectionUseCase)

	// Create controllers
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, redisHealthChecker(redisClient))

	classificationController := controller.NewClassificationController(
		classifyUseCase,
		recordCorrectionUseCase,
		correctClassificationUseCase,
	)
	loaderController := controller.NewLoaderController(
		stageRowsUseCase,
		loadStagingUseCase,
		loadStatusUseCase,
		reenrichUseCase,
	)
	ruleController := controller.NewRuleController(
		listRulesUseCase,
		createRuleUseCase,
		deactivateRuleUseCase,
		testPatternUseCase,
	)
	categoryController := controller.NewCategoryController(
		listCategoriesUseCase,
		createCategoryUseCase,
		createSubcategoryUseCase,
		updateCategoryUseCase,
	)

	// Create middleware
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Create router
	r := router.NewRouter(
		healthController,
		classificationController,
		loaderController,
		ruleController,
		categoryController,
		authMiddleware,
		rateLimiter,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	)

	// Scheduled re-enrichment
	var reenrichJob *scheduler.ReenrichJob
	if cfg.Reenrich.Enabled {
		job, err := scheduler.NewReenrichJob(reenrichUseCase, scheduler.ReenrichJobConfig{
			Schedule:  cfg.Reenrich.Schedule,
			TimeZone:  cfg.Reenrich.TimeZone,
			BatchSize: cfg.Reenrich.BatchSize,
			Timeout:   cfg.Reenrich.Timeout,
		})
		if err != nil {
			return nil, err
		}
		reenrichJob = job
	}

	return &Injector{
		Config:      cfg,
		DB:          db,
		Router:      r,
		Registry:    registry,
		RuleCache:   ruleCache,
		Seeder:      seed.NewSeeder(categoryRepo, ruleRepo),
		Reenrich:    reenrichUseCase,
		ReenrichJob: reenrichJob,
		RateLimiter: rateLimiter,
	}, nil
}

// Start seeds the catalogue when configured and launches the background workers.
// Workers stop when ctx is cancelled.
func (i *Injector) Start(ctx context.Context) error {
	if i.Config.Seed.OnStart {
		if err := i.SeedCatalogue(ctx); err != nil {
			return err
		}
	}

	go func() {
		if err := i.RuleCache.Listen(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Rule invalidation listener stopped", "error", err)
		}
	}()

	if i.ReenrichJob != nil {
		go i.ReenrichJob.Start(ctx)
	}

	go func() {
		ticker := time.NewTicker(rateLimiterCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				i.RateLimiter.Cleanup()
			}
		}
	}()

	return nil
}

// SeedCatalogue applies the embedded category and rule catalogue.
func (i *Injector) SeedCatalogue(ctx context.Context) error {
	catalogue, err := seed.DefaultCatalogue()
	if err != nil {
		return fmt.Errorf("failed to load seed catalogue: %w", err)
	}
	result, err := i.Seeder.Apply(ctx, catalogue)
	if err != nil {
		return fmt.Errorf("failed to seed catalogue: %w", err)
	}
	slog.Info("Seed catalogue applied",
		"categories", result.Categories,
		"subcategories", result.Subcategories,
		"rules", result.Rules,
	)
	return nil
}

func matchingConfig(cfg *config.Config) valueobject.MatchingConfig {
	matching := valueobject.DefaultMatchingConfig()
	if cfg.Rules.FuzzyThreshold > 0 {
		matching.FuzzyThreshold = cfg.Rules.FuzzyThreshold
	}
	if cfg.Rules.MaxPatternLength > 0 {
		matching.MaxPatternLength = cfg.Rules.MaxPatternLength
	}
	return matching
}

func fallbackPolicy(cfg *config.Config) valueobject.FallbackPolicy {
	policy := valueobject.DefaultFallbackPolicy()
	if cfg.Loader.FallbackCreditCategory != "" {
		policy.CreditCategory = cfg.Loader.FallbackCreditCategory
		policy.CreditSubcategory = cfg.Loader.FallbackCreditSubcategory
	}
	if cfg.Loader.FallbackDebitCategory != "" {
		policy.DebitCategory = cfg.Loader.FallbackDebitCategory
	}
	return policy
}

func redisHealthChecker(client *redis.Client) func() bool {
	if client == nil {
		return nil
	}
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err() == nil
	}
}
