package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

func TestRuleRepository(t *testing.T) {
	ctx := context.Background()
	tenant := entity.Scope("tenant-a")

	t.Run("upsert keeps one rule per pattern and scope", func(t *testing.T) {
		repo := NewRuleRepository(newTestDB(t))
		actor := uuid.New()

		first, err := repo.Upsert(ctx, entity.NewRule(entity.AppliesToMerchant, `(?i)\bZOMATO\b`, "dining", nil, 10, tenant, entity.ProvenanceLearned, &actor))
		require.NoError(t, err)

		sub := "food_delivery"
		second, err := repo.Upsert(ctx, entity.NewRule(entity.AppliesToMerchant, `(?i)\bZOMATO\b`, "dining", &sub, 8, tenant, entity.ProvenanceOps, nil))
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 8, second.Priority)
		assert.Equal(t, entity.ProvenanceOps, second.Provenance)
		require.NotNil(t, second.SubcategoryCode)
		assert.Equal(t, "food_delivery", *second.SubcategoryCode)

		rules, err := repo.FindByScope(ctx, tenant)
		require.NoError(t, err)
		assert.Len(t, rules, 1)
	})

	t.Run("same pattern in another scope is a separate rule", func(t *testing.T) {
		repo := NewRuleRepository(newTestDB(t))

		a, err := repo.Upsert(ctx, entity.NewRule(entity.AppliesToMerchant, `(?i)\bUBER\b`, "auto_taxi", nil, 20, tenant, entity.ProvenanceOps, nil))
		require.NoError(t, err)
		b, err := repo.Upsert(ctx, entity.NewRule(entity.AppliesToMerchant, `(?i)\bUBER\b`, "auto_taxi", nil, 20, entity.GlobalScope, entity.ProvenanceSeed, nil))
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("active rules for a scope include global in priority order", func(t *testing.T) {
		repo := NewRuleRepository(newTestDB(t))
		seed := func(pattern string, priority int, scope entity.Scope) *entity.Rule {
			r, err := repo.Upsert(ctx, entity.NewRule(entity.AppliesToMerchant, pattern, "shopping", nil, priority, scope, entity.ProvenanceSeed, nil))
			require.NoError(t, err)
			return r
		}
		global := seed("GLOBAL", 50, entity.GlobalScope)
		own := seed("OWN", 10, tenant)
		seed("OTHER", 1, "tenant-b")
		inactive := seed("OFF", 5, tenant)
		require.NoError(t, repo.Deactivate(ctx, inactive.ID))

		rules, err := repo.FindActiveForScope(ctx, tenant)

		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, own.ID, rules[0].ID)
		assert.Equal(t, global.ID, rules[1].ID)

		globalOnly, err := repo.FindActiveForScope(ctx, entity.GlobalScope)
		require.NoError(t, err)
		assert.Len(t, globalOnly, 1)
	})

	t.Run("ties on priority prefer the newest rule", func(t *testing.T) {
		repo := NewRuleRepository(newTestDB(t))
		older := entity.NewRule(entity.AppliesToMerchant, "OLD", "shopping", nil, 10, tenant, entity.ProvenanceSeed, nil)
		older.CreatedAt = time.Now().UTC().Add(-time.Hour)
		_, err := repo.Upsert(ctx, older)
		require.NoError(t, err)
		newer, err := repo.Upsert(ctx, entity.NewRule(entity.AppliesToMerchant, "NEW", "shopping", nil, 10, tenant, entity.ProvenanceSeed, nil))
		require.NoError(t, err)

		rules, err := repo.FindActiveForScope(ctx, tenant)

		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, newer.ID, rules[0].ID)
	})

	t.Run("deactivate unknown rule", func(t *testing.T) {
		repo := NewRuleRepository(newTestDB(t))

		err := repo.Deactivate(ctx, uuid.New())

		assert.ErrorIs(t, err, domainerror.ErrRuleNotFound)
	})

	t.Run("find by id", func(t *testing.T) {
		repo := NewRuleRepository(newTestDB(t))
		stored, err := repo.Upsert(ctx, entity.NewRule(entity.AppliesToDescription, "RENT", "rent", nil, 30, tenant, entity.ProvenanceOps, nil))
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, stored.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.AppliesToDescription, found.AppliesTo)
		assert.True(t, found.Active)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domainerror.ErrRuleNotFound)
	})

	t.Run("counts learned rules per actor and scope", func(t *testing.T) {
		repo := NewRuleRepository(newTestDB(t))
		actor := uuid.New()
		dayStart := time.Now().UTC().Truncate(24 * time.Hour)

		for _, pattern := range []string{"A1", "A2", "A3"} {
			_, err := repo.Upsert(ctx, entity.NewRule(entity.AppliesToMerchant, pattern, "shopping", nil, 10, tenant, entity.ProvenanceLearned, &actor))
			require.NoError(t, err)
		}
		other := uuid.New()
		_, err := repo.Upsert(ctx, entity.NewRule(entity.AppliesToMerchant, "B1", "shopping", nil, 10, tenant, entity.ProvenanceLearned, &other))
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, entity.NewRule(entity.AppliesToMerchant, "C1", "shopping", nil, 50, tenant, entity.ProvenanceOps, &actor))
		require.NoError(t, err)

		count, err := repo.CountLearnedSince(ctx, actor, tenant, dayStart)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		count, err = repo.CountLearnedSince(ctx, actor, "tenant-b", dayStart)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
