package rule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

type fakeRuleRepo struct {
	mu        sync.Mutex
	rules     []*entity.Rule
	findCalls int
	findErr   error
	countErr  error
}

func (f *fakeRuleRepo) FindActiveForScope(_ context.Context, scope entity.Scope) ([]*entity.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*entity.Rule
	for _, r := range f.rules {
		if r.Active && (r.Scope == scope || r.Scope.IsGlobal()) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeRuleRepo) FindByScope(_ context.Context, scope entity.Scope) ([]*entity.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Rule
	for _, r := range f.rules {
		if r.Scope == scope {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domainerror.ErrRuleNotFound
}

func (f *fakeRuleRepo) Upsert(_ context.Context, rule *entity.Rule) (*entity.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rules {
		if r.Scope == rule.Scope && r.AppliesTo == rule.AppliesTo && r.PatternFingerprint == rule.PatternFingerprint {
			r.CategoryCode = rule.CategoryCode
			r.SubcategoryCode = rule.SubcategoryCode
			r.Priority = rule.Priority
			r.Provenance = rule.Provenance
			r.Active = true
			r.UpdatedAt = rule.UpdatedAt
			return r, nil
		}
	}
	f.rules = append(f.rules, rule)
	return rule, nil
}

func (f *fakeRuleRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rules {
		if r.ID == id {
			r.Active = false
			return nil
		}
	}
	return domainerror.ErrRuleNotFound
}

func (f *fakeRuleRepo) CountLearnedSince(_ context.Context, actor uuid.UUID, scope entity.Scope, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	var n int64
	for _, r := range f.rules {
		if r.Provenance == entity.ProvenanceLearned && r.Scope == scope &&
			r.CreatedBy != nil && *r.CreatedBy == actor && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRuleRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findCalls
}

type fakeCategoryRepo struct {
	categories    map[string]*entity.Category
	subcategories map[string]*entity.Subcategory
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	f := &fakeCategoryRepo{
		categories:    map[string]*entity.Category{},
		subcategories: map[string]*entity.Subcategory{},
	}
	for _, c := range []*entity.Category{
		entity.NewCategory("shopping", "Shopping", entity.BucketWants, 10),
		entity.NewCategory("dining", "Dining", entity.BucketWants, 20),
		entity.NewCategory("transfers", "Transfers", entity.BucketTransfers, 30),
	} {
		f.categories[c.Code] = c
	}
	retired := entity.NewCategory("retired", "Retired", entity.BucketWants, 99)
	retired.Active = false
	f.categories[retired.Code] = retired

	for _, s := range []*entity.Subcategory{
		entity.NewSubcategory("online_shopping", "shopping", "Online Shopping", 1),
		entity.NewSubcategory("food_delivery", "dining", "Food Delivery", 1),
	} {
		f.subcategories[s.Code] = s
	}
	return f
}

func (f *fakeCategoryRepo) FindByCode(_ context.Context, code string) (*entity.Category, error) {
	if c, ok := f.categories[code]; ok {
		return c, nil
	}
	return nil, domainerror.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) FindSubcategoryByCode(_ context.Context, code string) (*entity.Subcategory, error) {
	if s, ok := f.subcategories[code]; ok {
		return s, nil
	}
	return nil, domainerror.ErrSubcategoryNotFound
}

func (f *fakeCategoryRepo) ListWithSubcategories(context.Context, bool) ([]*entity.CategoryWithSubcategories, error) {
	return nil, nil
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	f.categories[c.Code] = c
	return nil
}

func (f *fakeCategoryRepo) CreateSubcategory(_ context.Context, s *entity.Subcategory) error {
	f.subcategories[s.Code] = s
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, c *entity.Category) error {
	f.categories[c.Code] = c
	return nil
}

func (f *fakeCategoryRepo) EnsureCategory(_ context.Context, c *entity.Category) (*entity.Category, error) {
	if existing, ok := f.categories[c.Code]; ok {
		return existing, nil
	}
	f.categories[c.Code] = c
	return c, nil
}

func (f *fakeCategoryRepo) EnsureSubcategory(_ context.Context, s *entity.Subcategory) (*entity.Subcategory, error) {
	if existing, ok := f.subcategories[s.Code]; ok {
		return existing, nil
	}
	f.subcategories[s.Code] = s
	return s, nil
}

type fakeBus struct {
	mu        sync.Mutex
	published []entity.Scope
	err       error
}

func (b *fakeBus) Publish(_ context.Context, scope entity.Scope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, scope)
	return b.err
}

func (b *fakeBus) Subscribe(ctx context.Context, _ func(entity.Scope)) error {
	<-ctx.Done()
	return nil
}

type recordingMetrics struct {
	mu        sync.Mutex
	malformed int
	stale     int
	timeouts  int
	learn     map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{learn: map[string]int{}}
}

func (m *recordingMetrics) MalformedRule(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malformed++
}

func (m *recordingMetrics) ClassificationTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts++
}

func (m *recordingMetrics) StaleRulesServed(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale++
}

func (m *recordingMetrics) Classified(string) {}

func (m *recordingMetrics) LearnOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.learn[outcome]++
}

func (m *recordingMetrics) LoaderRow(string) {}

func strPtr(s string) *string { return &s }

func newTestRule(appliesTo entity.AppliesTo, pattern, category string, priority int, scope entity.Scope, provenance entity.Provenance) *entity.Rule {
	return entity.NewRule(appliesTo, pattern, category, nil, priority, scope, provenance, nil)
}
