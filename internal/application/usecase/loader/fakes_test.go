package loader

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/application/usecase/rule"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

type fakeStagingRepo struct {
	mu        sync.Mutex
	rows      []*entity.StagingRow
	createErr error
}

func (f *fakeStagingRepo) CreateBatch(_ context.Context, rows []*entity.StagingRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeStagingRepo) FindPendingByUser(_ context.Context, userID uuid.UUID) ([]*entity.StagingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.StagingRow
	for _, r := range f.rows {
		if r.UserID == userID && r.ParsedOK && r.ProcessedAt == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStagingRepo) MarkProcessed(_ context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markLocked(ids)
	return nil
}

func (f *fakeStagingRepo) RecordLoadFailure(_ context.Context, id uuid.UUID, loadErr string, park bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID != id || r.ProcessedAt != nil {
			continue
		}
		r.LoadAttempts++
		r.LoadError = loadErr
		if park {
			now := time.Now().UTC()
			r.ProcessedAt = &now
		}
	}
	return nil
}

func (f *fakeStagingRepo) markLocked(ids []uuid.UUID) {
	now := time.Now().UTC()
	for _, id := range ids {
		for _, r := range f.rows {
			if r.ID == id {
				r.ProcessedAt = &now
				r.LoadError = ""
			}
		}
	}
}

func (f *fakeStagingRepo) Status(_ context.Context, userID uuid.UUID) (*entity.StagingStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := &entity.StagingStatus{}
	for _, r := range f.rows {
		if r.UserID != userID {
			continue
		}
		status.StagingTotal++
		switch {
		case !r.ParsedOK:
			status.StagingInvalid++
		case r.ProcessedAt == nil:
			status.StagingPending++
		case r.LoadError != "":
			status.StagingFailed++
		}
	}
	return status, nil
}

// fakeFactRepo keeps facts in memory and marks staging rows through the shared staging fake,
// the same way the database commits both in one transaction.
type fakeFactRepo struct {
	mu          sync.Mutex
	staging     *fakeStagingRepo
	facts       []*entity.FactWithEnrichment
	categories  map[string]*entity.Category
	insertErr   error
	existsErr   error
	rejectFn    func(*entity.Fact) error
	raceOnce    bool
	replaceCall int
}

func newFakeFactRepo(staging *fakeStagingRepo) *fakeFactRepo {
	return &fakeFactRepo{staging: staging, categories: map[string]*entity.Category{}}
}

func (f *fakeFactRepo) ExistsByFingerprint(_ context.Context, userID uuid.UUID, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, fe := range f.facts {
		if fe.Fact.UserID == userID && fe.Fact.ContentFingerprint == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFactRepo) InsertLoaded(_ context.Context, loaded *entity.LoadedFact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.rejectFn != nil {
		if err := f.rejectFn(loaded.Fact); err != nil {
			return err
		}
	}
	if f.raceOnce {
		f.raceOnce = false
		return domainerror.ErrDuplicateFact
	}
	for _, fe := range f.facts {
		if fe.Fact.UserID == loaded.Fact.UserID && fe.Fact.ContentFingerprint == loaded.Fact.ContentFingerprint {
			return domainerror.ErrDuplicateFact
		}
	}
	if _, ok := f.categories[loaded.Category.Code]; !ok {
		f.categories[loaded.Category.Code] = loaded.Category
	}
	f.facts = append(f.facts, &entity.FactWithEnrichment{Fact: loaded.Fact, Enrichment: loaded.Enrichment})
	f.staging.mu.Lock()
	f.staging.markLocked([]uuid.UUID{loaded.StagingID})
	f.staging.mu.Unlock()
	return nil
}

func (f *fakeFactRepo) FindByID(_ context.Context, userID, factID uuid.UUID) (*entity.FactWithEnrichment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fe := range f.facts {
		if fe.Fact.ID == factID && fe.Fact.UserID == userID {
			return fe, nil
		}
	}
	return nil, domainerror.ErrFactNotFound
}

func (f *fakeFactRepo) List(_ context.Context, filter adapter.FactFilter) ([]*entity.FactWithEnrichment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sorted := append([]*entity.FactWithEnrichment(nil), f.facts...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Fact.ID.String() < sorted[j].Fact.ID.String()
	})
	var out []*entity.FactWithEnrichment
	for _, fe := range sorted {
		if filter.UserID != nil && fe.Fact.UserID != *filter.UserID {
			continue
		}
		if filter.AfterID != nil && fe.Fact.ID.String() <= filter.AfterID.String() {
			continue
		}
		out = append(out, fe)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeFactRepo) FindRecentByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entity.Fact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Fact
	for i := len(f.facts) - 1; i >= 0 && len(out) < limit; i-- {
		if f.facts[i].Fact.UserID == userID {
			out = append(out, f.facts[i].Fact)
		}
	}
	return out, nil
}

func (f *fakeFactRepo) ReplaceEnrichments(_ context.Context, replacements []*entity.LoadedFact) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCall++
	updated := 0
	for _, r := range replacements {
		for _, fe := range f.facts {
			if fe.Fact.ID != r.Fact.ID {
				continue
			}
			if fe.Enrichment != nil && fe.Enrichment.IsManual() && !r.Enrichment.IsManual() {
				continue
			}
			fe.Enrichment = r.Enrichment
			updated++
		}
	}
	return updated, nil
}

// keywordClassifier assigns dining to anything mentioning ZOMATO and shopping otherwise.
type keywordClassifier struct {
	mu     sync.Mutex
	calls  int
	err    error
	ruleID uuid.UUID
}

func (c *keywordClassifier) Execute(_ context.Context, input rule.ClassifyInput) (*rule.ClassifyOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	if containsFold(input.MerchantRaw, "zomato") || containsFold(input.Description, "zomato") {
		ruleID := c.ruleID
		sub := "food_delivery"
		return &rule.ClassifyOutput{Classification: &entity.Classification{
			CategoryCode:    "dining",
			SubcategoryCode: &sub,
			Confidence:      0.9,
			MatchedRuleID:   &ruleID,
			Source:          entity.EnrichmentSourceRule,
		}}, nil
	}
	return &rule.ClassifyOutput{Classification: &entity.Classification{
		CategoryCode: "shopping",
		Confidence:   0.5,
		Source:       entity.EnrichmentSourceFallback,
	}}, nil
}

type fakeRuleSource struct {
	err error
}

func (f *fakeRuleSource) Get(context.Context, entity.Scope) ([]*entity.Rule, error) {
	return nil, f.err
}

type fakeNotifier struct {
	mu          sync.Mutex
	invalidated []string
	events      []adapter.LoadCompletedEvent
	err         error
}

func (n *fakeNotifier) InvalidateAggregates(_ context.Context, userID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalidated = append(n.invalidated, userID)
	return n.err
}

func (n *fakeNotifier) PublishLoadCompleted(_ context.Context, event adapter.LoadCompletedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

type rowMetrics struct {
	adapter.NopMetrics
	mu   sync.Mutex
	rows map[string]int
}

func (m *rowMetrics) LoaderRow(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[string]int{}
	}
	m.rows[outcome]++
}

func newRow(userID uuid.UUID, day int, amount string, merchant, description string) *entity.StagingRow {
	return entity.NewStagingRow(
		uuid.New(),
		userID,
		time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString(amount),
		entity.DirectionDebit,
		merchant,
		description,
	)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
