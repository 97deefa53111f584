// Package seed loads the reference category catalogue and global seed rules.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/application/usecase/category"
	"github.com/finance-tracker/categorizer/internal/application/usecase/rule"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// Catalogue is the seed document.
type Catalogue struct {
	Categories []CategorySeed `yaml:"categories"`
	Rules      []RuleSeed     `yaml:"rules"`
}

// CategorySeed is one category with its subcategories.
type CategorySeed struct {
	Code          string            `yaml:"code"`
	Name          string            `yaml:"name"`
	Bucket        string            `yaml:"bucket"`
	DisplayOrder  int               `yaml:"display_order"`
	Subcategories []SubcategorySeed `yaml:"subcategories"`
}

// SubcategorySeed is one subcategory.
type SubcategorySeed struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// RuleSeed is one global seed rule.
type RuleSeed struct {
	AppliesTo   string `yaml:"applies_to"`
	Pattern     string `yaml:"pattern"`
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
	Priority    int    `yaml:"priority"`
}

// Result counts the rows a seeding run ensured. Rules counts new rules only.
type Result struct {
	Categories    int
	Subcategories int
	Rules         int
}

// DefaultCatalogue parses the embedded catalogue.
func DefaultCatalogue() (*Catalogue, error) {
	return Parse(defaultCatalogue)
}

// Parse decodes and validates a catalogue document.
func Parse(data []byte) (*Catalogue, error) {
	var catalogue Catalogue
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("failed to decode seed catalogue: %w", err)
	}
	if err := catalogue.validate(); err != nil {
		return nil, err
	}
	return &catalogue, nil
}

func (c *Catalogue) validate() error {
	var errs []error
	parents := make(map[string]string)
	for _, cat := range c.Categories {
		if !category.IsValidCode(cat.Code) {
			errs = append(errs, fmt.Errorf("category %q: invalid code", cat.Code))
		}
		if !entity.Bucket(cat.Bucket).IsValid() {
			errs = append(errs, fmt.Errorf("category %q: invalid bucket %q", cat.Code, cat.Bucket))
		}
		parents[cat.Code] = ""
		for _, sub := range cat.Subcategories {
			if !category.IsValidCode(sub.Code) {
				errs = append(errs, fmt.Errorf("subcategory %q: invalid code", sub.Code))
			}
			if _, dup := parents[sub.Code]; dup {
				errs = append(errs, fmt.Errorf("subcategory %q: code already used", sub.Code))
			}
			parents[sub.Code] = cat.Code
		}
	}

	for i, r := range c.Rules {
		if r.AppliesTo != string(entity.AppliesToMerchant) && r.AppliesTo != string(entity.AppliesToDescription) {
			errs = append(errs, fmt.Errorf("rule %d: invalid applies_to %q", i, r.AppliesTo))
		}
		if _, err := rule.CompilePattern(r.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i, err))
		}
		if parent, ok := parents[r.Category]; !ok || parent != "" {
			errs = append(errs, fmt.Errorf("rule %d: unknown category %q", i, r.Category))
		}
		if r.Subcategory != "" && parents[r.Subcategory] != r.Category {
			errs = append(errs, fmt.Errorf("rule %d: subcategory %q is not under %q", i, r.Subcategory, r.Category))
		}
	}
	return errors.Join(errs...)
}

// Seeder writes a catalogue into the stores.
type Seeder struct {
	categoryRepo adapter.CategoryRepository
	ruleRepo     adapter.RuleRepository
}

// NewSeeder creates a new Seeder instance.
func NewSeeder(categoryRepo adapter.CategoryRepository, ruleRepo adapter.RuleRepository) *Seeder {
	return &Seeder{
		categoryRepo: categoryRepo,
		ruleRepo:     ruleRepo,
	}
}

// Apply inserts missing categories, subcategories and global rules. Existing rows are never
// modified, so ops edits and deactivations survive restarts.
func (s *Seeder) Apply(ctx context.Context, catalogue *Catalogue) (*Result, error) {
	result := &Result{}

	for _, cat := range catalogue.Categories {
		if _, err := s.categoryRepo.EnsureCategory(ctx,
			entity.NewCategory(cat.Code, cat.Name, entity.Bucket(cat.Bucket), cat.DisplayOrder)); err != nil {
			return result, fmt.Errorf("failed to seed category %s: %w", cat.Code, err)
		}
		result.Categories++

		for i, sub := range cat.Subcategories {
			if _, err := s.categoryRepo.EnsureSubcategory(ctx,
				entity.NewSubcategory(sub.Code, cat.Code, sub.Name, (i+1)*10)); err != nil {
				return result, fmt.Errorf("failed to seed subcategory %s: %w", sub.Code, err)
			}
			result.Subcategories++
		}
	}

	existing, err := s.ruleRepo.FindByScope(ctx, entity.GlobalScope)
	if err != nil {
		return result, fmt.Errorf("failed to load global rules: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		known[string(r.AppliesTo)+"|"+r.PatternFingerprint] = struct{}{}
	}

	for _, seed := range catalogue.Rules {
		appliesTo := entity.AppliesTo(seed.AppliesTo)
		key := seed.AppliesTo + "|" + entity.PatternFingerprint(seed.Pattern)
		if _, ok := known[key]; ok {
			continue
		}

		var subcategory *string
		if seed.Subcategory != "" {
			sub := seed.Subcategory
			subcategory = &sub
		}
		r := entity.NewRule(appliesTo, seed.Pattern, seed.Category, subcategory, seed.Priority,
			entity.GlobalScope, entity.ProvenanceSeed, nil)
		if _, err := s.ruleRepo.Upsert(ctx, r); err != nil {
			return result, fmt.Errorf("failed to seed rule %q: %w", seed.Pattern, err)
		}
		known[key] = struct{}{}
		result.Rules++
	}

	slog.Info("Seed catalogue applied",
		"categories", result.Categories,
		"subcategories", result.Subcategories,
		"new_rules", result.Rules,
	)
	return result, nil
}
