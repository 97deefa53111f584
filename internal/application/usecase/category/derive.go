// Package category contains category-related use cases.
package category

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

var codePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

// bucketByCode is the bucket given to categories that are created implicitly.
var bucketByCode = map[string]entity.Bucket{
	"dining":      entity.BucketWants,
	"groceries":   entity.BucketNeeds,
	"shopping":    entity.BucketWants,
	"utilities":   entity.BucketNeeds,
	"bills":       entity.BucketNeeds,
	"auto_taxi":   entity.BucketNeeds,
	"flight":      entity.BucketWants,
	"train":       entity.BucketNeeds,
	"travel":      entity.BucketWants,
	"rent":        entity.BucketNeeds,
	"health":      entity.BucketNeeds,
	"investments": entity.BucketAssets,
	"savings":     entity.BucketAssets,
	"income":      entity.BucketIncome,
	"transfers":   entity.BucketTransfers,
	"others":      entity.BucketWants,
}

// IsValidCode reports whether code is a lowercase snake_case identifier.
func IsValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// DisplayName derives a display name from a code: "auto_taxi" becomes "Auto Taxi".
func DisplayName(code string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(code, "_", " "))
}

// DeriveCategory builds the category row created when a classification names an unknown code.
func DeriveCategory(code string) *entity.Category {
	bucket, ok := bucketByCode[code]
	if !ok {
		bucket = entity.BucketWants
	}
	return entity.NewCategory(code, DisplayName(code), bucket, entity.DefaultDisplayOrder)
}

// DeriveSubcategory builds the subcategory row created when a classification names an unknown code.
func DeriveSubcategory(code, categoryCode string) *entity.Subcategory {
	return entity.NewSubcategory(code, categoryCode, DisplayName(code), entity.DefaultDisplayOrder)
}
