package valueobject

import (
	"testing"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

func TestFallbackPolicy_Classify(t *testing.T) {
	p := DefaultFallbackPolicy()

	tests := []struct {
		name        string
		merchant    string
		description string
		direction   entity.Direction
		wantCat     string
		wantSub     string
	}{
		{"credit from person is a transfer", "SHAKEEL MOHAMMAD", "", entity.DirectionCredit, "transfers", "p2p_transfer"},
		{"credit from company is income", "MAGNATEPOINT TECHNOLOGIES PRIVATE L", "", entity.DirectionCredit, "income", "salary"},
		{"unknown credit never becomes shopping", "", "NEFT CR-XYZ", entity.DirectionCredit, "transfers", "p2p_transfer"},
		{"food delivery debit", "SWIGGY", "", entity.DirectionDebit, "dining", "food_delivery"},
		{"phrase keyword", "", "PAYMENT TO AIR INDIA LTD", entity.DirectionDebit, "flight", ""},
		{"keyword needs a whole word", "OLAMART", "", entity.DirectionDebit, "shopping", ""},
		{"description used when merchant has no keyword", "ACME", "UPI-IRCTC-TICKET", entity.DirectionDebit, "train", ""},
		{"unknown debit defaults to shopping", "SHOBA ENT", "", entity.DirectionDebit, "shopping", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, sub := p.Classify(tt.merchant, tt.description, tt.direction)
			if cat != tt.wantCat {
				t.Errorf("category = %q, want %q", cat, tt.wantCat)
			}
			gotSub := ""
			if sub != nil {
				gotSub = *sub
			}
			if gotSub != tt.wantSub {
				t.Errorf("subcategory = %q, want %q", gotSub, tt.wantSub)
			}
		})
	}
}

func TestMatchingConfig_AcceptsFuzzy(t *testing.T) {
	c := DefaultMatchingConfig()
	if c.AcceptsFuzzy(0.75) {
		t.Error("score equal to the threshold must not be accepted")
	}
	if !c.AcceptsFuzzy(0.80) {
		t.Error("0.80 should be accepted")
	}
	if c.AcceptsFuzzy(0.70) {
		t.Error("0.70 should be rejected")
	}
}
