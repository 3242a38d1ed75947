package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapServiceCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want BudgetCategory
	}{
		{"Catering", BudgetCategoryFood},
		{"caterer", BudgetCategoryFood},
		{"DJ", BudgetCategoryEntertainment},
		{"Live Band", BudgetCategoryEntertainment},
		{"Videographer", BudgetCategoryPhotography},
		{"drone", BudgetCategoryPhotography},
		{"Makeup Artist", BudgetCategoryBridal},
		{"mehendi", BudgetCategoryBridal},
		{"Banquet Hall", BudgetCategoryVenue},
		{"  farmhouse  ", BudgetCategoryVenue},
		{"Transportation", BudgetCategoryLogistics},
		{"valet", BudgetCategoryLogistics},
		{"Invitations", BudgetCategoryGuest},
		{"accommodation", BudgetCategoryGuest},
		{"Florist", BudgetCategoryDecor},
		{"tent", BudgetCategoryDecor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapServiceCategory(tt.raw), "raw=%q", tt.raw)
	}
}

func TestMapServiceCategoryCanonicalPassthrough(t *testing.T) {
	for _, c := range AllBudgetCategories {
		assert.Equal(t, c, MapServiceCategory(string(c)))
	}
}

func TestMapServiceCategoryUnknownFallsBackToMisc(t *testing.T) {
	assert.Equal(t, BudgetCategoryMisc, MapServiceCategory("fire breather"))
	assert.Equal(t, BudgetCategoryMisc, MapServiceCategory(""))
	assert.Equal(t, BudgetCategoryMisc, MapServiceCategory("???"))
}

func TestBudgetCategoryIsValid(t *testing.T) {
	for _, c := range AllBudgetCategories {
		assert.True(t, c.IsValid(), "category %s", c)
	}
	assert.False(t, BudgetCategory("catering").IsValid())
	assert.False(t, BudgetCategory("").IsValid())
}

func TestDefaultBudgetWeightsCoverAllCategories(t *testing.T) {
	var sum float64
	for _, c := range AllBudgetCategories {
		w, ok := DefaultBudgetWeights[c]
		assert.True(t, ok, "missing weight for %s", c)
		assert.Greater(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Len(t, DefaultBudgetWeights, len(AllBudgetCategories))
}

func TestDeriveAllocationStatus(t *testing.T) {
	tests := []struct {
		name      string
		spent     float64
		allocated float64
		want      AllocationStatus
	}{
		{"no spend", 0, 1000, AllocationStatusOnTrack},
		{"below warn", 799.99, 1000, AllocationStatusOnTrack},
		{"at warn threshold", 800, 1000, AllocationStatusWarning},
		{"between warn and over", 950, 1000, AllocationStatusWarning},
		{"exactly at budget", 1000, 1000, AllocationStatusWarning},
		{"over budget", 1000.01, 1000, AllocationStatusOver},
		{"zero allocation no spend", 0, 0, AllocationStatusOnTrack},
		{"zero allocation with spend", 1, 0, AllocationStatusOver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveAllocationStatus(tt.spent, tt.allocated, 0.80, 1.00)
			assert.Equal(t, tt.want, got)
		})
	}
}
