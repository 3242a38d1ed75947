package models

import "strings"

// BudgetCategory is one of the nine fixed buckets an event budget is split across
type BudgetCategory string

const (
	BudgetCategoryVenue         BudgetCategory = "venue"
	BudgetCategoryFood          BudgetCategory = "food"
	BudgetCategoryDecor         BudgetCategory = "decor"
	BudgetCategoryEntertainment BudgetCategory = "entertainment"
	BudgetCategoryPhotography   BudgetCategory = "photography"
	BudgetCategoryBridal        BudgetCategory = "bridal"
	BudgetCategoryLogistics     BudgetCategory = "logistics"
	BudgetCategoryGuest         BudgetCategory = "guest"
	BudgetCategoryMisc          BudgetCategory = "misc"
)

// AllBudgetCategories lists every category in display order.
// Budget initialization always produces exactly this set.
var AllBudgetCategories = []BudgetCategory{
	BudgetCategoryVenue,
	BudgetCategoryFood,
	BudgetCategoryDecor,
	BudgetCategoryEntertainment,
	BudgetCategoryPhotography,
	BudgetCategoryBridal,
	BudgetCategoryLogistics,
	BudgetCategoryGuest,
	BudgetCategoryMisc,
}

// IsValid reports whether c is one of the nine canonical categories
func (c BudgetCategory) IsValid() bool {
	for _, bc := range AllBudgetCategories {
		if c == bc {
			return true
		}
	}
	return false
}

// serviceCategoryAliases maps normalized vendor service categories to budget buckets.
// Keys must be lowercase.
var serviceCategoryAliases = map[string]BudgetCategory{
	"venue":            BudgetCategoryVenue,
	"banquet":          BudgetCategoryVenue,
	"banquet hall":     BudgetCategoryVenue,
	"farmhouse":        BudgetCategoryVenue,
	"lawn":             BudgetCategoryVenue,
	"hotel":            BudgetCategoryVenue,
	"food":             BudgetCategoryFood,
	"catering":         BudgetCategoryFood,
	"caterer":          BudgetCategoryFood,
	"sweets":           BudgetCategoryFood,
	"bartender":        BudgetCategoryFood,
	"decor":            BudgetCategoryDecor,
	"decoration":       BudgetCategoryDecor,
	"decorator":        BudgetCategoryDecor,
	"florist":          BudgetCategoryDecor,
	"flowers":          BudgetCategoryDecor,
	"lighting":         BudgetCategoryDecor,
	"tent":             BudgetCategoryDecor,
	"entertainment":    BudgetCategoryEntertainment,
	"dj":               BudgetCategoryEntertainment,
	"music":            BudgetCategoryEntertainment,
	"band":             BudgetCategoryEntertainment,
	"live band":        BudgetCategoryEntertainment,
	"anchor":           BudgetCategoryEntertainment,
	"choreographer":    BudgetCategoryEntertainment,
	"photography":      BudgetCategoryPhotography,
	"photographer":     BudgetCategoryPhotography,
	"videography":      BudgetCategoryPhotography,
	"videographer":     BudgetCategoryPhotography,
	"drone":            BudgetCategoryPhotography,
	"bridal":           BudgetCategoryBridal,
	"makeup":           BudgetCategoryBridal,
	"makeup artist":    BudgetCategoryBridal,
	"mehendi":          BudgetCategoryBridal,
	"salon":            BudgetCategoryBridal,
	"jewellery":        BudgetCategoryBridal,
	"logistics":        BudgetCategoryLogistics,
	"transport":        BudgetCategoryLogistics,
	"transportation":   BudgetCategoryLogistics,
	"travel":           BudgetCategoryLogistics,
	"security":         BudgetCategoryLogistics,
	"valet":            BudgetCategoryLogistics,
	"guest":            BudgetCategoryGuest,
	"guest management": BudgetCategoryGuest,
	"accommodation":    BudgetCategoryGuest,
	"hospitality":      BudgetCategoryGuest,
	"invitations":      BudgetCategoryGuest,
	"invites":          BudgetCategoryGuest,
}

// MapServiceCategory maps a free-text vendor service category to a budget bucket.
// Total: anything unrecognized lands in misc, it never fails.
func MapServiceCategory(raw string) BudgetCategory {
	key := strings.ToLower(strings.TrimSpace(raw))
	if cat, ok := serviceCategoryAliases[key]; ok {
		return cat
	}
	// Already-canonical input passes through
	if c := BudgetCategory(key); c.IsValid() {
		return c
	}
	return BudgetCategoryMisc
}
