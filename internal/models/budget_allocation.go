package models

import "time"

// AllocationStatus is the derived health of one budget category
type AllocationStatus string

const (
	AllocationStatusOnTrack AllocationStatus = "on_track"
	AllocationStatusWarning AllocationStatus = "warning"
	AllocationStatusOver    AllocationStatus = "over"
)

type BudgetAllocation struct {
	ID               int              `json:"id"`
	EventID          int              `json:"event_id"`
	Category         BudgetCategory   `json:"category"`
	AllocatedAmount  float64          `json:"allocated_amount"`
	AllocatedPercent float64          `json:"allocated_percent"` // of the event's total budget
	SpentAmount      float64          `json:"spent_amount"`      // derived from the assignment ledger, never edited
	Status           AllocationStatus `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// SetAllocationRequest represents the request body for a manual per-category edit
type SetAllocationRequest struct {
	Category BudgetCategory `json:"category"`
	Amount   float64        `json:"amount"`
}

// InitializeBudgetRequest represents the request body for (re)initializing an event budget
type InitializeBudgetRequest struct {
	TotalBudget float64 `json:"total_budget"`
}

// BudgetSummary is the aggregate read-only view across all nine categories.
// total_spent is the total paid to vendors; spend and paid are the same number
// since every rupee spent flows through an assignment payment.
type BudgetSummary struct {
	EventID        int     `json:"event_id"`
	TotalBudget    float64 `json:"total_budget"`
	TotalAllocated float64 `json:"total_allocated"`
	TotalCommitted float64 `json:"total_committed"`
	TotalSpent     float64 `json:"total_spent"`
	WarningCount   int     `json:"warning_count"`
	OverCount      int     `json:"over_count"`
}

// BudgetWeights maps each category to its share of the total budget.
// The defaults live in config; weights must sum to 1.0.
type BudgetWeights map[BudgetCategory]float64

// DefaultBudgetWeights is the stock distribution applied when config does not override it
var DefaultBudgetWeights = BudgetWeights{
	BudgetCategoryVenue:         0.30,
	BudgetCategoryFood:          0.25,
	BudgetCategoryDecor:         0.10,
	BudgetCategoryEntertainment: 0.10,
	BudgetCategoryPhotography:   0.08,
	BudgetCategoryBridal:        0.07,
	BudgetCategoryLogistics:     0.05,
	BudgetCategoryGuest:         0.03,
	BudgetCategoryMisc:          0.02,
}

// DeriveAllocationStatus computes category health from the spent/allocated ratio.
// warnAt and overAt are ratios (default 0.80 and 1.00). Zero allocation with zero
// spend is on track; any spend against a zero allocation is over.
func DeriveAllocationStatus(spent, allocated, warnAt, overAt float64) AllocationStatus {
	if allocated <= 0 {
		if spent > 0 {
			return AllocationStatusOver
		}
		return AllocationStatusOnTrack
	}
	ratio := spent / allocated
	if ratio > overAt {
		return AllocationStatusOver
	}
	if ratio >= warnAt {
		return AllocationStatusWarning
	}
	return AllocationStatusOnTrack
}
