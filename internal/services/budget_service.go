package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"

	"utsav-backend/internal/cache"
	"utsav-backend/internal/locks"
	"utsav-backend/internal/metrics"
	"utsav-backend/internal/models"
	"utsav-backend/internal/notify"

	"github.com/jackc/pgx/v5"
)

// AllocationStore is the persistence surface for budget allocations.
// *repositories.BudgetAllocationRepository satisfies it; tests use fakes.
type AllocationStore interface {
	ReplaceAll(ctx context.Context, eventID int, allocations []*models.BudgetAllocation) error
	ListByEvent(ctx context.Context, eventID int) ([]*models.BudgetAllocation, error)
	Get(ctx context.Context, eventID int, category models.BudgetCategory) (*models.BudgetAllocation, error)
	SetAmount(ctx context.Context, eventID int, category models.BudgetCategory, amount, percent float64) error
	SetSpentAndStatus(ctx context.Context, eventID int, category models.BudgetCategory, spent float64, status models.AllocationStatus) error
}

// RollupSource supplies the per-category spend derived from the assignment
// ledger. Spend is never stored redundantly on the budget side.
type RollupSource interface {
	CategoryRollups(ctx context.Context, eventID int) ([]models.CategoryRollup, error)
}

// EventStore supplies the event's total budget
type EventStore interface {
	Get(ctx context.Context, id int) (*models.Event, error)
}

type BudgetService struct {
	Store      AllocationStore
	Rollups    RollupSource
	Events     EventStore
	Locks      *locks.EventLocks
	Dispatcher *notify.Dispatcher

	Weights models.BudgetWeights
	WarnAt  float64 // spent/allocated ratio where status turns warning
	OverAt  float64 // ratio above which status turns over
}

func NewBudgetService(store AllocationStore, rollups RollupSource, events EventStore, eventLocks *locks.EventLocks, dispatcher *notify.Dispatcher, weights models.BudgetWeights, warnAt, overAt float64) *BudgetService {
	if len(weights) == 0 {
		weights = models.DefaultBudgetWeights
	}
	if warnAt <= 0 {
		warnAt = 0.80
	}
	if overAt <= 0 {
		overAt = 1.00
	}
	return &BudgetService{
		Store:      store,
		Rollups:    rollups,
		Events:     events,
		Locks:      eventLocks,
		Dispatcher: dispatcher,
		Weights:    weights,
		WarnAt:     warnAt,
		OverAt:     overAt,
	}
}

// round2 keeps allocation amounts at paise precision
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildDefaultAllocations distributes totalBudget across all nine categories
// using the configured weights. The last category absorbs rounding drift so the
// amounts always sum to exactly totalBudget.
func (s *BudgetService) BuildDefaultAllocations(eventID int, totalBudget float64) []*models.BudgetAllocation {
	allocations := make([]*models.BudgetAllocation, 0, len(models.AllBudgetCategories))
	var assigned float64
	for i, category := range models.AllBudgetCategories {
		weight := s.Weights[category]
		amount := round2(totalBudget * weight)
		if i == len(models.AllBudgetCategories)-1 {
			amount = round2(totalBudget - assigned)
		}
		assigned = round2(assigned + amount)

		percent := 0.0
		if totalBudget > 0 {
			percent = round2(amount / totalBudget * 100)
		}
		allocations = append(allocations, &models.BudgetAllocation{
			EventID:          eventID,
			Category:         category,
			AllocatedAmount:  amount,
			AllocatedPercent: percent,
			SpentAmount:      0,
			Status:           models.AllocationStatusOnTrack,
		})
	}
	return allocations
}

// Initialize (re)creates the full nine-category allocation set for an event.
// Always produces exactly nine entries, even for a zero budget.
func (s *BudgetService) Initialize(ctx context.Context, eventID int, totalBudget float64) ([]*models.BudgetAllocation, error) {
	s.Locks.Lock(eventID)
	defer s.Locks.Unlock(eventID)

	allocations := s.BuildDefaultAllocations(eventID, totalBudget)
	if err := s.Store.ReplaceAll(ctx, eventID, allocations); err != nil {
		return nil, err
	}
	cache.InvalidateBudgetSummary(ctx, eventID)
	return allocations, nil
}

// SetAllocation overwrites one category's amount. Other categories are left
// alone; rebalancing is the planner's call, not ours. Exceeding the event's
// total budget is flagged in the log, not blocked.
func (s *BudgetService) SetAllocation(ctx context.Context, eventID int, category models.BudgetCategory, amount, totalBudget float64) (*models.BudgetAllocation, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("unknown budget category %q: %w", category, ErrNotFound)
	}

	s.Locks.Lock(eventID)
	defer s.Locks.Unlock(eventID)

	allocation, err := s.Store.Get(ctx, eventID, category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	percent := 0.0
	if totalBudget > 0 {
		percent = round2(amount / totalBudget * 100)
	}
	if err := s.Store.SetAmount(ctx, eventID, category, amount, percent); err != nil {
		return nil, err
	}

	status := models.DeriveAllocationStatus(allocation.SpentAmount, amount, s.WarnAt, s.OverAt)
	if err := s.Store.SetSpentAndStatus(ctx, eventID, category, allocation.SpentAmount, status); err != nil {
		return nil, err
	}

	allocation.AllocatedAmount = amount
	allocation.AllocatedPercent = percent
	allocation.Status = status

	// Over-allocation is allowed but worth noticing
	all, err := s.Store.ListByEvent(ctx, eventID)
	if err == nil {
		var sum float64
		for _, a := range all {
			sum += a.AllocatedAmount
		}
		if totalBudget > 0 && sum > totalBudget {
			log.Printf("[Budget] Event %d allocations (₹%.2f) exceed total budget (₹%.2f)", eventID, sum, totalBudget)
		}
	}

	cache.InvalidateBudgetSummary(ctx, eventID)
	return allocation, nil
}

// RecomputeStatus pulls spend from the assignment ledger and rederives every
// category's status. Pure recomputation: safe to run repeatedly, emits
// CategoryOverBudget only when a category newly crosses the line.
func (s *BudgetService) RecomputeStatus(ctx context.Context, eventID int) ([]*models.BudgetAllocation, error) {
	s.Locks.Lock(eventID)
	defer s.Locks.Unlock(eventID)

	allocations, err := s.Store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rollups, err := s.Rollups.CategoryRollups(ctx, eventID)
	if err != nil {
		return nil, err
	}
	spentByCategory := make(map[models.BudgetCategory]float64, len(rollups))
	for _, ru := range rollups {
		spentByCategory[ru.Category] = ru.Spent
	}

	var overCount int
	for _, a := range allocations {
		spent := spentByCategory[a.Category]
		status := models.DeriveAllocationStatus(spent, a.AllocatedAmount, s.WarnAt, s.OverAt)
		if spent != a.SpentAmount || status != a.Status {
			if err := s.Store.SetSpentAndStatus(ctx, eventID, a.Category, spent, status); err != nil {
				return nil, err
			}
		}
		if status == models.AllocationStatusOver && a.Status != models.AllocationStatusOver && s.Dispatcher != nil {
			s.Dispatcher.Publish(notify.DomainEvent{
				Type:     notify.EventCategoryOverBudget,
				EventID:  eventID,
				Category: a.Category,
				Message:  fmt.Sprintf("%s spend ₹%.2f exceeds allocation ₹%.2f", a.Category, spent, a.AllocatedAmount),
			})
		}
		if status == models.AllocationStatusOver {
			overCount++
		}
		a.SpentAmount = spent
		a.Status = status
	}
	metrics.OverBudgetCategories.WithLabelValues(strconv.Itoa(eventID)).Set(float64(overCount))

	cache.InvalidateBudgetSummary(ctx, eventID)
	return allocations, nil
}

// Summary aggregates the event's money position across all categories.
// Served from cache when Redis is up.
func (s *BudgetService) Summary(ctx context.Context, eventID int) (*models.BudgetSummary, error) {
	if cached, ok := cache.GetBudgetSummary(ctx, eventID); ok {
		return cached, nil
	}

	event, err := s.Events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	allocations, err := s.Store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rollups, err := s.Rollups.CategoryRollups(ctx, eventID)
	if err != nil {
		return nil, err
	}

	summary := &models.BudgetSummary{
		EventID:     eventID,
		TotalBudget: event.TotalBudget,
	}
	for _, a := range allocations {
		summary.TotalAllocated += a.AllocatedAmount
		switch a.Status {
		case models.AllocationStatusWarning:
			summary.WarningCount++
		case models.AllocationStatusOver:
			summary.OverCount++
		}
	}
	for _, ru := range rollups {
		summary.TotalCommitted += ru.Committed
		summary.TotalSpent += ru.Spent
	}

	cache.SetBudgetSummary(ctx, eventID, summary)
	return summary, nil
}

// ListAllocations returns the event's allocations in category order
func (s *BudgetService) ListAllocations(ctx context.Context, eventID int) ([]*models.BudgetAllocation, error) {
	return s.Store.ListByEvent(ctx, eventID)
}
