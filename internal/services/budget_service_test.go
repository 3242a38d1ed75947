package services

import (
	"context"
	"testing"

	"utsav-backend/internal/locks"
	"utsav-backend/internal/metrics"
	"utsav-backend/internal/models"
	"utsav-backend/internal/notify"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAllocationStore keeps one allocation set per event in category order
type fakeAllocationStore struct {
	byEvent map[int]map[models.BudgetCategory]*models.BudgetAllocation
}

func newFakeAllocationStore() *fakeAllocationStore {
	return &fakeAllocationStore{byEvent: make(map[int]map[models.BudgetCategory]*models.BudgetAllocation)}
}

func (f *fakeAllocationStore) ReplaceAll(ctx context.Context, eventID int, allocations []*models.BudgetAllocation) error {
	set := make(map[models.BudgetCategory]*models.BudgetAllocation, len(allocations))
	for i, a := range allocations {
		stored := *a
		stored.ID = i + 1
		set[a.Category] = &stored
	}
	f.byEvent[eventID] = set
	return nil
}

func (f *fakeAllocationStore) ListByEvent(ctx context.Context, eventID int) ([]*models.BudgetAllocation, error) {
	set := f.byEvent[eventID]
	var out []*models.BudgetAllocation
	for _, category := range models.AllBudgetCategories {
		if a, ok := set[category]; ok {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAllocationStore) Get(ctx context.Context, eventID int, category models.BudgetCategory) (*models.BudgetAllocation, error) {
	a, ok := f.byEvent[eventID][category]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAllocationStore) SetAmount(ctx context.Context, eventID int, category models.BudgetCategory, amount, percent float64) error {
	a := f.byEvent[eventID][category]
	a.AllocatedAmount = amount
	a.AllocatedPercent = percent
	return nil
}

func (f *fakeAllocationStore) SetSpentAndStatus(ctx context.Context, eventID int, category models.BudgetCategory, spent float64, status models.AllocationStatus) error {
	a := f.byEvent[eventID][category]
	a.SpentAmount = spent
	a.Status = status
	return nil
}

// fakeRollupSource serves a canned per-category spend
type fakeRollupSource struct {
	rollups []models.CategoryRollup
}

func (f *fakeRollupSource) CategoryRollups(ctx context.Context, eventID int) ([]models.CategoryRollup, error) {
	return f.rollups, nil
}

type fakeEventStore struct {
	events map[int]*models.Event
}

func (f *fakeEventStore) Get(ctx context.Context, id int) (*models.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ev, nil
}

func newBudgetFixture() (*BudgetService, *fakeAllocationStore, *fakeRollupSource, *notify.Dispatcher) {
	store := newFakeAllocationStore()
	rollups := &fakeRollupSource{}
	events := &fakeEventStore{events: map[int]*models.Event{
		1: {ID: 1, Name: "Mehta Wedding", TotalBudget: 1000000},
	}}
	dispatcher := notify.NewDispatcher()
	svc := NewBudgetService(store, rollups, events, locks.NewEventLocks(), dispatcher, nil, 0.80, 1.00)
	return svc, store, rollups, dispatcher
}

func TestBuildDefaultAllocationsSumExactly(t *testing.T) {
	svc, _, _, _ := newBudgetFixture()

	for _, total := range []float64{1000000, 1000.01, 333333.33, 99.99, 0} {
		allocations := svc.BuildDefaultAllocations(1, total)
		require.Len(t, allocations, len(models.AllBudgetCategories))

		var sum float64
		for i, a := range allocations {
			assert.Equal(t, models.AllBudgetCategories[i], a.Category)
			assert.Equal(t, models.AllocationStatusOnTrack, a.Status)
			assert.Zero(t, a.SpentAmount)
			sum += a.AllocatedAmount
		}
		assert.InDelta(t, total, sum, 0.001, "total=%v", total)
	}
}

func TestInitializeCreatesNineCategories(t *testing.T) {
	svc, store, _, _ := newBudgetFixture()

	allocations, err := svc.Initialize(context.Background(), 1, 1000000)
	require.NoError(t, err)
	assert.Len(t, allocations, 9)

	stored, err := store.ListByEvent(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, stored, 9)

	// Default weights: venue gets 30%
	assert.Equal(t, models.BudgetCategoryVenue, stored[0].Category)
	assert.Equal(t, 300000.0, stored[0].AllocatedAmount)
	assert.Equal(t, 30.0, stored[0].AllocatedPercent)
}

func TestSetAllocationRederivesStatus(t *testing.T) {
	svc, store, _, _ := newBudgetFixture()
	ctx := context.Background()

	_, err := svc.Initialize(ctx, 1, 1000000)
	require.NoError(t, err)

	// Plant existing spend, then shrink the allocation below it
	require.NoError(t, store.SetSpentAndStatus(ctx, 1, models.BudgetCategoryDecor, 90000, models.AllocationStatusOnTrack))

	allocation, err := svc.SetAllocation(ctx, 1, models.BudgetCategoryDecor, 50000, 1000000)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, allocation.AllocatedAmount)
	assert.Equal(t, 5.0, allocation.AllocatedPercent)
	assert.Equal(t, models.AllocationStatusOver, allocation.Status)
}

func TestSetAllocationUnknownCategory(t *testing.T) {
	svc, _, _, _ := newBudgetFixture()
	_, err := svc.SetAllocation(context.Background(), 1, models.BudgetCategory("catering"), 1000, 1000000)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecomputeStatusPublishesOverOnce(t *testing.T) {
	svc, _, rollups, dispatcher := newBudgetFixture()
	ctx := context.Background()

	var events []notify.DomainEvent
	dispatcher.Subscribe(func(ev notify.DomainEvent) { events = append(events, ev) })

	_, err := svc.Initialize(ctx, 1, 1000000)
	require.NoError(t, err)

	// Decor allocation is 100000; spend beyond it
	rollups.rollups = []models.CategoryRollup{
		{Category: models.BudgetCategoryDecor, Committed: 120000, Spent: 120000},
		{Category: models.BudgetCategoryFood, Committed: 50000, Spent: 50000},
	}

	allocations, err := svc.RecomputeStatus(ctx, 1)
	require.NoError(t, err)

	byCategory := map[models.BudgetCategory]*models.BudgetAllocation{}
	for _, a := range allocations {
		byCategory[a.Category] = a
	}
	assert.Equal(t, models.AllocationStatusOver, byCategory[models.BudgetCategoryDecor].Status)
	assert.Equal(t, 120000.0, byCategory[models.BudgetCategoryDecor].SpentAmount)
	assert.Equal(t, models.AllocationStatusOnTrack, byCategory[models.BudgetCategoryFood].Status)
	assert.Equal(t, models.AllocationStatusOnTrack, byCategory[models.BudgetCategoryVenue].Status)

	require.Len(t, events, 1)
	assert.Equal(t, notify.EventCategoryOverBudget, events[0].Type)
	assert.Equal(t, models.BudgetCategoryDecor, events[0].Category)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OverBudgetCategories.WithLabelValues("1")))

	// Re-running with unchanged spend is pure: no second event
	_, err = svc.RecomputeStatus(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestRecomputeStatusWarning(t *testing.T) {
	svc, _, rollups, _ := newBudgetFixture()
	ctx := context.Background()

	_, err := svc.Initialize(ctx, 1, 1000000)
	require.NoError(t, err)

	// Food allocation is 250000; 80% spent crosses the warning line
	rollups.rollups = []models.CategoryRollup{
		{Category: models.BudgetCategoryFood, Committed: 200000, Spent: 200000},
	}

	allocations, err := svc.RecomputeStatus(ctx, 1)
	require.NoError(t, err)
	for _, a := range allocations {
		if a.Category == models.BudgetCategoryFood {
			assert.Equal(t, models.AllocationStatusWarning, a.Status)
		}
	}
}

func TestSummaryAggregates(t *testing.T) {
	svc, _, rollups, _ := newBudgetFixture()
	ctx := context.Background()

	_, err := svc.Initialize(ctx, 1, 1000000)
	require.NoError(t, err)

	rollups.rollups = []models.CategoryRollup{
		{Category: models.BudgetCategoryDecor, Committed: 120000, Spent: 110000},
		{Category: models.BudgetCategoryFood, Committed: 200000, Spent: 200000},
	}
	_, err = svc.RecomputeStatus(ctx, 1)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1000000.0, summary.TotalBudget)
	assert.InDelta(t, 1000000.0, summary.TotalAllocated, 0.001)
	assert.Equal(t, 320000.0, summary.TotalCommitted)
	assert.Equal(t, 310000.0, summary.TotalSpent)
	assert.Equal(t, 1, summary.OverCount)    // decor: 110000 > 100000
	assert.Equal(t, 1, summary.WarningCount) // food: 200000 / 250000 = 0.80
}

func TestSummaryUnknownEvent(t *testing.T) {
	svc, _, _, _ := newBudgetFixture()
	_, err := svc.Summary(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
