package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"utsav-backend/internal/locks"
	"utsav-backend/internal/models"
	"utsav-backend/internal/notify"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAssignmentStore is an in-memory AssignmentStore; rollups are derived from
// the stored assignments the way the SQL view does it.
type fakeAssignmentStore struct {
	mu         sync.Mutex
	nextID     int
	nextTaskID int
	items      map[int]*models.VendorAssignment
	tasks      map[int]*models.VendorTask
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{
		items: make(map[int]*models.VendorAssignment),
		tasks: make(map[int]*models.VendorTask),
	}
}

func (f *fakeAssignmentStore) Create(ctx context.Context, a *models.VendorAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.ID = f.nextID
	stored := *a
	f.items[a.ID] = &stored
	return nil
}

func (f *fakeAssignmentStore) Get(ctx context.Context, id int) (*models.VendorAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAssignmentStore) ListByEvent(ctx context.Context, eventID int) ([]*models.VendorAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.VendorAssignment
	for _, a := range f.items {
		if a.EventID == eventID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) SetStatus(ctx context.Context, id int, status models.AssignmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id].Status = status
	return nil
}

func (f *fakeAssignmentStore) SetArrival(ctx context.Context, id int, at time.Time, status models.AssignmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id].ArrivalAt = &at
	f.items[id].Status = status
	return nil
}

func (f *fakeAssignmentStore) SetDeparture(ctx context.Context, id int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id].DepartureAt = &at
	f.items[id].Status = models.AssignmentStatusCompleted
	return nil
}

func (f *fakeAssignmentStore) SetPaidAmount(ctx context.Context, id int, paid float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id].PaidAmount = paid
	return nil
}

func (f *fakeAssignmentStore) SetBackup(ctx context.Context, id int, backupVendorID int, backupVendorName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id].BackupVendorID = &backupVendorID
	f.items[id].BackupVendorName = &backupVendorName
	return nil
}

func (f *fakeAssignmentStore) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeAssignmentStore) AddTask(ctx context.Context, task *models.VendorTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTaskID++
	task.ID = f.nextTaskID
	stored := *task
	f.tasks[task.ID] = &stored
	return nil
}

func (f *fakeAssignmentStore) GetTask(ctx context.Context, assignmentID, taskID int) (*models.VendorTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok || task.AssignmentID != assignmentID {
		return nil, pgx.ErrNoRows
	}
	copied := *task
	return &copied, nil
}

func (f *fakeAssignmentStore) SetTaskStatus(ctx context.Context, taskID int, status models.TaskStatus, proofRef *string, completedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := f.tasks[taskID]
	task.Status = status
	if proofRef != nil {
		task.ProofRef = proofRef
	}
	task.CompletedAt = completedAt
	return nil
}

func (f *fakeAssignmentStore) ListTasks(ctx context.Context, assignmentID int) ([]models.VendorTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.VendorTask
	for _, task := range f.tasks {
		if task.AssignmentID == assignmentID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) CategoryRollups(ctx context.Context, eventID int) ([]models.CategoryRollup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byCategory := make(map[models.BudgetCategory]*models.CategoryRollup)
	for _, a := range f.items {
		if a.EventID != eventID || a.Status == models.AssignmentStatusCancelled {
			continue
		}
		ru, ok := byCategory[a.BudgetCategory]
		if !ok {
			ru = &models.CategoryRollup{Category: a.BudgetCategory}
			byCategory[a.BudgetCategory] = ru
		}
		if a.Status.CountsAsCommitted() {
			ru.Committed += a.AgreedAmount
		}
		ru.Spent += a.PaidAmount
	}
	var out []models.CategoryRollup
	for _, ru := range byCategory {
		out = append(out, *ru)
	}
	return out, nil
}

func newAssignmentFixture() (*VendorAssignmentService, *fakeAssignmentStore) {
	store := newFakeAssignmentStore()
	vendors := &fakeVendorDir{vendors: map[int]*models.Vendor{
		20: {ID: 20, Name: "Moments Studio", ServiceCategory: "Photographer"},
	}}
	svc := NewVendorAssignmentService(store, vendors, locks.NewEventLocks(), notify.NewDispatcher())
	return svc, store
}

func createAssignment(t *testing.T, svc *VendorAssignmentService, agreed float64) *models.VendorAssignment {
	t.Helper()
	a, err := svc.CreateAssignment(context.Background(), &models.CreateAssignmentRequest{
		EventID:      1,
		VendorID:     20,
		AgreedAmount: agreed,
	})
	require.NoError(t, err)
	return a
}

func TestCreateAssignmentMapsBudgetCategory(t *testing.T) {
	svc, _ := newAssignmentFixture()

	a := createAssignment(t, svc, 45000)
	assert.Equal(t, "Photographer", a.VendorCategory)
	assert.Equal(t, models.BudgetCategoryPhotography, a.BudgetCategory)
	assert.Equal(t, models.AssignmentStatusRequested, a.Status)
	assert.Zero(t, a.PaidAmount)
}

func TestSetStatusForwardOnly(t *testing.T) {
	svc, _ := newAssignmentFixture()
	ctx := context.Background()
	a := createAssignment(t, svc, 45000)

	// Skipping confirmed is not allowed
	_, err := svc.SetStatus(ctx, a.ID, models.AssignmentStatusArrived, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	a2, err := svc.SetStatus(ctx, a.ID, models.AssignmentStatusConfirmed, 5)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusConfirmed, a2.Status)

	// Regression is not allowed
	_, err = svc.SetStatus(ctx, a.ID, models.AssignmentStatusRequested, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Cancellation from a non-terminal state is
	a3, err := svc.SetStatus(ctx, a.ID, models.AssignmentStatusCancelled, 5)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusCancelled, a3.Status)

	_, err = svc.SetStatus(ctx, a.ID, models.AssignmentStatusConfirmed, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRecordArrivalAndDeparture(t *testing.T) {
	svc, _ := newAssignmentFixture()
	ctx := context.Background()
	a := createAssignment(t, svc, 45000)

	// Departure before arrival is rejected
	_, err := svc.RecordDeparture(ctx, a.ID, 5)
	assert.ErrorIs(t, err, ErrArrivalRequired)

	arrived, err := svc.RecordArrival(ctx, a.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusArrived, arrived.Status)
	require.NotNil(t, arrived.ArrivalAt)

	// A second arrival is rejected
	_, err = svc.RecordArrival(ctx, a.ID, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	departed, err := svc.RecordDeparture(ctx, a.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusCompleted, departed.Status)
	require.NotNil(t, departed.DepartureAt)
	assert.False(t, departed.DepartureAt.Before(*departed.ArrivalAt))

	// Completed is terminal
	_, err = svc.RecordDeparture(ctx, a.ID, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRecordPaymentBounds(t *testing.T) {
	svc, _ := newAssignmentFixture()
	ctx := context.Background()
	a := createAssignment(t, svc, 10000)

	paid, err := svc.RecordPayment(ctx, a.ID, 4000, false, 5)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, paid.PaidAmount)

	// Paid never decreases
	_, err = svc.RecordPayment(ctx, a.ID, 3000, false, 5)
	assert.ErrorIs(t, err, ErrPaymentDecrease)

	// Exceeding agreed needs the explicit override
	_, err = svc.RecordPayment(ctx, a.ID, 12000, false, 5)
	assert.ErrorIs(t, err, ErrOverPayment)

	paid, err = svc.RecordPayment(ctx, a.ID, 12000, true, 5)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, paid.PaidAmount)
}

func TestRecordPaymentOnCancelled(t *testing.T) {
	svc, _ := newAssignmentFixture()
	ctx := context.Background()
	a := createAssignment(t, svc, 10000)

	_, err := svc.SetStatus(ctx, a.ID, models.AssignmentStatusCancelled, 5)
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, a.ID, 1000, false, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTaskProofGatedCompletion(t *testing.T) {
	svc, _ := newAssignmentFixture()
	ctx := context.Background()
	a := createAssignment(t, svc, 10000)

	task, err := svc.AddTask(ctx, a.ID, &models.AddTaskRequest{
		Description:  "Deliver edited album",
		RequireProof: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	// Completion without proof is rejected
	_, err = svc.SetTaskStatus(ctx, a.ID, task.ID, models.TaskStatusCompleted, "")
	assert.ErrorIs(t, err, ErrProofRequired)

	// In-progress needs no proof
	task, err = svc.SetTaskStatus(ctx, a.ID, task.ID, models.TaskStatusInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)

	task, err = svc.SetTaskStatus(ctx, a.ID, task.ID, models.TaskStatusCompleted, "https://drive.example/album")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	require.NotNil(t, task.ProofRef)
	assert.NotNil(t, task.CompletedAt)
}

func TestTaskUnknownStatusRejected(t *testing.T) {
	svc, _ := newAssignmentFixture()
	a := createAssignment(t, svc, 10000)

	_, err := svc.SetTaskStatus(context.Background(), a.ID, 1, models.TaskStatus("done"), "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeleteOnlyWhileRequested(t *testing.T) {
	svc, store := newAssignmentFixture()
	ctx := context.Background()

	a := createAssignment(t, svc, 10000)
	require.NoError(t, svc.Delete(ctx, a.ID, 5))
	assert.Empty(t, store.items)

	b := createAssignment(t, svc, 10000)
	_, err := svc.SetStatus(ctx, b.ID, models.AssignmentStatusConfirmed, 5)
	require.NoError(t, err)

	err = svc.Delete(ctx, b.ID, 5)
	assert.ErrorIs(t, err, ErrAssignmentLocked)
}

func TestSetBackupOnTerminal(t *testing.T) {
	svc, _ := newAssignmentFixture()
	ctx := context.Background()
	a := createAssignment(t, svc, 10000)

	updated, err := svc.SetBackup(ctx, a.ID, 21, "Standby Films")
	require.NoError(t, err)
	require.NotNil(t, updated.BackupVendorID)
	assert.Equal(t, 21, *updated.BackupVendorID)

	_, err = svc.SetStatus(ctx, a.ID, models.AssignmentStatusCancelled, 5)
	require.NoError(t, err)

	_, err = svc.SetBackup(ctx, a.ID, 22, "Another Vendor")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetBackupSerializedWithCancel(t *testing.T) {
	svc, store := newAssignmentFixture()
	ctx := context.Background()
	a := createAssignment(t, svc, 10000)

	// Hold the event lock so the backup write has to wait behind it
	svc.Locks.Lock(a.EventID)

	done := make(chan error, 1)
	go func() {
		_, err := svc.SetBackup(ctx, a.ID, 99, "Standby Decorators")
		done <- err
	}()

	// Cancel while the backup call is parked on the lock
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, store.SetStatus(ctx, a.ID, models.AssignmentStatusCancelled))
	svc.Locks.Unlock(a.EventID)

	assert.ErrorIs(t, <-done, ErrInvalidTransition)

	stored, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.BackupVendorID, "no backup may land on a cancelled assignment")
}

func TestAddTaskSerializedWithCancel(t *testing.T) {
	svc, store := newAssignmentFixture()
	ctx := context.Background()
	a := createAssignment(t, svc, 10000)

	svc.Locks.Lock(a.EventID)

	done := make(chan error, 1)
	go func() {
		_, err := svc.AddTask(ctx, a.ID, &models.AddTaskRequest{Description: "Set up mandap"})
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, store.SetStatus(ctx, a.ID, models.AssignmentStatusCancelled))
	svc.Locks.Unlock(a.EventID)

	assert.ErrorIs(t, <-done, ErrInvalidTransition)

	tasks, err := store.ListTasks(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks, "no task may land on a cancelled assignment")
}

func TestRollupsSplitCommittedAndSpent(t *testing.T) {
	svc, _ := newAssignmentFixture()
	ctx := context.Background()

	a := createAssignment(t, svc, 40000)
	_, err := svc.SetStatus(ctx, a.ID, models.AssignmentStatusConfirmed, 5)
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, a.ID, 15000, false, 5)
	require.NoError(t, err)

	// A requested assignment contributes spend but not commitment
	b := createAssignment(t, svc, 20000)
	_, err = svc.RecordPayment(ctx, b.ID, 5000, false, 5)
	require.NoError(t, err)

	rollups, err := svc.Rollups(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	assert.Equal(t, models.BudgetCategoryPhotography, rollups[0].Category)
	assert.Equal(t, 40000.0, rollups[0].Committed)
	assert.Equal(t, 20000.0, rollups[0].Spent)
}
