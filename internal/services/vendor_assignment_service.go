package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"utsav-backend/internal/locks"
	"utsav-backend/internal/models"
	"utsav-backend/internal/notify"
	"utsav-backend/internal/repositories"
	"utsav-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// AssignmentStore is the persistence surface the service needs.
// *repositories.VendorAssignmentRepository satisfies it; tests use fakes.
type AssignmentStore interface {
	Create(ctx context.Context, a *models.VendorAssignment) error
	Get(ctx context.Context, id int) (*models.VendorAssignment, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.VendorAssignment, error)
	SetStatus(ctx context.Context, id int, status models.AssignmentStatus) error
	SetArrival(ctx context.Context, id int, at time.Time, status models.AssignmentStatus) error
	SetDeparture(ctx context.Context, id int, at time.Time) error
	SetPaidAmount(ctx context.Context, id int, paid float64) error
	SetBackup(ctx context.Context, id int, backupVendorID int, backupVendorName string) error
	Delete(ctx context.Context, id int) error
	AddTask(ctx context.Context, task *models.VendorTask) error
	GetTask(ctx context.Context, assignmentID, taskID int) (*models.VendorTask, error)
	SetTaskStatus(ctx context.Context, taskID int, status models.TaskStatus, proofRef *string, completedAt *time.Time) error
	ListTasks(ctx context.Context, assignmentID int) ([]models.VendorTask, error)
	CategoryRollups(ctx context.Context, eventID int) ([]models.CategoryRollup, error)
}

type VendorAssignmentService struct {
	Store      AssignmentStore
	Vendors    VendorDirectory
	Locks      *locks.EventLocks
	Dispatcher *notify.Dispatcher
	ActionLog  *repositories.PlannerActionLogRepository // optional
}

func NewVendorAssignmentService(store AssignmentStore, vendors VendorDirectory, eventLocks *locks.EventLocks, dispatcher *notify.Dispatcher) *VendorAssignmentService {
	return &VendorAssignmentService{
		Store:      store,
		Vendors:    vendors,
		Locks:      eventLocks,
		Dispatcher: dispatcher,
	}
}

// SetActionLog wires the optional planner action log
func (s *VendorAssignmentService) SetActionLog(repo *repositories.PlannerActionLogRepository) {
	s.ActionLog = repo
}

// CreateAssignment registers a vendor engagement directly, outside the booking
// request flow (e.g. a vendor booked over the phone)
func (s *VendorAssignmentService) CreateAssignment(ctx context.Context, req *models.CreateAssignmentRequest) (*models.VendorAssignment, error) {
	vendor, err := s.Vendors.Get(ctx, req.VendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vendor %d: %w", req.VendorID, ErrNotFound)
		}
		return nil, err
	}

	category := req.VendorCategory
	if category == "" {
		category = vendor.ServiceCategory
	}

	s.Locks.Lock(req.EventID)
	defer s.Locks.Unlock(req.EventID)

	assignment := &models.VendorAssignment{
		EventID:        req.EventID,
		FunctionID:     req.FunctionID,
		VendorID:       req.VendorID,
		VendorName:     vendor.Name,
		VendorCategory: category,
		BudgetCategory: models.MapServiceCategory(category),
		AgreedAmount:   req.AgreedAmount,
		PaidAmount:     0,
		Status:         models.AssignmentStatusRequested,
		Notes:          req.Notes,
	}
	if err := s.Store.Create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *VendorAssignmentService) GetAssignment(ctx context.Context, id int) (*models.VendorAssignment, error) {
	a, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *VendorAssignmentService) ListByEvent(ctx context.Context, eventID int) ([]*models.VendorAssignment, error) {
	return s.Store.ListByEvent(ctx, eventID)
}

// SetStatus applies a forward transition (requested → confirmed → arrived →
// completed) or a cancellation from any non-terminal state
func (s *VendorAssignmentService) SetStatus(ctx context.Context, id int, target models.AssignmentStatus, userID int) (*models.VendorAssignment, error) {
	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Locks.Lock(a.EventID)
	defer s.Locks.Unlock(a.EventID)

	a, err = s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransition(target) {
		return nil, ErrInvalidTransition
	}

	if err := s.Store.SetStatus(ctx, id, target); err != nil {
		return nil, err
	}
	prev := a.Status
	a.Status = target
	s.publishStatusChange(a, prev)
	s.logAction(ctx, userID, a, "ASSIGNMENT_STATUS", fmt.Sprintf("%s: %s → %s", a.VendorName, prev, target))
	return a, nil
}

// RecordArrival stamps the vendor's on-site arrival and moves the assignment to
// arrived. Terminal assignments cannot arrive.
func (s *VendorAssignmentService) RecordArrival(ctx context.Context, id int, userID int) (*models.VendorAssignment, error) {
	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Locks.Lock(a.EventID)
	defer s.Locks.Unlock(a.EventID)

	a, err = s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() || a.Status == models.AssignmentStatusArrived {
		return nil, ErrInvalidTransition
	}

	now := timeutil.Now()
	if err := s.Store.SetArrival(ctx, id, now, models.AssignmentStatusArrived); err != nil {
		return nil, err
	}
	prev := a.Status
	a.ArrivalAt = &now
	a.Status = models.AssignmentStatusArrived
	s.publishStatusChange(a, prev)
	s.logAction(ctx, userID, a, "VENDOR_ARRIVED", fmt.Sprintf("%s arrived on site", a.VendorName))
	return a, nil
}

// RecordDeparture stamps the departure and forces status to completed.
// Fails with ErrArrivalRequired when no arrival has been recorded.
func (s *VendorAssignmentService) RecordDeparture(ctx context.Context, id int, userID int) (*models.VendorAssignment, error) {
	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Locks.Lock(a.EventID)
	defer s.Locks.Unlock(a.EventID)

	a, err = s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}
	if a.ArrivalAt == nil {
		return nil, ErrArrivalRequired
	}

	now := timeutil.Now()
	if now.Before(*a.ArrivalAt) {
		now = *a.ArrivalAt
	}
	if err := s.Store.SetDeparture(ctx, id, now); err != nil {
		return nil, err
	}
	prev := a.Status
	a.DepartureAt = &now
	a.Status = models.AssignmentStatusCompleted
	s.publishStatusChange(a, prev)
	s.logAction(ctx, userID, a, "VENDOR_DEPARTED", fmt.Sprintf("%s departed, engagement completed", a.VendorName))
	return a, nil
}

// RecordPayment sets the cumulative paid amount. Paid never decreases and never
// exceeds the agreed amount unless the override flag is passed.
func (s *VendorAssignmentService) RecordPayment(ctx context.Context, id int, amount float64, allowOverpay bool, userID int) (*models.VendorAssignment, error) {
	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Locks.Lock(a.EventID)
	defer s.Locks.Unlock(a.EventID)

	a, err = s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == models.AssignmentStatusCancelled {
		return nil, ErrInvalidTransition
	}
	if amount < a.PaidAmount {
		return nil, ErrPaymentDecrease
	}
	if amount > a.AgreedAmount && !allowOverpay {
		return nil, ErrOverPayment
	}

	if err := s.Store.SetPaidAmount(ctx, id, amount); err != nil {
		return nil, err
	}
	a.PaidAmount = amount
	s.logAction(ctx, userID, a, "PAYMENT_RECORDED", fmt.Sprintf("Paid ₹%.2f of ₹%.2f to %s", amount, a.AgreedAmount, a.VendorName))
	return a, nil
}

// AddTask appends an on-site task to the assignment's checklist
func (s *VendorAssignmentService) AddTask(ctx context.Context, id int, req *models.AddTaskRequest) (*models.VendorTask, error) {
	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Locks.Lock(a.EventID)
	defer s.Locks.Unlock(a.EventID)

	a, err = s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == models.AssignmentStatusCancelled {
		return nil, ErrInvalidTransition
	}

	task := &models.VendorTask{
		AssignmentID: a.ID,
		Description:  req.Description,
		Status:       models.TaskStatusPending,
		RequireProof: req.RequireProof,
	}
	if err := s.Store.AddTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// SetTaskStatus updates a task. Completion requires a proof reference when the
// task demands one.
func (s *VendorAssignmentService) SetTaskStatus(ctx context.Context, assignmentID, taskID int, status models.TaskStatus, proofRef string) (*models.VendorTask, error) {
	if !status.IsValid() {
		return nil, ErrInvalidTransition
	}

	a, err := s.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	s.Locks.Lock(a.EventID)
	defer s.Locks.Unlock(a.EventID)

	task, err := s.Store.GetTask(ctx, assignmentID, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var proof *string
	if proofRef != "" {
		proof = &proofRef
	}

	var completedAt *time.Time
	if status == models.TaskStatusCompleted {
		if task.RequireProof && proofRef == "" && task.ProofRef == nil {
			return nil, ErrProofRequired
		}
		now := timeutil.Now()
		completedAt = &now
	}

	if err := s.Store.SetTaskStatus(ctx, taskID, status, proof, completedAt); err != nil {
		return nil, err
	}
	task.Status = status
	if proof != nil {
		task.ProofRef = proof
	}
	task.CompletedAt = completedAt
	return task, nil
}

// SetBackup records a standby vendor without changing the primary.
// Allowed in any non-terminal status.
func (s *VendorAssignmentService) SetBackup(ctx context.Context, id int, backupVendorID int, backupVendorName string) (*models.VendorAssignment, error) {
	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Locks.Lock(a.EventID)
	defer s.Locks.Unlock(a.EventID)

	a, err = s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	if err := s.Store.SetBackup(ctx, id, backupVendorID, backupVendorName); err != nil {
		return nil, err
	}
	a.BackupVendorID = &backupVendorID
	a.BackupVendorName = &backupVendorName
	return a, nil
}

// Delete removes an assignment. Only allowed while still requested; anything
// further along is part of the money trail and stays.
func (s *VendorAssignmentService) Delete(ctx context.Context, id int, userID int) error {
	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		return err
	}

	s.Locks.Lock(a.EventID)
	defer s.Locks.Unlock(a.EventID)

	a, err = s.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	if a.Status != models.AssignmentStatusRequested {
		return ErrAssignmentLocked
	}

	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.logAction(ctx, userID, a, "ASSIGNMENT_DELETED", fmt.Sprintf("Removed requested assignment for %s", a.VendorName))
	return nil
}

// Rollups returns the per-category committed/spent view for an event
func (s *VendorAssignmentService) Rollups(ctx context.Context, eventID int) ([]models.CategoryRollup, error) {
	return s.Store.CategoryRollups(ctx, eventID)
}

func (s *VendorAssignmentService) publishStatusChange(a *models.VendorAssignment, prev models.AssignmentStatus) {
	if s.Dispatcher == nil {
		return
	}
	s.Dispatcher.Publish(notify.DomainEvent{
		Type:       notify.EventAssignmentStatusChanged,
		EventID:    a.EventID,
		Assignment: a,
		Category:   a.BudgetCategory,
		Message:    fmt.Sprintf("%s: %s → %s", a.VendorName, prev, a.Status),
	})
}

func (s *VendorAssignmentService) logAction(ctx context.Context, userID int, a *models.VendorAssignment, action, description string) {
	if s.ActionLog == nil {
		return
	}
	targetID := a.ID
	s.ActionLog.Log(ctx, &models.PlannerActionLog{
		UserID:      userID,
		EventID:     a.EventID,
		ActionType:  action,
		TargetType:  "assignment",
		TargetID:    &targetID,
		Description: description,
	})
}
