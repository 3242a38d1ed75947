package models

import "time"

// AssignmentStatus is the lifecycle state of a materialized vendor engagement
type AssignmentStatus string

const (
	AssignmentStatusRequested AssignmentStatus = "requested"
	AssignmentStatusConfirmed AssignmentStatus = "confirmed"
	AssignmentStatusArrived   AssignmentStatus = "arrived"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// assignmentRank orders the forward path requested → confirmed → arrived → completed
var assignmentRank = map[AssignmentStatus]int{
	AssignmentStatusRequested: 0,
	AssignmentStatusConfirmed: 1,
	AssignmentStatusArrived:   2,
	AssignmentStatusCompleted: 3,
}

// IsTerminal reports whether no further status changes are allowed
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentStatusCompleted || s == AssignmentStatusCancelled
}

// CanTransition reports whether an assignment may move from its current status to target.
// Forward steps only, plus cancellation from any non-terminal state. No regressions,
// no leaving completed or cancelled.
func (s AssignmentStatus) CanTransition(target AssignmentStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == AssignmentStatusCancelled {
		return true
	}
	from, ok := assignmentRank[s]
	if !ok {
		return false
	}
	to, ok := assignmentRank[target]
	if !ok {
		return false
	}
	return to == from+1
}

// CountsAsCommitted reports whether the assignment's agreed amount counts toward
// the committed rollup for its budget category
func (s AssignmentStatus) CountsAsCommitted() bool {
	return s == AssignmentStatusConfirmed || s == AssignmentStatusArrived || s == AssignmentStatusCompleted
}

// TaskStatus is the state of a single on-site vendor task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// IsValid reports whether s is a known task status
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	}
	return false
}

// VendorTask is an on-site checklist item owned by its assignment
type VendorTask struct {
	ID           int        `json:"id"`
	AssignmentID int        `json:"assignment_id"`
	Description  string     `json:"description"`
	Status       TaskStatus `json:"status"`
	RequireProof bool       `json:"require_proof"` // completion needs a proof reference
	ProofRef     *string    `json:"proof_ref,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type VendorAssignment struct {
	ID               int              `json:"id"`
	EventID          int              `json:"event_id"`
	FunctionID       *int             `json:"function_id,omitempty"`
	VendorID         int              `json:"vendor_id"`
	VendorName       string           `json:"vendor_name"`     // denormalized at creation
	VendorCategory   string           `json:"vendor_category"` // free text from the vendor directory
	BudgetCategory   BudgetCategory   `json:"budget_category"` // canonical, via MapServiceCategory
	AgreedAmount     float64          `json:"agreed_amount"`
	PaidAmount       float64          `json:"paid_amount"` // monotonically non-decreasing
	Status           AssignmentStatus `json:"status"`
	ArrivalAt        *time.Time       `json:"arrival_at,omitempty"`
	DepartureAt      *time.Time       `json:"departure_at,omitempty"`
	BackupVendorID   *int             `json:"backup_vendor_id,omitempty"`
	BackupVendorName *string          `json:"backup_vendor_name,omitempty"`
	Notes            string           `json:"notes"`
	RequestID        *int             `json:"request_id,omitempty"` // originating booking request, if any
	Tasks            []VendorTask     `json:"tasks,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CategoryRollup is the per-category money view derived from the assignment ledger.
// Committed sums agreed amounts over confirmed/arrived/completed assignments;
// Spent sums paid amounts over all non-cancelled assignments regardless of status.
type CategoryRollup struct {
	Category  BudgetCategory `json:"category"`
	Committed float64        `json:"committed"`
	Spent     float64        `json:"spent"`
}

// CreateAssignmentRequest represents the request body for creating an assignment directly
// (assignments from accepted booking requests are created by the booking service)
type CreateAssignmentRequest struct {
	EventID        int     `json:"event_id"`
	FunctionID     *int    `json:"function_id,omitempty"`
	VendorID       int     `json:"vendor_id"`
	VendorCategory string  `json:"vendor_category"`
	AgreedAmount   float64 `json:"agreed_amount"`
	Notes          string  `json:"notes"`
}

// SetAssignmentStatusRequest represents the request body for a status transition
type SetAssignmentStatusRequest struct {
	Status AssignmentStatus `json:"status"`
}

// RecordPaymentRequest represents the request body for recording a vendor payment
type RecordPaymentRequest struct {
	Amount       float64 `json:"amount"`
	AllowOverpay bool    `json:"allow_overpay"` // explicit override for paid > agreed
	Notes        string  `json:"notes"`
}

// AddTaskRequest represents the request body for appending an on-site task
type AddTaskRequest struct {
	Description  string `json:"description"`
	RequireProof bool   `json:"require_proof"`
}

// SetTaskStatusRequest represents the request body for updating a task
type SetTaskStatusRequest struct {
	Status   TaskStatus `json:"status"`
	ProofRef string     `json:"proof_ref,omitempty"`
}

// SetBackupVendorRequest represents the request body for recording a backup vendor
type SetBackupVendorRequest struct {
	BackupVendorID   int    `json:"backup_vendor_id"`
	BackupVendorName string `json:"backup_vendor_name"`
}
