package repositories

import (
	"context"
	"fmt"
	"time"

	"utsav-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VendorAssignmentRepository struct {
	DB *pgxpool.Pool
}

func NewVendorAssignmentRepository(db *pgxpool.Pool) *VendorAssignmentRepository {
	return &VendorAssignmentRepository{DB: db}
}

func (r *VendorAssignmentRepository) Create(ctx context.Context, a *models.VendorAssignment) error {
	query := `
		INSERT INTO vendor_assignments (event_id, function_id, vendor_id, vendor_name, vendor_category, budget_category, agreed_amount, paid_amount, status, notes, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(ctx, query,
		a.EventID,
		a.FunctionID,
		a.VendorID,
		a.VendorName,
		a.VendorCategory,
		a.BudgetCategory,
		a.AgreedAmount,
		a.PaidAmount,
		a.Status,
		a.Notes,
		a.RequestID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vendor assignment: %w", err)
	}
	return nil
}

func (r *VendorAssignmentRepository) Get(ctx context.Context, id int) (*models.VendorAssignment, error) {
	query := selectAssignment + ` WHERE id = $1`
	a, err := r.scanOne(r.DB.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	tasks, err := r.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Tasks = tasks
	return a, nil
}

func (r *VendorAssignmentRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.VendorAssignment, error) {
	query := selectAssignment + ` WHERE event_id = $1 ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*models.VendorAssignment
	for rows.Next() {
		a, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (r *VendorAssignmentRepository) SetStatus(ctx context.Context, id int, status models.AssignmentStatus) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vendor_assignments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

func (r *VendorAssignmentRepository) SetArrival(ctx context.Context, id int, at time.Time, status models.AssignmentStatus) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vendor_assignments SET arrival_at = $1, status = $2, updated_at = NOW() WHERE id = $3`, at, status, id)
	return err
}

// SetDeparture records departure and the forced completed status in one statement
func (r *VendorAssignmentRepository) SetDeparture(ctx context.Context, id int, at time.Time) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vendor_assignments SET departure_at = $1, status = 'completed', updated_at = NOW() WHERE id = $2`, at, id)
	return err
}

func (r *VendorAssignmentRepository) SetPaidAmount(ctx context.Context, id int, paid float64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vendor_assignments SET paid_amount = $1, updated_at = NOW() WHERE id = $2`, paid, id)
	return err
}

func (r *VendorAssignmentRepository) SetBackup(ctx context.Context, id int, backupVendorID int, backupVendorName string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vendor_assignments SET backup_vendor_id = $1, backup_vendor_name = $2, updated_at = NOW() WHERE id = $3`,
		backupVendorID, backupVendorName, id)
	return err
}

// Delete removes an assignment and its tasks (ON DELETE CASCADE)
func (r *VendorAssignmentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM vendor_assignments WHERE id = $1`, id)
	return err
}

func (r *VendorAssignmentRepository) AddTask(ctx context.Context, task *models.VendorTask) error {
	query := `
		INSERT INTO vendor_tasks (assignment_id, description, status, require_proof)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(ctx, query, task.AssignmentID, task.Description, task.Status, task.RequireProof).
		Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	return nil
}

func (r *VendorAssignmentRepository) GetTask(ctx context.Context, assignmentID, taskID int) (*models.VendorTask, error) {
	query := `
		SELECT id, assignment_id, description, status, require_proof, proof_ref, completed_at, created_at
		FROM vendor_tasks
		WHERE id = $1 AND assignment_id = $2
	`
	task := &models.VendorTask{}
	err := r.DB.QueryRow(ctx, query, taskID, assignmentID).Scan(
		&task.ID,
		&task.AssignmentID,
		&task.Description,
		&task.Status,
		&task.RequireProof,
		&task.ProofRef,
		&task.CompletedAt,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *VendorAssignmentRepository) SetTaskStatus(ctx context.Context, taskID int, status models.TaskStatus, proofRef *string, completedAt *time.Time) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vendor_tasks SET status = $1, proof_ref = COALESCE($2, proof_ref), completed_at = $3 WHERE id = $4`,
		status, proofRef, completedAt, taskID)
	return err
}

func (r *VendorAssignmentRepository) ListTasks(ctx context.Context, assignmentID int) ([]models.VendorTask, error) {
	query := `
		SELECT id, assignment_id, description, status, require_proof, proof_ref, completed_at, created_at
		FROM vendor_tasks
		WHERE assignment_id = $1
		ORDER BY id
	`
	rows, err := r.DB.Query(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.VendorTask
	for rows.Next() {
		task := models.VendorTask{}
		err := rows.Scan(
			&task.ID,
			&task.AssignmentID,
			&task.Description,
			&task.Status,
			&task.RequireProof,
			&task.ProofRef,
			&task.CompletedAt,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// CategoryRollups computes committed and spent per budget category in one pass.
// Committed counts agreed amounts of confirmed/arrived/completed assignments;
// spent counts paid amounts of everything except cancelled.
func (r *VendorAssignmentRepository) CategoryRollups(ctx context.Context, eventID int) ([]models.CategoryRollup, error) {
	query := `
		SELECT budget_category,
		       COALESCE(SUM(agreed_amount) FILTER (WHERE status IN ('confirmed', 'arrived', 'completed')), 0),
		       COALESCE(SUM(paid_amount) FILTER (WHERE status <> 'cancelled'), 0)
		FROM vendor_assignments
		WHERE event_id = $1
		GROUP BY budget_category
	`
	rows, err := r.DB.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rollups []models.CategoryRollup
	for rows.Next() {
		ru := models.CategoryRollup{}
		if err := rows.Scan(&ru.Category, &ru.Committed, &ru.Spent); err != nil {
			return nil, err
		}
		rollups = append(rollups, ru)
	}
	return rollups, nil
}

const selectAssignment = `
	SELECT id, event_id, function_id, vendor_id, vendor_name, vendor_category, budget_category,
	       agreed_amount, paid_amount, status, arrival_at, departure_at, backup_vendor_id,
	       backup_vendor_name, COALESCE(notes, ''), request_id, created_at, updated_at
	FROM vendor_assignments`

func (r *VendorAssignmentRepository) scanOne(row pgx.Row) (*models.VendorAssignment, error) {
	a := &models.VendorAssignment{}
	err := row.Scan(
		&a.ID,
		&a.EventID,
		&a.FunctionID,
		&a.VendorID,
		&a.VendorName,
		&a.VendorCategory,
		&a.BudgetCategory,
		&a.AgreedAmount,
		&a.PaidAmount,
		&a.Status,
		&a.ArrivalAt,
		&a.DepartureAt,
		&a.BackupVendorID,
		&a.BackupVendorName,
		&a.Notes,
		&a.RequestID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}
