package repositories

import (
	"context"
	"fmt"

	"utsav-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BudgetAllocationRepository struct {
	DB *pgxpool.Pool
}

func NewBudgetAllocationRepository(db *pgxpool.Pool) *BudgetAllocationRepository {
	return &BudgetAllocationRepository{DB: db}
}

// ReplaceAll swaps in the full nine-category set for an event in one transaction.
// Initialization is never partial.
func (r *BudgetAllocationRepository) ReplaceAll(ctx context.Context, eventID int, allocations []*models.BudgetAllocation) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin allocation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM budget_allocations WHERE event_id = $1`, eventID); err != nil {
		return err
	}

	query := `
		INSERT INTO budget_allocations (event_id, category, allocated_amount, allocated_percent, spent_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	for _, a := range allocations {
		err := tx.QueryRow(ctx, query,
			a.EventID,
			a.Category,
			a.AllocatedAmount,
			a.AllocatedPercent,
			a.SpentAmount,
			a.Status,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert allocation for %s: %w", a.Category, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *BudgetAllocationRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.BudgetAllocation, error) {
	query := `
		SELECT id, event_id, category, allocated_amount, allocated_percent, spent_amount, status, created_at, updated_at
		FROM budget_allocations
		WHERE event_id = $1
		ORDER BY id
	`
	rows, err := r.DB.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []*models.BudgetAllocation
	for rows.Next() {
		a := &models.BudgetAllocation{}
		err := rows.Scan(
			&a.ID,
			&a.EventID,
			&a.Category,
			&a.AllocatedAmount,
			&a.AllocatedPercent,
			&a.SpentAmount,
			&a.Status,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, a)
	}
	return allocations, nil
}

func (r *BudgetAllocationRepository) Get(ctx context.Context, eventID int, category models.BudgetCategory) (*models.BudgetAllocation, error) {
	query := `
		SELECT id, event_id, category, allocated_amount, allocated_percent, spent_amount, status, created_at, updated_at
		FROM budget_allocations
		WHERE event_id = $1 AND category = $2
	`
	a := &models.BudgetAllocation{}
	err := r.DB.QueryRow(ctx, query, eventID, category).Scan(
		&a.ID,
		&a.EventID,
		&a.Category,
		&a.AllocatedAmount,
		&a.AllocatedPercent,
		&a.SpentAmount,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *BudgetAllocationRepository) SetAmount(ctx context.Context, eventID int, category models.BudgetCategory, amount, percent float64) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE budget_allocations
		SET allocated_amount = $1, allocated_percent = $2, updated_at = NOW()
		WHERE event_id = $3 AND category = $4
	`, amount, percent, eventID, category)
	return err
}

func (r *BudgetAllocationRepository) SetSpentAndStatus(ctx context.Context, eventID int, category models.BudgetCategory, spent float64, status models.AllocationStatus) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE budget_allocations
		SET spent_amount = $1, status = $2, updated_at = NOW()
		WHERE event_id = $3 AND category = $4
	`, spent, status, eventID, category)
	return err
}
