package repositories

import (
	"context"
	"log"

	"utsav-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PlannerActionLogRepository struct {
	DB *pgxpool.Pool
}

func NewPlannerActionLogRepository(db *pgxpool.Pool) *PlannerActionLogRepository {
	return &PlannerActionLogRepository{DB: db}
}

// Log writes an action log entry. Logging failures are reported but never fail
// the operation being logged.
func (r *PlannerActionLogRepository) Log(ctx context.Context, entry *models.PlannerActionLog) {
	query := `
		INSERT INTO planner_action_logs (user_id, event_id, action_type, target_type, target_id, description, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.Exec(ctx, query,
		entry.UserID,
		entry.EventID,
		entry.ActionType,
		entry.TargetType,
		entry.TargetID,
		entry.Description,
		entry.IPAddress,
	)
	if err != nil {
		log.Printf("[ActionLog] Failed to record %s: %v", entry.ActionType, err)
	}
}

func (r *PlannerActionLogRepository) ListByEvent(ctx context.Context, eventID int, limit int) ([]*models.PlannerActionLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, user_id, event_id, action_type, target_type, target_id, description, ip_address, created_at
		FROM planner_action_logs
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.Query(ctx, query, eventID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PlannerActionLog
	for rows.Next() {
		e := &models.PlannerActionLog{}
		err := rows.Scan(&e.ID, &e.UserID, &e.EventID, &e.ActionType, &e.TargetType, &e.TargetID, &e.Description, &e.IPAddress, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
