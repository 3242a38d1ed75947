package repositories

import (
	"context"

	"utsav-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MetricsRepository persists request telemetry
type MetricsRepository struct {
	DB *pgxpool.Pool
}

func NewMetricsRepository(db *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{DB: db}
}

func (r *MetricsRepository) InsertAPILog(ctx context.Context, entry *models.APIRequestLog) error {
	query := `
		INSERT INTO api_request_logs
			(time, method, path, status_code, duration_ms, request_size, response_size,
			 user_id, user_email, user_role, ip_address, user_agent, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.Exec(ctx, query,
		entry.Time,
		entry.Method,
		entry.Path,
		entry.StatusCode,
		entry.DurationMs,
		entry.RequestSize,
		entry.ResponseSize,
		entry.UserID,
		entry.UserEmail,
		entry.UserRole,
		entry.IPAddress,
		entry.UserAgent,
		entry.ErrorMessage,
	)
	return err
}

// SlowRequests returns the slowest requests within the window, newest first
func (r *MetricsRepository) SlowRequests(ctx context.Context, limit int) ([]*models.APIRequestLog, error) {
	query := `
		SELECT time, method, path, status_code, duration_ms, request_size, response_size,
		       user_id, user_email, user_role, ip_address, user_agent, error_message
		FROM api_request_logs
		WHERE time > NOW() - INTERVAL '1 hour'
		ORDER BY duration_ms DESC
		LIMIT $1
	`
	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.APIRequestLog
	for rows.Next() {
		entry := &models.APIRequestLog{}
		err := rows.Scan(
			&entry.Time,
			&entry.Method,
			&entry.Path,
			&entry.StatusCode,
			&entry.DurationMs,
			&entry.RequestSize,
			&entry.ResponseSize,
			&entry.UserID,
			&entry.UserEmail,
			&entry.UserRole,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
