package repositories

import (
	"context"
	"fmt"

	"utsav-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	DB *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, event_type, venue, city, start_date, end_date, total_budget, guest_count, notes, owner_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(ctx, query,
		event.Name,
		event.EventType,
		event.Venue,
		event.City,
		event.StartDate,
		event.EndDate,
		event.TotalBudget,
		event.GuestCount,
		event.Notes,
		event.OwnerUserID,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *EventRepository) Get(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT id, name, event_type, COALESCE(venue, ''), COALESCE(city, ''), start_date, end_date,
		       total_budget, guest_count, COALESCE(notes, ''), owner_user_id, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	event := &models.Event{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.EventType,
		&event.Venue,
		&event.City,
		&event.StartDate,
		&event.EndDate,
		&event.TotalBudget,
		&event.GuestCount,
		&event.Notes,
		&event.OwnerUserID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context, ownerUserID int) ([]*models.Event, error) {
	query := `
		SELECT id, name, event_type, COALESCE(venue, ''), COALESCE(city, ''), start_date, end_date,
		       total_budget, guest_count, COALESCE(notes, ''), owner_user_id, created_at, updated_at
		FROM events
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.EventType,
			&event.Venue,
			&event.City,
			&event.StartDate,
			&event.EndDate,
			&event.TotalBudget,
			&event.GuestCount,
			&event.Notes,
			&event.OwnerUserID,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET name = $1, event_type = $2, venue = $3, city = $4, start_date = $5, end_date = $6,
		    total_budget = $7, guest_count = $8, notes = $9, updated_at = NOW()
		WHERE id = $10
	`
	_, err := r.DB.Exec(ctx, query,
		event.Name,
		event.EventType,
		event.Venue,
		event.City,
		event.StartDate,
		event.EndDate,
		event.TotalBudget,
		event.GuestCount,
		event.Notes,
		event.ID,
	)
	return err
}

func (r *EventRepository) CreateFunction(ctx context.Context, fn *models.EventFunction) error {
	query := `
		INSERT INTO event_functions (event_id, name, starts_at, venue)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(ctx, query, fn.EventID, fn.Name, fn.StartsAt, fn.Venue).Scan(&fn.ID, &fn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event function: %w", err)
	}
	return nil
}

func (r *EventRepository) ListFunctions(ctx context.Context, eventID int) ([]*models.EventFunction, error) {
	query := `
		SELECT id, event_id, name, starts_at, COALESCE(venue, ''), created_at
		FROM event_functions
		WHERE event_id = $1
		ORDER BY starts_at NULLS LAST, id
	`
	rows, err := r.DB.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fns []*models.EventFunction
	for rows.Next() {
		fn := &models.EventFunction{}
		if err := rows.Scan(&fn.ID, &fn.EventID, &fn.Name, &fn.StartsAt, &fn.Venue, &fn.CreatedAt); err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}
