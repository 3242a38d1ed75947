package models

import "time"

type Event struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	EventType   string     `json:"event_type"` // wedding, corporate, birthday, etc.
	Venue       string     `json:"venue"`
	City        string     `json:"city"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	TotalBudget float64    `json:"total_budget"`
	GuestCount  int        `json:"guest_count"`
	Notes       string     `json:"notes"`
	OwnerUserID int        `json:"owner_user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventFunction is a sub-session of an event (e.g. "Sangeet Night", "Reception")
type EventFunction struct {
	ID        int        `json:"id"`
	EventID   int        `json:"event_id"`
	Name      string     `json:"name"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	Venue     string     `json:"venue"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateEventRequest represents the request body for creating an event
type CreateEventRequest struct {
	Name        string     `json:"name"`
	EventType   string     `json:"event_type"`
	Venue       string     `json:"venue"`
	City        string     `json:"city"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	TotalBudget float64    `json:"total_budget"`
	GuestCount  int        `json:"guest_count"`
	Notes       string     `json:"notes"`
}

// UpdateEventRequest represents the request body for updating an event
type UpdateEventRequest struct {
	Name        string     `json:"name"`
	EventType   string     `json:"event_type"`
	Venue       string     `json:"venue"`
	City        string     `json:"city"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	TotalBudget float64    `json:"total_budget"`
	GuestCount  int        `json:"guest_count"`
	Notes       string     `json:"notes"`
}

// CreateFunctionRequest represents the request body for adding a sub-event
type CreateFunctionRequest struct {
	Name     string     `json:"name"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	Venue    string     `json:"venue"`
}
