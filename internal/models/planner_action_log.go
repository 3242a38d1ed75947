package models

import "time"

// PlannerActionLog records who did what against an event's bookings and budget
type PlannerActionLog struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	EventID     int       `json:"event_id" db:"event_id"`
	ActionType  string    `json:"action_type" db:"action_type"` // e.g. REQUEST_ACCEPTED, PAYMENT_RECORDED
	TargetType  string    `json:"target_type" db:"target_type"` // booking_request, assignment, allocation
	TargetID    *int      `json:"target_id,omitempty" db:"target_id"`
	Description string    `json:"description" db:"description"`
	IPAddress   *string   `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
