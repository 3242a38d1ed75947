package models

import "time"

// BookingRequestStatus is the lifecycle state of a planner-to-vendor request
type BookingRequestStatus string

const (
	RequestStatusPending  BookingRequestStatus = "pending"
	RequestStatusAccepted BookingRequestStatus = "accepted"
	RequestStatusDeclined BookingRequestStatus = "declined"
)

// CanTransition reports whether a request may move from its current status to target.
// Only pending requests move; accepted/declined are terminal.
func (s BookingRequestStatus) CanTransition(target BookingRequestStatus) bool {
	if s != RequestStatusPending {
		return false
	}
	return target == RequestStatusAccepted || target == RequestStatusDeclined
}

// IsLive reports whether the request still blocks duplicates for its
// (event, function, vendor, category) tuple. Declined requests free the slot.
func (s BookingRequestStatus) IsLive() bool {
	return s != RequestStatusDeclined
}

type BookingRequest struct {
	ID              int                  `json:"id"`
	EventID         int                  `json:"event_id"`
	FunctionID      *int                 `json:"function_id,omitempty"` // optional sub-event (e.g. Sangeet Night)
	VendorID        int                  `json:"vendor_id"`
	VendorName      string               `json:"vendor_name"`     // denormalized from vendor directory at creation
	ServiceCategory string               `json:"service_category"` // free text as requested by the planner
	ProposedAmount  float64              `json:"proposed_amount"`
	Status          BookingRequestStatus `json:"status"`
	Notes           string               `json:"notes"`
	CreatedByUserID int                  `json:"created_by_user_id"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// CreateBookingRequestRequest represents the request body for creating a booking request
type CreateBookingRequestRequest struct {
	EventID         int     `json:"event_id"`
	FunctionID      *int    `json:"function_id,omitempty"`
	VendorID        int     `json:"vendor_id"`
	ServiceCategory string  `json:"service_category"`
	ProposedAmount  float64 `json:"proposed_amount"`
	Notes           string  `json:"notes"`
}

// TransitionBookingRequestRequest represents the request body for accepting or declining
type TransitionBookingRequestRequest struct {
	Status BookingRequestStatus `json:"status"`
}
