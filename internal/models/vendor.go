package models

import "time"

type Vendor struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	ServiceCategory string    `json:"service_category"` // free text, e.g. "Videography", "DJ"
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	City            string    `json:"city"`
	Notes           string    `json:"notes"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateVendorRequest represents the request body for registering a vendor
type CreateVendorRequest struct {
	Name            string `json:"name"`
	ServiceCategory string `json:"service_category"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	City            string `json:"city"`
	Notes           string `json:"notes"`
}

// UpdateVendorRequest represents the request body for updating a vendor
type UpdateVendorRequest struct {
	Name            string `json:"name"`
	ServiceCategory string `json:"service_category"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	City            string `json:"city"`
	Notes           string `json:"notes"`
	IsActive        bool   `json:"is_active"`
}
