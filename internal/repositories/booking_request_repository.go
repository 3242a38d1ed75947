package repositories

import (
	"context"
	"errors"
	"fmt"

	"utsav-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRequestNotPending is returned when a conditional status flip matches no row,
// i.e. the request was already accepted or declined by a concurrent caller.
var ErrRequestNotPending = errors.New("booking request is not pending")

type BookingRequestRepository struct {
	DB *pgxpool.Pool
}

func NewBookingRequestRepository(db *pgxpool.Pool) *BookingRequestRepository {
	return &BookingRequestRepository{DB: db}
}

func (r *BookingRequestRepository) Create(ctx context.Context, req *models.BookingRequest) error {
	query := `
		INSERT INTO booking_requests (event_id, function_id, vendor_id, vendor_name, service_category, proposed_amount, status, notes, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(ctx, query,
		req.EventID,
		req.FunctionID,
		req.VendorID,
		req.VendorName,
		req.ServiceCategory,
		req.ProposedAmount,
		req.Status,
		req.Notes,
		req.CreatedByUserID,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}
	return nil
}

func (r *BookingRequestRepository) Get(ctx context.Context, id int) (*models.BookingRequest, error) {
	query := selectBookingRequest + ` WHERE id = $1`
	return r.scanOne(r.DB.QueryRow(ctx, query, id))
}

// CountLive counts non-declined requests for the duplicate check. function_id is
// matched exactly, including NULL for event-wide requests.
func (r *BookingRequestRepository) CountLive(ctx context.Context, eventID int, functionID *int, vendorID int, serviceCategory string) (int, error) {
	query := `
		SELECT COUNT(*) FROM booking_requests
		WHERE event_id = $1
		AND function_id IS NOT DISTINCT FROM $2
		AND vendor_id = $3
		AND LOWER(service_category) = LOWER($4)
		AND status <> 'declined'
	`
	var count int
	err := r.DB.QueryRow(ctx, query, eventID, functionID, vendorID, serviceCategory).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Decline flips a pending request to declined. Conditional on status so a
// concurrent accept/decline loses cleanly.
func (r *BookingRequestRepository) Decline(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE booking_requests SET status = 'declined', updated_at = NOW() WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotPending
	}
	return nil
}

// AcceptWithAssignment flips a pending request to accepted and creates its vendor
// assignment in one transaction. Either both happen or neither: if the insert
// fails the status flip rolls back and the request stays pending. The conditional
// UPDATE guarantees at most one assignment per request even under concurrent accepts.
func (r *BookingRequestRepository) AcceptWithAssignment(ctx context.Context, requestID int, assignment *models.VendorAssignment) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin accept transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE booking_requests SET status = 'accepted', updated_at = NOW() WHERE id = $1 AND status = 'pending'`, requestID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotPending
	}

	query := `
		INSERT INTO vendor_assignments (event_id, function_id, vendor_id, vendor_name, vendor_category, budget_category, agreed_amount, paid_amount, status, notes, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		assignment.EventID,
		assignment.FunctionID,
		assignment.VendorID,
		assignment.VendorName,
		assignment.VendorCategory,
		assignment.BudgetCategory,
		assignment.AgreedAmount,
		assignment.Status,
		assignment.Notes,
		requestID,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create assignment for accepted request: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *BookingRequestRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.BookingRequest, error) {
	query := selectBookingRequest + ` WHERE event_id = $1 ORDER BY created_at`
	return r.list(ctx, query, eventID)
}

func (r *BookingRequestRepository) ListByVendor(ctx context.Context, vendorID int) ([]*models.BookingRequest, error) {
	query := selectBookingRequest + ` WHERE vendor_id = $1 ORDER BY created_at`
	return r.list(ctx, query, vendorID)
}

func (r *BookingRequestRepository) ListByPlanner(ctx context.Context, userID int) ([]*models.BookingRequest, error) {
	query := selectBookingRequest + ` WHERE created_by_user_id = $1 ORDER BY created_at`
	return r.list(ctx, query, userID)
}

const selectBookingRequest = `
	SELECT id, event_id, function_id, vendor_id, vendor_name, service_category, proposed_amount,
	       status, COALESCE(notes, ''), created_by_user_id, created_at, updated_at
	FROM booking_requests`

func (r *BookingRequestRepository) list(ctx context.Context, query string, arg interface{}) ([]*models.BookingRequest, error) {
	rows, err := r.DB.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*models.BookingRequest
	for rows.Next() {
		req, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (r *BookingRequestRepository) scanOne(row pgx.Row) (*models.BookingRequest, error) {
	req := &models.BookingRequest{}
	err := row.Scan(
		&req.ID,
		&req.EventID,
		&req.FunctionID,
		&req.VendorID,
		&req.VendorName,
		&req.ServiceCategory,
		&req.ProposedAmount,
		&req.Status,
		&req.Notes,
		&req.CreatedByUserID,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
