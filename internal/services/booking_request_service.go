package services

import (
	"context"
	"errors"
	"fmt"

	"utsav-backend/internal/locks"
	"utsav-backend/internal/models"
	"utsav-backend/internal/notify"
	"utsav-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// BookingRequestStore is the persistence surface the service needs.
// *repositories.BookingRequestRepository satisfies it; tests use fakes.
type BookingRequestStore interface {
	Create(ctx context.Context, req *models.BookingRequest) error
	Get(ctx context.Context, id int) (*models.BookingRequest, error)
	CountLive(ctx context.Context, eventID int, functionID *int, vendorID int, serviceCategory string) (int, error)
	Decline(ctx context.Context, id int) error
	AcceptWithAssignment(ctx context.Context, requestID int, assignment *models.VendorAssignment) error
	ListByEvent(ctx context.Context, eventID int) ([]*models.BookingRequest, error)
	ListByVendor(ctx context.Context, vendorID int) ([]*models.BookingRequest, error)
	ListByPlanner(ctx context.Context, userID int) ([]*models.BookingRequest, error)
}

// VendorDirectory supplies the vendor's display name and category at request
// creation. The service stores a denormalized copy and never re-fetches.
type VendorDirectory interface {
	Get(ctx context.Context, id int) (*models.Vendor, error)
}

type BookingRequestService struct {
	Store      BookingRequestStore
	Vendors    VendorDirectory
	Locks      *locks.EventLocks
	Dispatcher *notify.Dispatcher
	ActionLog  *repositories.PlannerActionLogRepository // optional
}

func NewBookingRequestService(store BookingRequestStore, vendors VendorDirectory, eventLocks *locks.EventLocks, dispatcher *notify.Dispatcher) *BookingRequestService {
	return &BookingRequestService{
		Store:      store,
		Vendors:    vendors,
		Locks:      eventLocks,
		Dispatcher: dispatcher,
	}
}

// SetActionLog wires the optional planner action log
func (s *BookingRequestService) SetActionLog(repo *repositories.PlannerActionLogRepository) {
	s.ActionLog = repo
}

// CreateRequest inserts a pending request after the duplicate check. At most one
// live (non-declined) request may exist per (event, function, vendor, category).
func (s *BookingRequestService) CreateRequest(ctx context.Context, req *models.CreateBookingRequestRequest, userID int) (*models.BookingRequest, error) {
	vendor, err := s.Vendors.Get(ctx, req.VendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vendor %d: %w", req.VendorID, ErrNotFound)
		}
		return nil, err
	}

	category := req.ServiceCategory
	if category == "" {
		category = vendor.ServiceCategory
	}

	s.Locks.Lock(req.EventID)
	defer s.Locks.Unlock(req.EventID)

	count, err := s.Store.CountLive(ctx, req.EventID, req.FunctionID, req.VendorID, category)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateRequest
	}

	request := &models.BookingRequest{
		EventID:         req.EventID,
		FunctionID:      req.FunctionID,
		VendorID:        req.VendorID,
		VendorName:      vendor.Name,
		ServiceCategory: category,
		ProposedAmount:  req.ProposedAmount,
		Status:          models.RequestStatusPending,
		Notes:           req.Notes,
		CreatedByUserID: userID,
	}
	if err := s.Store.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Transition moves a pending request to accepted or declined. Acceptance and the
// creation of the resulting vendor assignment are one unit: if the assignment
// cannot be created the request stays pending.
func (s *BookingRequestService) Transition(ctx context.Context, requestID int, target models.BookingRequestStatus, userID int) (*models.BookingRequest, error) {
	request, err := s.Store.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.Locks.Lock(request.EventID)
	defer s.Locks.Unlock(request.EventID)

	// Re-read under the lock; a concurrent transition may have won
	request, err = s.Store.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !request.Status.CanTransition(target) {
		return nil, ErrInvalidTransition
	}

	switch target {
	case models.RequestStatusDeclined:
		if err := s.Store.Decline(ctx, requestID); err != nil {
			if errors.Is(err, repositories.ErrRequestNotPending) {
				return nil, ErrInvalidTransition
			}
			return nil, err
		}
		request.Status = models.RequestStatusDeclined
		s.logAction(ctx, userID, request, "REQUEST_DECLINED", fmt.Sprintf("Declined request for %s (%s)", request.VendorName, request.ServiceCategory))

	case models.RequestStatusAccepted:
		assignment := &models.VendorAssignment{
			EventID:        request.EventID,
			FunctionID:     request.FunctionID,
			VendorID:       request.VendorID,
			VendorName:     request.VendorName,
			VendorCategory: request.ServiceCategory,
			BudgetCategory: models.MapServiceCategory(request.ServiceCategory),
			AgreedAmount:   request.ProposedAmount,
			Status:         models.AssignmentStatusRequested,
			Notes:          request.Notes,
		}
		if err := s.Store.AcceptWithAssignment(ctx, requestID, assignment); err != nil {
			if errors.Is(err, repositories.ErrRequestNotPending) {
				return nil, ErrInvalidTransition
			}
			return nil, err
		}
		request.Status = models.RequestStatusAccepted
		s.logAction(ctx, userID, request, "REQUEST_ACCEPTED", fmt.Sprintf("Accepted request for %s (%s), assignment #%d", request.VendorName, request.ServiceCategory, assignment.ID))
		if s.Dispatcher != nil {
			reqID := requestID
			s.Dispatcher.Publish(notify.DomainEvent{
				Type:       notify.EventRequestAccepted,
				EventID:    request.EventID,
				RequestID:  &reqID,
				Assignment: assignment,
				Category:   assignment.BudgetCategory,
				Message:    fmt.Sprintf("%s accepted for %s", request.VendorName, assignment.BudgetCategory),
			})
		}

	default:
		return nil, ErrInvalidTransition
	}

	return request, nil
}

// GetRequest returns one request by id
func (s *BookingRequestService) GetRequest(ctx context.Context, id int) (*models.BookingRequest, error) {
	request, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return request, nil
}

// ListForEvent returns the event's requests ordered by creation time
func (s *BookingRequestService) ListForEvent(ctx context.Context, eventID int) ([]*models.BookingRequest, error) {
	return s.Store.ListByEvent(ctx, eventID)
}

func (s *BookingRequestService) ListForVendor(ctx context.Context, vendorID int) ([]*models.BookingRequest, error) {
	return s.Store.ListByVendor(ctx, vendorID)
}

func (s *BookingRequestService) ListForPlanner(ctx context.Context, userID int) ([]*models.BookingRequest, error) {
	return s.Store.ListByPlanner(ctx, userID)
}

func (s *BookingRequestService) logAction(ctx context.Context, userID int, request *models.BookingRequest, action, description string) {
	if s.ActionLog == nil {
		return
	}
	targetID := request.ID
	s.ActionLog.Log(ctx, &models.PlannerActionLog{
		UserID:      userID,
		EventID:     request.EventID,
		ActionType:  action,
		TargetType:  "booking_request",
		TargetID:    &targetID,
		Description: description,
	})
}
