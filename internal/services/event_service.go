package services

import (
	"context"
	"errors"

	"utsav-backend/internal/cache"
	"utsav-backend/internal/models"
	"utsav-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type EventService struct {
	Repo   *repositories.EventRepository
	Budget *BudgetService
}

func NewEventService(repo *repositories.EventRepository, budget *BudgetService) *EventService {
	return &EventService{Repo: repo, Budget: budget}
}

// CreateEvent inserts the event and seeds its nine budget allocations
func (s *EventService) CreateEvent(ctx context.Context, req *models.CreateEventRequest, ownerUserID int) (*models.Event, error) {
	if req.Name == "" {
		return nil, errors.New("event name is required")
	}
	event := &models.Event{
		Name:        req.Name,
		EventType:   req.EventType,
		Venue:       req.Venue,
		City:        req.City,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TotalBudget: req.TotalBudget,
		GuestCount:  req.GuestCount,
		Notes:       req.Notes,
		OwnerUserID: ownerUserID,
	}
	if err := s.Repo.Create(ctx, event); err != nil {
		return nil, err
	}
	if _, err := s.Budget.Initialize(ctx, event.ID, event.TotalBudget); err != nil {
		return nil, err
	}
	cache.InvalidateEventCaches(ctx, event.ID)
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

// ListEvents returns the planner's events; admins pass ownerUserID 0 for all
func (s *EventService) ListEvents(ctx context.Context, ownerUserID int) ([]*models.Event, error) {
	return s.Repo.List(ctx, ownerUserID)
}

// UpdateEvent edits event details. A changed total budget does not touch the
// existing allocations; the planner reinitializes or edits them explicitly.
func (s *EventService) UpdateEvent(ctx context.Context, id int, req *models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Name = req.Name
	event.EventType = req.EventType
	event.Venue = req.Venue
	event.City = req.City
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	event.TotalBudget = req.TotalBudget
	event.GuestCount = req.GuestCount
	event.Notes = req.Notes
	if err := s.Repo.Update(ctx, event); err != nil {
		return nil, err
	}
	cache.InvalidateEventCaches(ctx, id)
	return event, nil
}

// AddFunction adds a sub-event like "Sangeet Night" or "Reception"
func (s *EventService) AddFunction(ctx context.Context, eventID int, req *models.CreateFunctionRequest) (*models.EventFunction, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	fn := &models.EventFunction{
		EventID:  eventID,
		Name:     req.Name,
		StartsAt: req.StartsAt,
		Venue:    req.Venue,
	}
	if err := s.Repo.CreateFunction(ctx, fn); err != nil {
		return nil, err
	}
	return fn, nil
}

func (s *EventService) ListFunctions(ctx context.Context, eventID int) ([]*models.EventFunction, error) {
	return s.Repo.ListFunctions(ctx, eventID)
}
