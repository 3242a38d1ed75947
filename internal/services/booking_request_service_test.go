package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"utsav-backend/internal/locks"
	"utsav-backend/internal/models"
	"utsav-backend/internal/notify"
	"utsav-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRequestStore is an in-memory BookingRequestStore with the repository's
// conditional-update semantics, safe for concurrent use.
type fakeRequestStore struct {
	mu          sync.Mutex
	nextID      int
	requests    map[int]*models.BookingRequest
	assignments []*models.VendorAssignment
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: make(map[int]*models.BookingRequest)}
}

func (f *fakeRequestStore) Create(ctx context.Context, req *models.BookingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	req.ID = f.nextID
	stored := *req
	f.requests[req.ID] = &stored
	return nil
}

func (f *fakeRequestStore) Get(ctx context.Context, id int) (*models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRequestStore) CountLive(ctx context.Context, eventID int, functionID *int, vendorID int, serviceCategory string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.requests {
		if r.EventID != eventID || r.VendorID != vendorID {
			continue
		}
		if !strings.EqualFold(r.ServiceCategory, serviceCategory) {
			continue
		}
		if !sameFunction(r.FunctionID, functionID) {
			continue
		}
		if r.Status.IsLive() {
			count++
		}
	}
	return count, nil
}

func sameFunction(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (f *fakeRequestStore) Decline(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok || r.Status != models.RequestStatusPending {
		return repositories.ErrRequestNotPending
	}
	r.Status = models.RequestStatusDeclined
	return nil
}

func (f *fakeRequestStore) AcceptWithAssignment(ctx context.Context, requestID int, assignment *models.VendorAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[requestID]
	if !ok || r.Status != models.RequestStatusPending {
		return repositories.ErrRequestNotPending
	}
	r.Status = models.RequestStatusAccepted
	assignment.ID = len(f.assignments) + 1
	stored := *assignment
	f.assignments = append(f.assignments, &stored)
	return nil
}

func (f *fakeRequestStore) ListByEvent(ctx context.Context, eventID int) ([]*models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.BookingRequest
	for _, r := range f.requests {
		if r.EventID == eventID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) ListByVendor(ctx context.Context, vendorID int) ([]*models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.BookingRequest
	for _, r := range f.requests {
		if r.VendorID == vendorID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) ListByPlanner(ctx context.Context, userID int) ([]*models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.BookingRequest
	for _, r := range f.requests {
		if r.CreatedByUserID == userID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeVendorDir struct {
	vendors map[int]*models.Vendor
}

func (f *fakeVendorDir) Get(ctx context.Context, id int) (*models.Vendor, error) {
	v, ok := f.vendors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return v, nil
}

func newBookingFixture() (*BookingRequestService, *fakeRequestStore, *notify.Dispatcher) {
	store := newFakeRequestStore()
	vendors := &fakeVendorDir{vendors: map[int]*models.Vendor{
		10: {ID: 10, Name: "Sharma Caterers", ServiceCategory: "Catering"},
		11: {ID: 11, Name: "DJ Nites", ServiceCategory: "DJ"},
	}}
	dispatcher := notify.NewDispatcher()
	svc := NewBookingRequestService(store, vendors, locks.NewEventLocks(), dispatcher)
	return svc, store, dispatcher
}

func TestCreateRequestDefaultsCategoryFromVendor(t *testing.T) {
	svc, _, _ := newBookingFixture()

	req, err := svc.CreateRequest(context.Background(), &models.CreateBookingRequestRequest{
		EventID:        1,
		VendorID:       10,
		ProposedAmount: 50000,
	}, 5)
	require.NoError(t, err)

	assert.Equal(t, "Catering", req.ServiceCategory)
	assert.Equal(t, "Sharma Caterers", req.VendorName)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, 5, req.CreatedByUserID)
	assert.NotZero(t, req.ID)
}

func TestCreateRequestUnknownVendor(t *testing.T) {
	svc, _, _ := newBookingFixture()

	_, err := svc.CreateRequest(context.Background(), &models.CreateBookingRequestRequest{
		EventID:  1,
		VendorID: 999,
	}, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRequestDuplicateRejected(t *testing.T) {
	svc, _, _ := newBookingFixture()
	ctx := context.Background()

	_, err := svc.CreateRequest(ctx, &models.CreateBookingRequestRequest{EventID: 1, VendorID: 10}, 5)
	require.NoError(t, err)

	_, err = svc.CreateRequest(ctx, &models.CreateBookingRequestRequest{EventID: 1, VendorID: 10}, 5)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// Same vendor on a different event is fine
	_, err = svc.CreateRequest(ctx, &models.CreateBookingRequestRequest{EventID: 2, VendorID: 10}, 5)
	assert.NoError(t, err)
}

func TestDeclineFreesDuplicateSlot(t *testing.T) {
	svc, _, _ := newBookingFixture()
	ctx := context.Background()

	first, err := svc.CreateRequest(ctx, &models.CreateBookingRequestRequest{EventID: 1, VendorID: 10}, 5)
	require.NoError(t, err)

	declined, err := svc.Transition(ctx, first.ID, models.RequestStatusDeclined, 5)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusDeclined, declined.Status)

	// The declined request no longer blocks a fresh one for the same tuple
	_, err = svc.CreateRequest(ctx, &models.CreateBookingRequestRequest{EventID: 1, VendorID: 10}, 5)
	assert.NoError(t, err)
}

func TestAcceptCreatesAssignment(t *testing.T) {
	svc, store, dispatcher := newBookingFixture()
	ctx := context.Background()

	var events []notify.DomainEvent
	dispatcher.Subscribe(func(ev notify.DomainEvent) { events = append(events, ev) })

	req, err := svc.CreateRequest(ctx, &models.CreateBookingRequestRequest{
		EventID:        1,
		VendorID:       11,
		ProposedAmount: 30000,
	}, 5)
	require.NoError(t, err)

	accepted, err := svc.Transition(ctx, req.ID, models.RequestStatusAccepted, 5)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, accepted.Status)

	require.Len(t, store.assignments, 1)
	a := store.assignments[0]
	assert.Equal(t, 1, a.EventID)
	assert.Equal(t, 11, a.VendorID)
	assert.Equal(t, "DJ Nites", a.VendorName)
	assert.Equal(t, models.BudgetCategoryEntertainment, a.BudgetCategory)
	assert.Equal(t, 30000.0, a.AgreedAmount)
	assert.Equal(t, models.AssignmentStatusRequested, a.Status)

	require.Len(t, events, 1)
	assert.Equal(t, notify.EventRequestAccepted, events[0].Type)
	assert.Equal(t, 1, events[0].EventID)
}

func TestTransitionTerminalRejected(t *testing.T) {
	svc, _, _ := newBookingFixture()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, &models.CreateBookingRequestRequest{EventID: 1, VendorID: 10}, 5)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, req.ID, models.RequestStatusAccepted, 5)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, req.ID, models.RequestStatusDeclined, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Transition(ctx, req.ID, models.RequestStatusAccepted, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionUnknownRequest(t *testing.T) {
	svc, _, _ := newBookingFixture()
	_, err := svc.Transition(context.Background(), 404, models.RequestStatusAccepted, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentAcceptCreatesSingleAssignment(t *testing.T) {
	svc, store, _ := newBookingFixture()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, &models.CreateBookingRequestRequest{
		EventID:        1,
		VendorID:       10,
		ProposedAmount: 80000,
	}, 5)
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Transition(ctx, req.ID, models.RequestStatusAccepted, 5)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, successes, "exactly one accept must win")
	assert.Len(t, store.assignments, 1, "only one assignment may be created")
}
