package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"utsav-backend/internal/locks"
	"utsav-backend/internal/models"
	"utsav-backend/internal/notify"
	"utsav-backend/internal/services"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRequestStore holds a single request, enough to drive the handler paths
type stubRequestStore struct {
	request   *models.BookingRequest
	liveCount int
	nextID    int
}

func (s *stubRequestStore) Create(ctx context.Context, req *models.BookingRequest) error {
	s.nextID++
	req.ID = s.nextID
	stored := *req
	s.request = &stored
	return nil
}

func (s *stubRequestStore) Get(ctx context.Context, id int) (*models.BookingRequest, error) {
	if s.request == nil || s.request.ID != id {
		return nil, pgx.ErrNoRows
	}
	copied := *s.request
	return &copied, nil
}

func (s *stubRequestStore) CountLive(ctx context.Context, eventID int, functionID *int, vendorID int, serviceCategory string) (int, error) {
	return s.liveCount, nil
}

func (s *stubRequestStore) Decline(ctx context.Context, id int) error {
	s.request.Status = models.RequestStatusDeclined
	return nil
}

func (s *stubRequestStore) AcceptWithAssignment(ctx context.Context, requestID int, assignment *models.VendorAssignment) error {
	s.request.Status = models.RequestStatusAccepted
	assignment.ID = 1
	return nil
}

func (s *stubRequestStore) ListByEvent(ctx context.Context, eventID int) ([]*models.BookingRequest, error) {
	return nil, nil
}

func (s *stubRequestStore) ListByVendor(ctx context.Context, vendorID int) ([]*models.BookingRequest, error) {
	return nil, nil
}

func (s *stubRequestStore) ListByPlanner(ctx context.Context, userID int) ([]*models.BookingRequest, error) {
	return nil, nil
}

type stubVendorDir struct{}

func (stubVendorDir) Get(ctx context.Context, id int) (*models.Vendor, error) {
	if id != 10 {
		return nil, pgx.ErrNoRows
	}
	return &models.Vendor{ID: 10, Name: "Sharma Caterers", ServiceCategory: "Catering"}, nil
}

func newBookingTestRouter(store *stubRequestStore) *mux.Router {
	svc := services.NewBookingRequestService(store, stubVendorDir{}, locks.NewEventLocks(), notify.NewDispatcher())
	handler := NewBookingRequestHandler(svc)

	r := mux.NewRouter()
	r.HandleFunc("/api/booking-requests", handler.CreateRequest).Methods("POST")
	r.HandleFunc("/api/booking-requests/{id}", handler.GetRequest).Methods("GET")
	r.HandleFunc("/api/booking-requests/{id}/transition", handler.Transition).Methods("POST")
	return r
}

func TestCreateRequestReturns201(t *testing.T) {
	router := newBookingTestRouter(&stubRequestStore{})

	body, _ := json.Marshal(models.CreateBookingRequestRequest{
		EventID:        1,
		VendorID:       10,
		ProposedAmount: 50000,
	})
	req := httptest.NewRequest("POST", "/api/booking-requests", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.BookingRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "Sharma Caterers", created.VendorName)
	assert.Equal(t, models.RequestStatusPending, created.Status)
}

func TestCreateRequestDuplicateReturns409(t *testing.T) {
	router := newBookingTestRouter(&stubRequestStore{liveCount: 1})

	body, _ := json.Marshal(models.CreateBookingRequestRequest{EventID: 1, VendorID: 10})
	req := httptest.NewRequest("POST", "/api/booking-requests", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateRequestInvalidBodyReturns400(t *testing.T) {
	router := newBookingTestRouter(&stubRequestStore{})

	req := httptest.NewRequest("POST", "/api/booking-requests", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRequestUnknownReturns404(t *testing.T) {
	router := newBookingTestRouter(&stubRequestStore{})

	req := httptest.NewRequest("GET", "/api/booking-requests/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransitionAcceptedTwiceReturns409(t *testing.T) {
	store := &stubRequestStore{}
	router := newBookingTestRouter(store)

	createBody, _ := json.Marshal(models.CreateBookingRequestRequest{EventID: 1, VendorID: 10})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/booking-requests", bytes.NewReader(createBody)))
	require.Equal(t, http.StatusCreated, rec.Code)

	accept, _ := json.Marshal(models.TransitionBookingRequestRequest{Status: models.RequestStatusAccepted})

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/booking-requests/1/transition", bytes.NewReader(accept)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/booking-requests/1/transition", bytes.NewReader(accept)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrDuplicateRequest, http.StatusConflict},
		{services.ErrInvalidTransition, http.StatusConflict},
		{services.ErrAssignmentLocked, http.StatusConflict},
		{services.ErrOverPayment, http.StatusUnprocessableEntity},
		{services.ErrPaymentDecrease, http.StatusUnprocessableEntity},
		{services.ErrArrivalRequired, http.StatusUnprocessableEntity},
		{services.ErrProofRequired, http.StatusUnprocessableEntity},
		{services.ErrInvalidTOTPCode, http.StatusBadRequest},
		{services.ErrNoTOTPSecret, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), "err=%v", tt.err)
	}
}
