package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"utsav-backend/internal/metrics"
	"utsav-backend/internal/middleware"
	"utsav-backend/internal/models"
	"utsav-backend/internal/services"

	"github.com/gorilla/mux"
)

type BookingRequestHandler struct {
	Service *services.BookingRequestService
}

func NewBookingRequestHandler(s *services.BookingRequestService) *BookingRequestHandler {
	return &BookingRequestHandler{Service: s}
}

func (h *BookingRequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	request, err := h.Service.CreateRequest(r.Context(), &req, userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	metrics.BookingRequestsTotal.WithLabelValues("created").Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(request)
}

func (h *BookingRequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	request, err := h.Service.GetRequest(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(request)
}

// Transition accepts or declines a pending request
func (h *BookingRequestHandler) Transition(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	var req models.TransitionBookingRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	request, err := h.Service.Transition(r.Context(), id, req.Status, userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	metrics.BookingRequestsTotal.WithLabelValues(string(req.Status)).Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(request)
}

func (h *BookingRequestHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	requests, err := h.Service.ListForEvent(r.Context(), eventID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}

func (h *BookingRequestHandler) ListByVendor(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	vendorID, _ := strconv.Atoi(idStr)

	requests, err := h.Service.ListForVendor(r.Context(), vendorID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}

// ListMine returns requests created by the authenticated planner
func (h *BookingRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	requests, err := h.Service.ListForPlanner(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}
