package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"utsav-backend/internal/middleware"
	"utsav-backend/internal/models"
	"utsav-backend/internal/services"

	"github.com/gorilla/mux"
)

type EventHandler struct {
	Service *services.EventService
}

func NewEventHandler(s *services.EventService) *EventHandler {
	return &EventHandler{Service: s}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	event, err := h.Service.CreateEvent(r.Context(), &req, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(event)
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	event, err := h.Service.GetEvent(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

// ListEvents returns the caller's events; admins see everything
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ownerUserID := 0
	if role, _ := middleware.GetRoleFromContext(r.Context()); role != "admin" {
		ownerUserID, _ = middleware.GetUserIDFromContext(r.Context())
	}

	events, err := h.Service.ListEvents(r.Context(), ownerUserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	var req models.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.Service.UpdateEvent(r.Context(), id, &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

func (h *EventHandler) AddFunction(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	var req models.CreateFunctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fn, err := h.Service.AddFunction(r.Context(), eventID, &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(fn)
}

func (h *EventHandler) ListFunctions(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	functions, err := h.Service.ListFunctions(r.Context(), eventID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(functions)
}
