package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"utsav-backend/internal/middleware"
	"utsav-backend/internal/models"
	"utsav-backend/internal/services"

	"github.com/gorilla/mux"
)

type VendorAssignmentHandler struct {
	Service *services.VendorAssignmentService
	Budget  *services.BudgetService
}

func NewVendorAssignmentHandler(s *services.VendorAssignmentService, budget *services.BudgetService) *VendorAssignmentHandler {
	return &VendorAssignmentHandler{Service: s, Budget: budget}
}

func (h *VendorAssignmentHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assignment, err := h.Service.CreateAssignment(r.Context(), &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(assignment)
}

func (h *VendorAssignmentHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	assignment, err := h.Service.GetAssignment(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignment)
}

func (h *VendorAssignmentHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	assignments, err := h.Service.ListByEvent(r.Context(), eventID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignments)
}

// SetStatus applies a lifecycle transition, then refreshes the budget view
func (h *VendorAssignmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	var req models.SetAssignmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	assignment, err := h.Service.SetStatus(r.Context(), id, req.Status, userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	h.recompute(r, assignment.EventID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignment)
}

func (h *VendorAssignmentHandler) RecordArrival(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	assignment, err := h.Service.RecordArrival(r.Context(), id, userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	h.recompute(r, assignment.EventID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignment)
}

func (h *VendorAssignmentHandler) RecordDeparture(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	assignment, err := h.Service.RecordDeparture(r.Context(), id, userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	h.recompute(r, assignment.EventID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignment)
}

func (h *VendorAssignmentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	var req models.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	assignment, err := h.Service.RecordPayment(r.Context(), id, req.Amount, req.AllowOverpay, userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	h.recompute(r, assignment.EventID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignment)
}

func (h *VendorAssignmentHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	var req models.AddTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.Service.AddTask(r.Context(), id, &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}

func (h *VendorAssignmentHandler) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentID, _ := strconv.Atoi(vars["id"])
	taskID, _ := strconv.Atoi(vars["taskId"])

	var req models.SetTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.Service.SetTaskStatus(r.Context(), assignmentID, taskID, req.Status, req.ProofRef)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

func (h *VendorAssignmentHandler) SetBackup(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	var req models.SetBackupVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assignment, err := h.Service.SetBackup(r.Context(), id, req.BackupVendorID, req.BackupVendorName)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignment)
}

func (h *VendorAssignmentHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.Service.Delete(r.Context(), id, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// recompute refreshes per-category spend and statuses after a money mutation
func (h *VendorAssignmentHandler) recompute(r *http.Request, eventID int) {
	if h.Budget == nil {
		return
	}
	if _, err := h.Budget.RecomputeStatus(r.Context(), eventID); err != nil {
		log.Printf("[Budget] recompute for event %d failed: %v", eventID, err)
	}
}
