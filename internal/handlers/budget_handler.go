package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"utsav-backend/internal/models"
	"utsav-backend/internal/services"

	"github.com/gorilla/mux"
)

type BudgetHandler struct {
	Service *services.BudgetService
	Events  *services.EventService
}

func NewBudgetHandler(s *services.BudgetService, events *services.EventService) *BudgetHandler {
	return &BudgetHandler{Service: s, Events: events}
}

// Initialize (re)creates the nine-category allocation set. An explicit
// total_budget in the body overrides the event's stored budget.
func (h *BudgetHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	event, err := h.Events.GetEvent(r.Context(), eventID)
	if err != nil {
		serviceError(w, err)
		return
	}

	totalBudget := event.TotalBudget
	var req models.InitializeBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.TotalBudget > 0 {
		totalBudget = req.TotalBudget
	}

	allocations, err := h.Service.Initialize(r.Context(), eventID, totalBudget)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(allocations)
}

func (h *BudgetHandler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	allocations, err := h.Service.ListAllocations(r.Context(), eventID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(allocations)
}

// SetAllocation overwrites one category's amount
func (h *BudgetHandler) SetAllocation(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	var req models.SetAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.Events.GetEvent(r.Context(), eventID)
	if err != nil {
		serviceError(w, err)
		return
	}

	allocation, err := h.Service.SetAllocation(r.Context(), eventID, req.Category, req.Amount, event.TotalBudget)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(allocation)
}

// Recompute rederives spend and status for every category from the ledger
func (h *BudgetHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	allocations, err := h.Service.RecomputeStatus(r.Context(), eventID)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(allocations)
}

func (h *BudgetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	summary, err := h.Service.Summary(r.Context(), eventID)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
