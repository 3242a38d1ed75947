package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"utsav-backend/internal/repositories"

	"github.com/gorilla/mux"
)

type ActionLogHandler struct {
	Repo *repositories.PlannerActionLogRepository
}

func NewActionLogHandler(repo *repositories.PlannerActionLogRepository) *ActionLogHandler {
	return &ActionLogHandler{Repo: repo}
}

func (h *ActionLogHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.Repo.ListByEvent(r.Context(), eventID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
