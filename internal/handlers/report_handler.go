package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"utsav-backend/internal/services"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// EventReport streams the event's budget report as a PDF download
func (h *ReportHandler) EventReport(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	eventID, _ := strconv.Atoi(idStr)

	pdfBytes, key, err := h.Service.GenerateAndStore(r.Context(), eventID)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="event_%d_budget.pdf"`, eventID))
	if key != "" {
		w.Header().Set("X-Archive-Key", key)
	}
	w.Write(pdfBytes)
}

// ListArchived returns keys of reports previously archived to object storage
func (h *ReportHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	keys, err := h.Service.ListArchivedReports(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"reports": keys})
}
