package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"utsav-backend/internal/models"
	"utsav-backend/internal/storage"
	"utsav-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
	"github.com/jung-kurt/gofpdf/v2"
)

// EventReportData holds everything that goes into an event budget report
type EventReportData struct {
	Event       *models.Event
	Allocations []*models.BudgetAllocation
	Assignments []*models.VendorAssignment
	Summary     *models.BudgetSummary
}

// ReportService generates event budget PDFs and optionally archives them to R2
type ReportService struct {
	Events      EventStore
	Allocations AllocationStore
	Assignments AssignmentStore
	Budget      *BudgetService
	Store       *storage.R2Store // nil when R2 is not configured
}

func NewReportService(events EventStore, allocations AllocationStore, assignments AssignmentStore, budget *BudgetService, store *storage.R2Store) *ReportService {
	return &ReportService{
		Events:      events,
		Allocations: allocations,
		Assignments: assignments,
		Budget:      budget,
		Store:       store,
	}
}

// GetEventReportData fetches all data for an event report
func (s *ReportService) GetEventReportData(ctx context.Context, eventID int) (*EventReportData, error) {
	event, err := s.Events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	allocations, err := s.Allocations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.Assignments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	summary, err := s.Budget.Summary(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &EventReportData{
		Event:       event,
		Allocations: allocations,
		Assignments: assignments,
		Summary:     summary,
	}, nil
}

// GenerateEventPDF renders the budget report for one event
func (s *ReportService) GenerateEventPDF(data *EventReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Utsav - Event Budget Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Event Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Event Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	eventDate := "TBD"
	if data.Event.StartDate != nil {
		eventDate = data.Event.StartDate.Format("02-Jan-2006")
	}
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", data.Event.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", eventDate), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Venue: %s", data.Event.Venue), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Guests: %d", data.Event.GuestCount), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Allocation table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Budget Allocations", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(50, 7, "Category", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Allocated", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Percent", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Spent", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Status", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, a := range data.Allocations {
		switch a.Status {
		case models.AllocationStatusOver:
			pdf.SetFillColor(255, 200, 200)
		case models.AllocationStatusWarning:
			pdf.SetFillColor(255, 240, 200)
		default:
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.CellFormat(50, 6, string(a.Category), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("Rs. %.2f", a.AllocatedAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.1f%%", a.AllocatedPercent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("Rs. %.2f", a.SpentAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, string(a.Status), "1", 1, "C", true, 0, "")
	}
	pdf.Ln(5)

	// Assignment table
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 8, "Vendor Assignments", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(55, 7, "Vendor", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Category", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Agreed", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Paid", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, a := range data.Assignments {
		name := a.VendorName
		if len(name) > 28 {
			name = name[:25] + "..."
		}
		pdf.CellFormat(55, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, string(a.BudgetCategory), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, string(a.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("Rs. %.2f", a.AgreedAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("Rs. %.2f", a.PaidAmount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// Financial Summary
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 8, "Financial Summary", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, fmt.Sprintf("Total Budget: Rs. %.2f", data.Summary.TotalBudget), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Committed: Rs. %.2f", data.Summary.TotalCommitted), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, fmt.Sprintf("Spent: Rs. %.2f", data.Summary.TotalSpent), "1", 1, "C", false, 0, "")

	remaining := data.Summary.TotalBudget - data.Summary.TotalSpent
	if remaining < 0 {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, fmt.Sprintf("Remaining: Rs. %.2f", remaining), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateAndStore builds the PDF and archives it to R2 when configured.
// Returns the PDF bytes and the object key (empty when storage is disabled).
func (s *ReportService) GenerateAndStore(ctx context.Context, eventID int) ([]byte, string, error) {
	data, err := s.GetEventReportData(ctx, eventID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := s.GenerateEventPDF(data)
	if err != nil {
		return nil, "", err
	}

	key := ""
	if s.Store != nil {
		key = fmt.Sprintf("reports/event_%d_%s.pdf", eventID, timeutil.Now().Format("20060102_150405"))
		if key, err = s.Store.Upload(ctx, key, pdfBytes, "application/pdf"); err != nil {
			// Archive failure should not block the download
			key = ""
		}
	}
	return pdfBytes, key, nil
}

// ListArchivedReports returns R2 keys of previously generated reports
func (s *ReportService) ListArchivedReports(ctx context.Context) ([]string, error) {
	if s.Store == nil {
		return nil, nil
	}
	return s.Store.List(ctx, "reports/")
}
