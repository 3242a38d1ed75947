package http

import (
	"net/http"

	"utsav-backend/internal/handlers"
	"utsav-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	totpHandler *handlers.TOTPHandler,
	eventHandler *handlers.EventHandler,
	vendorHandler *handlers.VendorHandler,
	bookingRequestHandler *handlers.BookingRequestHandler,
	assignmentHandler *handlers.VendorAssignmentHandler,
	budgetHandler *handlers.BudgetHandler,
	reportHandler *handlers.ReportHandler,
	actionLogHandler *handlers.ActionLogHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/verify-2fa", authHandler.Verify2FA).Methods("POST")

	// Protected API routes - Two-factor setup
	twoFactorAPI := r.PathPrefix("/api/2fa").Subrouter()
	twoFactorAPI.Use(authMiddleware.Authenticate)
	twoFactorAPI.HandleFunc("/setup", totpHandler.Setup).Methods("POST")
	twoFactorAPI.HandleFunc("/enable", totpHandler.Enable).Methods("POST")
	twoFactorAPI.HandleFunc("/disable", totpHandler.Disable).Methods("POST")

	// Protected API routes - Users (admin only, except /me)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("/me", userHandler.Me).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.ListUsers)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.CreateUser)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}/active", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.SetActive)).ServeHTTP).Methods("PATCH")

	// Protected API routes - Events
	eventsAPI := r.PathPrefix("/api/events").Subrouter()
	eventsAPI.Use(authMiddleware.Authenticate)
	eventsAPI.HandleFunc("", eventHandler.ListEvents).Methods("GET")
	eventsAPI.HandleFunc("", eventHandler.CreateEvent).Methods("POST")
	eventsAPI.HandleFunc("/{id}", eventHandler.GetEvent).Methods("GET")
	eventsAPI.HandleFunc("/{id}", eventHandler.UpdateEvent).Methods("PUT")
	eventsAPI.HandleFunc("/{id}/functions", eventHandler.ListFunctions).Methods("GET")
	eventsAPI.HandleFunc("/{id}/functions", eventHandler.AddFunction).Methods("POST")

	// Per-event views: requests, assignments, budget, logs, report
	eventsAPI.HandleFunc("/{id}/booking-requests", bookingRequestHandler.ListByEvent).Methods("GET")
	eventsAPI.HandleFunc("/{id}/assignments", assignmentHandler.ListByEvent).Methods("GET")
	eventsAPI.HandleFunc("/{id}/budget", budgetHandler.ListAllocations).Methods("GET")
	eventsAPI.HandleFunc("/{id}/budget/initialize", budgetHandler.Initialize).Methods("POST")
	eventsAPI.HandleFunc("/{id}/budget/allocation", budgetHandler.SetAllocation).Methods("PUT")
	eventsAPI.HandleFunc("/{id}/budget/recompute", budgetHandler.Recompute).Methods("POST")
	eventsAPI.HandleFunc("/{id}/budget/summary", budgetHandler.Summary).Methods("GET")
	eventsAPI.HandleFunc("/{id}/action-logs", actionLogHandler.ListByEvent).Methods("GET")
	eventsAPI.HandleFunc("/{id}/report", reportHandler.EventReport).Methods("GET")

	// Protected API routes - Vendors
	vendorsAPI := r.PathPrefix("/api/vendors").Subrouter()
	vendorsAPI.Use(authMiddleware.Authenticate)
	vendorsAPI.HandleFunc("", vendorHandler.ListVendors).Methods("GET")
	vendorsAPI.HandleFunc("", vendorHandler.CreateVendor).Methods("POST")
	vendorsAPI.HandleFunc("/{id}", vendorHandler.GetVendor).Methods("GET")
	vendorsAPI.HandleFunc("/{id}", vendorHandler.UpdateVendor).Methods("PUT")
	vendorsAPI.HandleFunc("/{id}/booking-requests", bookingRequestHandler.ListByVendor).Methods("GET")

	// Protected API routes - Booking requests
	requestsAPI := r.PathPrefix("/api/booking-requests").Subrouter()
	requestsAPI.Use(authMiddleware.Authenticate)
	requestsAPI.HandleFunc("", bookingRequestHandler.CreateRequest).Methods("POST")
	requestsAPI.HandleFunc("/mine", bookingRequestHandler.ListMine).Methods("GET")
	requestsAPI.HandleFunc("/{id}", bookingRequestHandler.GetRequest).Methods("GET")
	requestsAPI.HandleFunc("/{id}/transition", bookingRequestHandler.Transition).Methods("POST")

	// Protected API routes - Vendor assignments
	assignmentsAPI := r.PathPrefix("/api/assignments").Subrouter()
	assignmentsAPI.Use(authMiddleware.Authenticate)
	assignmentsAPI.HandleFunc("", assignmentHandler.CreateAssignment).Methods("POST")
	assignmentsAPI.HandleFunc("/{id}", assignmentHandler.GetAssignment).Methods("GET")
	assignmentsAPI.HandleFunc("/{id}", assignmentHandler.DeleteAssignment).Methods("DELETE")
	assignmentsAPI.HandleFunc("/{id}/status", assignmentHandler.SetStatus).Methods("PUT")
	assignmentsAPI.HandleFunc("/{id}/arrival", assignmentHandler.RecordArrival).Methods("POST")
	assignmentsAPI.HandleFunc("/{id}/departure", assignmentHandler.RecordDeparture).Methods("POST")
	assignmentsAPI.HandleFunc("/{id}/payments", assignmentHandler.RecordPayment).Methods("POST")
	assignmentsAPI.HandleFunc("/{id}/backup", assignmentHandler.SetBackup).Methods("PUT")
	assignmentsAPI.HandleFunc("/{id}/tasks", assignmentHandler.AddTask).Methods("POST")
	assignmentsAPI.HandleFunc("/{id}/tasks/{taskId}/status", assignmentHandler.SetTaskStatus).Methods("PUT")

	// Protected API routes - Archived reports (admin only)
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/archived", authMiddleware.RequireRole("admin")(http.HandlerFunc(reportHandler.ListArchived)).ServeHTTP).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
