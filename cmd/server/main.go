package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"utsav-backend/internal/auth"
	"utsav-backend/internal/cache"
	"utsav-backend/internal/config"
	"utsav-backend/internal/database"
	"utsav-backend/internal/db"
	"utsav-backend/internal/handlers"
	"utsav-backend/internal/health"
	h "utsav-backend/internal/http"
	"utsav-backend/internal/locks"
	"utsav-backend/internal/middleware"
	"utsav-backend/internal/models"
	"utsav-backend/internal/monitoring"
	"utsav-backend/internal/notify"
	"utsav-backend/internal/repositories"
	"utsav-backend/internal/services"
	"utsav-backend/internal/storage"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (budget summaries served uncached)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Start monitoring dashboard server in background
	go monitoring.NewMonitoringServer(pool, 9090).Start()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	eventRepo := repositories.NewEventRepository(pool)
	vendorRepo := repositories.NewVendorRepository(pool)
	bookingRequestRepo := repositories.NewBookingRequestRepository(pool)
	assignmentRepo := repositories.NewVendorAssignmentRepository(pool)
	allocationRepo := repositories.NewBudgetAllocationRepository(pool)
	actionLogRepo := repositories.NewPlannerActionLogRepository(pool)
	metricsRepo := repositories.NewMetricsRepository(pool)

	// Per-event locks serialize request acceptance and budget rewrites
	eventLocks := locks.NewEventLocks()

	// In-process domain event dispatcher
	dispatcher := notify.NewDispatcher()
	dispatcher.Subscribe(notify.LogSubscriber)

	// R2 object storage for report archival (optional)
	r2Store, err := storage.NewR2Store(cfg)
	if err != nil {
		log.Printf("[R2] Object storage unavailable: %v (reports will not be archived)", err)
	}
	if r2Store == nil {
		log.Println("[R2] Not configured, report archival disabled")
	}

	// Budget weights from config (defaults cover the nine canonical categories)
	weights := models.BudgetWeights{}
	for category, weight := range cfg.Budget.Weights {
		weights[models.BudgetCategory(category)] = weight
	}

	// Initialize services
	userService := services.NewUserService(userRepo, jwtManager)
	totpService := services.NewTOTPService(userRepo)
	vendorService := services.NewVendorService(vendorRepo)
	budgetService := services.NewBudgetService(allocationRepo, assignmentRepo, eventRepo, eventLocks, dispatcher, weights, cfg.Budget.WarnAt, cfg.Budget.OverAt)
	eventService := services.NewEventService(eventRepo, budgetService)
	bookingRequestService := services.NewBookingRequestService(bookingRequestRepo, vendorRepo, eventLocks, dispatcher)
	bookingRequestService.SetActionLog(actionLogRepo)
	assignmentService := services.NewVendorAssignmentService(assignmentRepo, vendorRepo, eventLocks, dispatcher)
	assignmentService.SetActionLog(actionLogRepo)
	reportService := services.NewReportService(eventRepo, allocationRepo, assignmentRepo, budgetService, r2Store)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)
	apiLoggingMiddleware := middleware.NewAPILoggingMiddleware(metricsRepo)
	defer apiLoggingMiddleware.Close()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, totpService)
	userHandler := handlers.NewUserHandler(userService)
	totpHandler := handlers.NewTOTPHandler(totpService, userService)
	eventHandler := handlers.NewEventHandler(eventService)
	vendorHandler := handlers.NewVendorHandler(vendorService)
	bookingRequestHandler := handlers.NewBookingRequestHandler(bookingRequestService)
	assignmentHandler := handlers.NewVendorAssignmentHandler(assignmentService, budgetService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, eventService)
	reportHandler := handlers.NewReportHandler(reportService)
	actionLogHandler := handlers.NewActionLogHandler(actionLogRepo)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	// Create router
	router := h.NewRouter(
		authHandler,
		userHandler,
		totpHandler,
		eventHandler,
		vendorHandler,
		bookingRequestHandler,
		assignmentHandler,
		budgetHandler,
		reportHandler,
		actionLogHandler,
		healthHandler,
		authMiddleware,
	)

	// Wrap with panic recovery, metrics, CORS and async API logging
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(apiLoggingMiddleware.Handler(router))))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
