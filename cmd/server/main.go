package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daycaremoments/internal/config"
	"daycaremoments/internal/database"
	"daycaremoments/internal/facerec"
	"daycaremoments/internal/handlers"
	"daycaremoments/internal/models"
	"daycaremoments/internal/provider"
	"daycaremoments/internal/repository"
	"daycaremoments/internal/security"
	"daycaremoments/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Build the configured LLM, storage, and notification backends. Bad
	// provider names or missing credentials fail here, not mid-request.
	ctx := context.Background()
	providers, err := provider.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize providers: %v", err)
	}

	log.Printf("Providers ready (llm: %s, storage: %s)", providers.LLM().Name(), providers.Storage().Name())

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	childRepo := repository.NewChildRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Face recognition sidecar client
	encoder := facerec.NewHTTPEncoder(cfg.FaceRecognizerURL)

	tokens := security.NewTokenIssuer(cfg.SessionSecret, cfg.BaseURL)

	// Initialize services
	authService := service.NewAuthService(userRepo, orgRepo, tokens, providers.Notifier(), cfg.BaseURL, cfg.SessionDuration)
	activityService := service.NewActivityService(activityRepo, childRepo)
	enrollmentService := service.NewEnrollmentService(childRepo, userRepo, orgRepo, encoder, providers.Notifier(), cfg.BaseURL)
	photoService := service.NewPhotoService(service.PhotoServiceConfig{
		PhotoRepo:     photoRepo,
		ChildRepo:     childRepo,
		OrgRepo:       orgRepo,
		UserRepo:      userRepo,
		Store:         providers.Storage(),
		Encoder:       encoder,
		LLM:           providers.LLM(),
		Notifier:      providers.Notifier(),
		FaceTolerance: cfg.FaceTolerance,
		MaxFileSize:   cfg.MaxFileSizeMB * 1024 * 1024,
		EnableFaceRec: cfg.EnableFaceRecognition,
		RetentionDays: cfg.PhotoRetentionDays,
	})
	chatService := service.NewChatService(providers.LLM(), childRepo, activityRepo, photoRepo, orgRepo, cfg.EnableAIChat)
	analyticsService := service.NewAnalyticsService(childRepo, photoRepo, activityRepo, userRepo, providers.LLM())
	voiceService := service.NewVoiceService(analyticsService, childRepo, userRepo, providers.Notifier(), tokens, cfg.EnableVoiceCalls)

	// Initialize handlers
	loginLimiter := security.NewRateLimiter(10, time.Minute)
	csrf := security.NewCSRFGenerator(cfg.SessionSecret)
	middleware := handlers.NewMiddleware(authService, loginLimiter, csrf)
	authHandler := handlers.NewAuthHandler(authService, csrf, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BaseURL)
	parentHandler := handlers.NewParentHandler(photoService, activityService, analyticsService, childRepo)
	staffHandler := handlers.NewStaffHandler(photoService, activityService, enrollmentService, childRepo, cfg.MaxFileSizeMB*1024*1024, cfg.MaxFilesPerUpload)
	adminHandler := handlers.NewAdminHandler(authService, analyticsService, userRepo, orgRepo)
	chatHandler := handlers.NewChatHandler(chatService)
	voiceHandler := handlers.NewVoiceHandler(voiceService)

	// Setup routes
	mux := http.NewServeMux()

	// Local storage serves uploaded photos directly; remote backends hand
	// out their own URLs.
	if cfg.StorageType == "local" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.LocalStoragePath))))
	}

	// Public routes
	mux.HandleFunc("POST /api/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("POST /api/reset-password", authHandler.ResetPassword)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Authenticated routes for every role
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("POST /api/chat", middleware.RequireAuth(middleware.CSRFProtect(chatHandler.Ask)))
	mux.HandleFunc("POST /api/chat/stream", middleware.RequireAuth(middleware.CSRFProtect(chatHandler.Stream)))
	mux.HandleFunc("POST /api/voice/daily-summary", middleware.RequireAuth(middleware.CSRFProtect(voiceHandler.CallDailySummary)))

	// Parent routes
	requireParent := middleware.RequireRole(models.RoleParent)
	mux.HandleFunc("GET /api/parent/children", requireParent(parentHandler.Children))
	mux.HandleFunc("GET /api/parent/gallery", requireParent(parentHandler.Gallery))
	mux.HandleFunc("GET /api/parent/children/{id}/summary", requireParent(parentHandler.DailySummary))
	mux.HandleFunc("GET /api/parent/children/{id}/activities", requireParent(parentHandler.ChildActivities))
	mux.HandleFunc("POST /api/parent/children/{id}/voice-token", requireParent(middleware.CSRFProtect(voiceHandler.RoomToken)))

	// Staff routes (admins pass too)
	requireStaff := middleware.RequireRole(models.RoleStaff)
	mux.HandleFunc("GET /api/staff/children", requireStaff(staffHandler.Children))
	mux.HandleFunc("POST /api/staff/photos", requireStaff(middleware.CSRFProtect(staffHandler.UploadPhotos)))
	mux.HandleFunc("GET /api/staff/photos/pending", requireStaff(staffHandler.PendingPhotos))
	mux.HandleFunc("POST /api/staff/photos/{id}/approve", requireStaff(middleware.CSRFProtect(staffHandler.ApprovePhoto)))
	mux.HandleFunc("POST /api/staff/photos/{id}/reject", requireStaff(middleware.CSRFProtect(staffHandler.RejectPhoto)))
	mux.HandleFunc("POST /api/staff/activities", requireStaff(middleware.CSRFProtect(staffHandler.RecordActivity)))
	mux.HandleFunc("POST /api/staff/enroll", requireStaff(middleware.CSRFProtect(staffHandler.Enroll)))
	mux.HandleFunc("POST /api/staff/children/{id}/reference-photo", requireStaff(middleware.CSRFProtect(staffHandler.AddReferencePhoto)))

	// Admin routes
	requireAdmin := middleware.RequireRole(models.RoleAdmin)
	mux.HandleFunc("GET /api/admin/users", requireAdmin(adminHandler.Users))
	mux.HandleFunc("POST /api/admin/users", requireAdmin(middleware.CSRFProtect(adminHandler.CreateStaff)))
	mux.HandleFunc("POST /api/admin/users/{id}/role", requireAdmin(middleware.CSRFProtect(adminHandler.UpdateRole)))
	mux.HandleFunc("GET /api/admin/stats", requireAdmin(adminHandler.Stats))
	mux.HandleFunc("GET /api/admin/tiers", requireAdmin(adminHandler.Tiers))
	mux.HandleFunc("POST /api/admin/tier", requireAdmin(middleware.CSRFProtect(adminHandler.UpdateTier)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // chat streaming holds the connection open
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Retention sweep removes photos past the configured age
	if cfg.PhotoRetentionDays > 0 {
		go sweepExpiredPhotos(photoService, cfg.PhotoRetentionDays)
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Session cleanup failed: %v", err)
		}
	}
}

func sweepExpiredPhotos(photoService *service.PhotoService, retentionDays int) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed, err := photoService.SweepExpired(context.Background())
		if err != nil {
			log.Printf("Retention sweep failed: %v", err)
			continue
		}
		if removed > 0 {
			log.Printf("Retention sweep removed %d photos older than %d days", removed, retentionDays)
		}
	}
}
