package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"creatorsmeet/internal/config"
	"creatorsmeet/internal/database"
	"creatorsmeet/internal/handlers"
	"creatorsmeet/internal/huggingface"
	"creatorsmeet/internal/jobs"
	"creatorsmeet/internal/logging"
	"creatorsmeet/internal/middleware"
	"creatorsmeet/internal/services"
	"creatorsmeet/pkg/auth"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Creators Meet Server...")

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Environment: %s)", cfg.Port, cfg.Environment)

	if cfg.JWTSecretDefault {
		if cfg.IsProduction() {
			log.Fatal("❌ JWT_SECRET is required in production")
		}
		log.Println("⚠️  JWT_SECRET not set, using insecure development secret")
	}

	// MongoDB
	if cfg.MongoDBURI == "" {
		log.Fatal("❌ MONGODB_URI environment variable is required")
	}
	connector := database.NewConnector(cfg.MongoDBURI)
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	mongoDB, err := connector.Connect(startupCtx)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	if err := mongoDB.Initialize(startupCtx); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Session revocation: Redis when configured, in-process otherwise
	var redisService *services.RedisService
	var revocations services.RevocationStore
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(startupCtx, cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), falling back to in-memory session revocation", err)
		}
	}
	if redisService != nil {
		revocations = services.NewRedisRevocationStore(redisService)
		log.Println("✅ Session revocation backed by Redis")
	} else {
		revocations = services.NewMemoryRevocationStore()
		log.Println("⚠️  REDIS_URL not set - session revocation is per-process")
	}
	cancelStartup()

	// Candidate labels, hot-reloaded from disk
	labels, err := config.NewLabelStore(cfg.LabelsFile)
	if err != nil {
		log.Printf("⚠️  Failed to load labels from %s (%v), using built-in defaults", cfg.LabelsFile, err)
	} else if err := labels.Watch(); err != nil {
		log.Printf("⚠️  Label hot-reload disabled: %v", err)
	}
	var labelSource services.LabelSource = staticLabels{config.DefaultLabels()}
	if labels != nil {
		labelSource = labels
	}

	metrics := services.NewMetrics(prometheus.DefaultRegisterer)

	if cfg.HuggingFaceAPIKey == "" {
		log.Println("⚠️  HUGGINGFACE_API_KEY not set - classification calls will be rejected by the model endpoint")
	}
	classifier := huggingface.NewClient(huggingface.Config{
		ModelURL:   cfg.HuggingFaceModelURL,
		APIKey:     cfg.HuggingFaceAPIKey,
		Timeout:    cfg.ClassifierTimeout,
		MaxRetries: cfg.ClassifierMaxRetries,
		CacheTTL:   cfg.ClassifierCacheTTL,
		Rate:       cfg.ClassifierRate,
		OnCall: func(outcome string, elapsed time.Duration) {
			metrics.RecordClassifierCall(outcome, elapsed.Seconds())
		},
	})

	sessions, err := auth.NewSessionAuth(cfg.JWTSecret, cfg.SessionExpiry)
	if err != nil {
		log.Fatalf("❌ Failed to initialize sessions: %v", err)
	}

	// Services
	userService := services.NewUserService(mongoDB)
	tipService := services.NewTipService(mongoDB, userService)
	projectService := services.NewProjectService(mongoDB, userService)
	analysisService := services.NewAnalysisService(classifier, labelSource, userService)
	log.Println("✅ Services initialized")

	// Background jobs
	jobScheduler, err := jobs.NewJobScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}
	cleanup := jobs.NewImageCleanupJob(userService, cfg.PublicDir, handlers.ProfileImageDir)
	if err := jobScheduler.Register("profile_image_cleanup", cfg.ImageCleanupCron, cleanup); err != nil {
		log.Printf("⚠️  %v, using %s", err, jobs.DefaultImageCleanupSchedule)
		if err := jobScheduler.Register("profile_image_cleanup", jobs.DefaultImageCleanupSchedule, cleanup); err != nil {
			log.Fatalf("❌ Failed to schedule image cleanup: %v", err)
		}
	}
	jobScheduler.Start()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Creators Meet v1.0",
		ErrorHandler: middleware.ErrorEnvelope,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    (cfg.MaxImageSizeMB + 1) * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	// Prometheus metrics middleware
	prom := fiberprometheus.New("creatorsmeet")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	allowCredentials := cfg.AllowedOrigins != "*"
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: allowCredentials,
	}))
	log.Printf("🔒 [SECURITY] CORS allowed origins: %s", cfg.AllowedOrigins)

	rateLimitConfig := middleware.LoadRateLimitConfig()
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Auth=%d/15min, Analysis=%d/min, Upload=%d/min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.AuthAttemptMax,
		rateLimitConfig.AnalysisMax,
		rateLimitConfig.UploadMax,
	)

	app.Use(middleware.RouteGate())

	// Uploaded profile images
	app.Static("/images", filepath.Join(cfg.PublicDir, "images"), fiber.Static{
		MaxAge: 3600,
	})

	healthChecks := map[string]handlers.HealthCheck{
		"mongodb": mongoDB.Ping,
	}
	if redisService != nil {
		healthChecks["redis"] = redisService.Ping
	}

	router := &handlers.Router{
		Sessions:     sessions,
		Revocations:  revocations,
		RateLimits:   rateLimitConfig,
		Auth:         handlers.NewAuthHandler(sessions, userService, revocations, metrics, cfg.IsProduction()),
		Tips:         handlers.NewTipHandler(tipService, userService, metrics),
		Users:        handlers.NewUserHandler(userService, cfg.PublicDir, cfg.MaxImageSizeMB),
		Requirements: handlers.NewProjectRequirementsHandler(analysisService, projectService, userService),
		Projects:     handlers.NewProjectHandler(projectService),
		Diagnostics:  handlers.NewDiagnosticsHandler(mongoDB, userService, classifier),
		Health:       handlers.NewHealthHandler(healthChecks),
	}
	router.Register(app)

	log.Printf("✅ Server ready on port %s", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
			log.Printf("⚠️  Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}

	if err := jobScheduler.Stop(); err != nil {
		log.Printf("⚠️  Error stopping job scheduler: %v", err)
	}
	if labels != nil {
		_ = labels.Close()
	}
	if redisService != nil {
		_ = redisService.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := connector.Close(ctx); err != nil {
		log.Printf("⚠️  Error closing MongoDB: %v", err)
	}
	log.Println("✅ Server stopped")
}

// staticLabels serves the built-in label sets when no labels file is available
type staticLabels struct{ labels *config.Labels }

func (s staticLabels) Get() *config.Labels { return s.labels }
