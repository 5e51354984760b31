package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"drishti/internal/config"
	"drishti/internal/database"
	"drishti/internal/handlers"
	"drishti/internal/logging"
	"drishti/internal/middleware"
	"drishti/internal/session"
	"drishti/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Drishti server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err == nil {
		log.Println("✅ .env file loaded")
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Storage: %s)", cfg.Port, cfg.StorageBackend)

	// Storage backend: Mongo and SQLite both satisfy storage.Store.
	var store storage.Store
	var mongoDB *database.MongoDB
	var sqliteDB *database.DB
	healthChecks := map[string]handlers.Pinger{}

	switch cfg.StorageBackend {
	case "mongo":
		if cfg.MongoURI == "" {
			log.Fatal("❌ MONGODB_URI is required when STORAGE_BACKEND=mongo")
		}
		var err error
		mongoDB, err = database.NewMongoDB(cfg.MongoURI)
		if err != nil {
			log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
		}
		defer mongoDB.Close(context.Background())

		if err := mongoDB.Initialize(context.Background()); err != nil {
			log.Fatalf("❌ Failed to initialize MongoDB: %v", err)
		}
		store = storage.NewMongoStore(mongoDB)
		healthChecks["mongodb"] = mongoDB

	case "sqlite":
		var err error
		sqliteDB, err = database.NewSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("❌ Failed to open SQLite database: %v", err)
		}
		defer sqliteDB.Close()

		if err := sqliteDB.Initialize(); err != nil {
			log.Fatalf("❌ Failed to initialize SQLite database: %v", err)
		}
		store = storage.NewSQLiteStore(sqliteDB)
		healthChecks["sqlite"] = sqliteDB

	default:
		log.Fatalf("❌ Unknown STORAGE_BACKEND %q (expected mongo or sqlite)", cfg.StorageBackend)
	}

	// Session store: Redis when configured, in-process fallback otherwise.
	var sessions session.Store
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
		healthChecks["redis"] = redisStore
	} else {
		if cfg.Environment == "production" {
			log.Println("⚠️  REDIS_URL not set - sessions are in-memory and will not survive restarts")
		}
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	app := fiber.New(fiber.Config{
		AppName:      "drishti",
		ErrorHandler: jsonErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("drishti")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// CORS configuration with environment-based origins
	allowedOrigins := cfg.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: allowedOrigins != "*",
	}))

	// Resolve the session cookie on every request.
	app.Use(middleware.LoadUser(sessions, store))

	// Handlers
	authHandler := handlers.NewAuthHandler(store, sessions, cfg.SessionTTL)
	ideaHandler := handlers.NewIdeaHandler(store)
	healthHandler := handlers.NewHealthHandler(healthChecks)

	app.Get("/health", healthHandler.Handle)

	authLimiter := middleware.AuthRateLimiter(middleware.LoadAuthRateLimitConfig())

	api := app.Group("/api")
	api.Post("/register", authLimiter, authHandler.Register)
	api.Post("/login", authLimiter, authHandler.Login)
	api.Post("/logout", authHandler.Logout)
	api.Get("/user", authHandler.GetCurrentUser)

	ideas := api.Group("/ideas", middleware.RequireAuth())
	ideas.Post("/", ideaHandler.Create)
	ideas.Get("/", ideaHandler.List)
	ideas.Get("/:id", ideaHandler.Get)
	ideas.Put("/:id", ideaHandler.Update)
	ideas.Delete("/:id", ideaHandler.Delete)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// jsonErrorHandler keeps unhandled errors in the same JSON envelope the
// API uses everywhere else.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("❌ Unhandled error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"message": "Internal server error",
	})
}
