package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "registration-backend/config"
	"registration-backend/internal/bootstrap"
	"registration-backend/middleware"
	"registration-backend/token"
	"registration-backend/utils"

	// Registrations
	registration_controllers "registration-backend/registrations/controllers"
	registration_repositories "registration-backend/registrations/repositories"
	registration_routes "registration-backend/registrations/routes"
	registration_services "registration-backend/registrations/services"

	// bleve
	bleveControllers "registration-backend/bleve/controllers"
	bleveRepositories "registration-backend/bleve/repositories"
	bleveRoutes "registration-backend/bleve/routes"
	bleveServices "registration-backend/bleve/services"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables; LOG_LEVEL may come from .env
	envErr := config.LoadEnv(".env")

	// Initialize Zap logger
	config.InitLogger()
	defer config.Logger.Sync()
	if envErr != nil {
		config.Logger.Warn("No .env file loaded, using process environment", zap.Error(envErr))
	}

	// Date location
	if err := utils.InitializeDateLocation(); err != nil {
		config.Logger.Fatal("Failed to initialize date location", zap.Error(err))
	}

	importSettings, err := config.LoadImportSettings()
	if err != nil {
		config.Logger.Fatal("Invalid import settings", zap.Error(err))
	}

	// Initialize database and configs
	db, err := config.ConfigureDatabase()
	if err != nil {
		config.Logger.Fatal("Failed to configure database", zap.Error(err))
	}
	port := config.GetEnvDefault("PORT", "8080")
	ctx := context.Background()

	redisClient, err := config.InitRedisServer(ctx)
	if err != nil {
		config.Logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     config.GetEnvDefault("REDIS_ADDRESS", "localhost:6379"),
		Password: config.GetEnv("REDIS_PASSWORD"),
		DB:       0,
	}
	asynqClient := asynq.NewClient(asynqRedisOpt)
	defer asynqClient.Close()

	tokenMaker, err := token.NewPasetoMaker(config.GetEnv("TOKEN_SYMMETRIC_KEY"))
	if err != nil {
		config.Logger.Fatal("Cannot create token maker", zap.Error(err))
	}

	indexPath := config.GetEnv("BLEVE_INDEX_PATH")
	if indexPath == "" {
		indexPath = "./bleve_data"
		config.Logger.Warn("BLEVE_INDEX_PATH not set, using default: ./bleve_data")
	}

	baseURL := config.GetEnv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
		config.Logger.Warn("BASE_URL not set, using default", zap.String("url", baseURL))
	}

	// Repositories
	registrationRepo := registration_repositories.NewRegistrationRepository(db)
	importRunRepo := registration_repositories.NewImportRunRepository(db)
	bleveIndexingService := bleveServices.NewIndexingService(config.Logger, indexPath)
	defer bleveIndexingService.Close()
	bleveServiceRepo, bleveInterfaceRepo := bleveRepositories.NewBleveRepository(bleveIndexingService)

	// Re-Index all data
	go bootstrap.IndexBleveData(ctx, registrationRepo, bleveInterfaceRepo)

	// Report emails go through asynq when SMTP is configured
	var reportQueue registration_services.ReportQueue
	var asynqServer *asynq.Server
	if mailer := utils.NewMailerFromEnv(); mailer != nil {
		reportQueue = registration_services.NewAsynqReportQueue(asynqClient)

		asynqServer = asynq.NewServer(asynqRedisOpt, asynq.Config{Concurrency: 2})
		mux := asynq.NewServeMux()
		mux.Handle(registration_services.TypeImportReportEmail, registration_services.NewReportEmailHandler(mailer, importRunRepo, config.Logger))
		if err := asynqServer.Start(mux); err != nil {
			config.Logger.Fatal("Failed to start asynq worker", zap.Error(err))
		}
		defer asynqServer.Shutdown()
	}

	// Background cleanup tasks
	cleanup, err := utils.RunScheduledCleanup([]string{importSettings.UploadDir, importSettings.ReportDir}, importSettings.UploadTTL)
	if err != nil {
		config.Logger.Fatal("Failed to schedule cleanup", zap.Error(err))
	}
	defer cleanup.Stop()

	app := fiber.New(registration_controllers.FiberConfig(importSettings))

	// Apply CORS middleware from middleware package
	middleware.InitCors(app)

	// Serve static files
	app.Static("/public", "./public")

	appCtx := &middleware.AppContext{
		PasetoMaker:  tokenMaker,
		Ctx:          ctx,
		RedisClient:  redisClient,
		CookieDomain: config.GetEnv("COOKIE_DOMAIN"),
		SecureCookie: config.GetEnv("COOKIE_SECURE") == "true",
	}
	protected := middleware.ProtectedRoute(appCtx)

	// Routes
	importController := &registration_controllers.ImportController{
		Catalog:   registration_services.DefaultRegistrationCatalog(),
		Settings:  importSettings,
		Storage:   utils.NewLocalFileStorage(importSettings.UploadDir),
		Uploads:   utils.NewRedisUploadRegistry(redisClient, importSettings.UploadTTL),
		Lock:      utils.NewRedisImportLock(redisClient, importSettings.LockTTL),
		Store:     registrationRepo,
		Runs:      importRunRepo,
		Indexer:   bleveInterfaceRepo,
		Reports:   reportQueue,
		Cache:     utils.NewCacheInvalidator(redisClient),
		RunsCache: utils.NewRedisQueryCache(redisClient, 5*time.Minute),
		BaseURL:   baseURL,
	}
	registration_routes.RegistrationRouterInit(app, importController, protected)

	// Bleve Routes
	bleveController := bleveControllers.NewSearchController(bleveServiceRepo)
	bleveRoutes.InitBleveRoutes(app, bleveController, protected)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		config.Logger.Info("Shutting down server")
		if err := app.Shutdown(); err != nil {
			config.Logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	// Start the application
	config.Logger.Info("Server starting", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		config.Logger.Error("Server failed", zap.String("port", port), zap.Error(err))
	}
}
