package main

import (
	"context"
	"strconv"

	"github.com/microaistudio/hptourism-r1-sub000/config"
	"github.com/microaistudio/hptourism-r1-sub000/internal/tasks"
	"github.com/microaistudio/hptourism-r1-sub000/middleware"
	"github.com/microaistudio/hptourism-r1-sub000/token"
	"github.com/microaistudio/hptourism-r1-sub000/utils"

	// Repositories
	applications_repositories "github.com/microaistudio/hptourism-r1-sub000/applications/repositories"
	document_repositories "github.com/microaistudio/hptourism-r1-sub000/documents/repositories"
	inspections_repositories "github.com/microaistudio/hptourism-r1-sub000/inspections/repositories"
	users_repositories "github.com/microaistudio/hptourism-r1-sub000/users/repositories"

	// Services
	applications_services "github.com/microaistudio/hptourism-r1-sub000/applications/services"
	document_services "github.com/microaistudio/hptourism-r1-sub000/documents/services"
	inspections_services "github.com/microaistudio/hptourism-r1-sub000/inspections/services"

	// Routes
	application_routes "github.com/microaistudio/hptourism-r1-sub000/applications/routes"
	document_routes "github.com/microaistudio/hptourism-r1-sub000/documents/routes"
	inspection_routes "github.com/microaistudio/hptourism-r1-sub000/inspections/routes"
	user_routes "github.com/microaistudio/hptourism-r1-sub000/users/routes"

	// Bleve
	bleveControllers "github.com/microaistudio/hptourism-r1-sub000/bleve/controllers"
	bleveRepositories "github.com/microaistudio/hptourism-r1-sub000/bleve/repositories"
	bleveRoutes "github.com/microaistudio/hptourism-r1-sub000/bleve/routes"
	bleveServices "github.com/microaistudio/hptourism-r1-sub000/bleve/services"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

func main() {
	// Initialize Zap logger
	config.InitLogger()

	// Load environment variables
	if err := godotenv.Load(".env"); err != nil {
		config.Logger.Warn("No .env file found, relying on process environment", zap.Error(err))
	}

	app := fiber.New()

	// Apply CORS middleware from middleware package
	middleware.InitCors(app)

	// Initialize database and configs
	db := config.ConfigureDatabase()
	port := config.GetEnvOr("PORT", "8080")
	ctx := context.Background()

	// Redis client for sessions, OTPs and refresh tokens
	redisClient := config.InitRedisServer(ctx)

	// Asynq uses its own Redis connection
	redisAddr := config.GetEnvOr("REDIS_ADDRESS", "localhost:6379")
	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: config.GetEnv("REDIS_PASSWORD"),
		DB:       0,
	}

	asynqClient := asynq.NewClient(asynqRedisOpt)
	defer asynqClient.Close()

	tokenKey := config.GetEnv("TOKEN_SYMMETRIC_KEY")
	tokenMaker, err := token.NewPasetoMaker(tokenKey)
	if err != nil {
		config.Logger.Fatal("Cannot create token maker", zap.Error(err))
	}

	appContext := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	indexPath := config.GetEnvOr("BLEVE_INDEX_PATH", "./bleve_data")

	// Serve uploaded files behind the API, not statically
	app.Static("/public", "./public")

	// Repositories
	bleveIndexingService := bleveServices.NewIndexingService(config.Logger, indexPath)
	userRepo := users_repositories.NewUserRepository(db)
	documentRepo := document_repositories.NewDocumentRepository(db)
	applicationRepo := applications_repositories.NewApplicationRepository(db)
	inspectionRepo := inspections_repositories.NewInspectionRepository(db)
	bleveServiceRepo, bleveInterfaceRepo := bleveRepositories.NewBleveRepository(bleveIndexingService)

	// Services
	fileStorage := utils.NewLocalFileStorage(config.GetEnvOr("UPLOAD_PATH", "./uploads"))
	documentService := document_services.NewDocumentService(documentRepo, fileStorage)
	registry := applications_services.NewRegistry(applicationRepo, documentService, asynqClient, bleveInterfaceRepo)
	inspectionService := inspections_services.NewInspectionService(applicationRepo, inspectionRepo)

	// Notification worker
	smtpPort, err := strconv.Atoi(config.GetEnvOr("SMTP_PORT", "587"))
	if err != nil {
		config.Logger.Fatal("Invalid SMTP_PORT", zap.Error(err))
	}
	dialer := gomail.NewDialer(
		config.GetEnv("SMTP_HOST"),
		smtpPort,
		config.GetEnv("SMTP_USERNAME"),
		config.GetEnv("SMTP_PASSWORD"),
	)
	notificationProcessor := tasks.NewNotificationProcessor(dialer, config.GetEnv("SMTP_FROM"))

	asynqServer := asynq.NewServer(asynqRedisOpt, asynq.Config{Concurrency: 5})
	mux := asynq.NewServeMux()
	notificationProcessor.Register(mux)
	go func() {
		if err := asynqServer.Run(mux); err != nil {
			config.Logger.Fatal("Asynq worker failed", zap.Error(err))
		}
	}()

	// Nightly certificate expiry sweep
	sweeper := applications_services.NewCertificateExpirySweeper(applicationRepo)
	if err := sweeper.Start(); err != nil {
		config.Logger.Fatal("Cannot start certificate expiry sweeper", zap.Error(err))
	}

	// Routes
	user_routes.InitUserRoutes(app, userRepo, ctx, redisClient, appContext, asynqClient)
	application_routes.ApplicationRouterInit(app, registry, applicationRepo, userRepo, appContext)
	inspection_routes.InspectionRouterInit(app, inspectionService, inspectionRepo, registry, userRepo, appContext)
	document_routes.DocumentRouterInit(app, documentService, documentRepo, applicationRepo, userRepo, appContext)

	// Bleve Routes
	bleveController := bleveControllers.NewSearchController(bleveServiceRepo)
	bleveRoutes.InitBleveRoutes(app, bleveController, appContext)

	// Start the application
	config.Logger.Info("Server starting", zap.String("port", port))
	config.Logger.Fatal("Server failed", zap.String("port", port), zap.Error(app.Listen(":"+port)))
}
