package main

import (
	"os"

	_ "github.com/namandisafari-sketch/kabejjasystems-sub005/api/swagger" // swagger docs
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/database"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/handler"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/middleware"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/service"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/websocket"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           School Management API
// @version         1.0
// @description     Multi-tenant school management backend with a multi-level requisition approval workflow.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logger.WithModule("main")

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.WithError(err).Fatal("Database connection failed")
	}
	log.Info("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	requisitionRepo := repository.NewRequisitionRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	reportRepo := repository.NewReportRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, auditRepo, db)
	tenantService := service.NewTenantService(db, tenantRepo, userRepo, auditRepo, txManager)
	requisitionService := service.NewRequisitionService(requisitionRepo, approvalRepo, activityRepo, settingsRepo, txManager, wsHub)
	settingsService := service.NewSettingsService(settingsRepo, auditRepo)
	reportService := service.NewReportExportService(reportRepo, auditRepo)
	admissionService := service.NewAdmissionService(admissionRepo, auditRepo, txManager)
	statisticsService := service.NewStatisticsService(statisticsRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	tenantHandler := handler.NewTenantHandler(tenantService, userService)
	requisitionHandler := handler.NewRequisitionHandler(requisitionService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	reportHandler := handler.NewReportHandler(reportService)
	admissionHandler := handler.NewAdmissionHandler(admissionService, tenantService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	tenantHandler.RegisterRoutes(root)
	requisitionHandler.RegisterRoutes(root)
	settingsHandler.RegisterRoutes(root)
	reportHandler.RegisterRoutes(root)
	admissionHandler.RegisterRoutes(root)
	statisticsHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.WithField("port", port).Info("Server listening")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}
