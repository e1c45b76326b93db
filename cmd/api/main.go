package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"hearth/internal/config"
	"hearth/internal/database"
	"hearth/internal/handlers"
	"hearth/internal/logger"
	"hearth/internal/middleware"
	"hearth/internal/realtime"
	"hearth/internal/scheduler"
	"hearth/internal/services"
	"hearth/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// The change-event channel is best effort; the API serves without it.
	var publisher services.EventPublisher
	amqpClient, err := realtime.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange)
	if err != nil {
		log.Warnf("Change-event channel unavailable, continuing without it: %v", err)
	} else {
		publisher = amqpClient
		defer amqpClient.Close()
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db, publisher)
	periodService := services.NewPeriodService(db, categoryService)
	reconcileService := services.NewReconcileService(db)
	transactionService := services.NewTransactionService(db, periodService, publisher)
	incomeService := services.NewIncomeService(db)
	goalService := services.NewGoalService(db)
	healthService := services.NewHealthService(db, periodService, categoryService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	periodHandler := handlers.NewPeriodHandler(periodService, categoryService, reconcileService)
	categoryHandler := handlers.NewCategoryHandler(periodService, categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, periodService)
	healthHandler := handlers.NewHealthHandler(healthService)
	incomeHandler := handlers.NewIncomeHandler(incomeService)
	goalHandler := handlers.NewGoalHandler(goalService)

	// Background jobs: month rollover and nightly cache repair
	jobs := scheduler.New(db, periodService, reconcileService)
	if err := jobs.Start(appConfig.RolloverCronSpec, appConfig.ReconcileCronSpec); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer jobs.Stop()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Period routes
	periods := protected.Group("/periods")
	periods.GET("/current", periodHandler.GetCurrentPeriod)
	periods.PUT("/current/budget", periodHandler.UpdateBudget)
	periods.GET("/history", periodHandler.ListHistory)
	periods.POST("/current/repair", periodHandler.Repair)
	periods.GET("/current/drift", periodHandler.Drift)

	// Category routes
	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.PUT("", categoryHandler.UpsertCategory)
	categories.DELETE("/:name", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Financial overview routes
	protected.GET("/summary", healthHandler.GetSummary)
	protected.GET("/health-score", healthHandler.GetHealthScore)

	// Income source routes
	income := protected.Group("/income-sources")
	income.POST("", incomeHandler.CreateIncomeSource)
	income.GET("", incomeHandler.ListIncomeSources)
	income.PUT("/:id", incomeHandler.UpdateIncomeSource)
	income.DELETE("/:id", incomeHandler.DeleteIncomeSource)

	// Savings goal routes
	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.ListGoals)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.PATCH("/:id/progress", goalHandler.UpdateProgress)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	log.Infof("Starting hearth API server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
