package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pennywise/internal/category"
	"pennywise/internal/config"
	"pennywise/internal/database"
	"pennywise/internal/fraud"
	"pennywise/internal/handlers"
	"pennywise/internal/logger"
	"pennywise/internal/middleware"
	"pennywise/internal/plaidlink"
	"pennywise/internal/services"
	"pennywise/internal/validator"

	_ "pennywise/internal/docs" // Import swagger docs
)

// @title           Pennywise API
// @version         1.0
// @description     Pennywise is a personal finance backend: bank-linked transaction ingestion, per-category spending prediction, adaptive goal allocation, fraud alerts, and a checking/savings ledger.

// @host      localhost:8080
// @BasePath  /

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

	// Register custom request validators
	validator.Register()

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
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Aggregator client; the server still starts without credentials, link
	// and sync endpoints then answer AGGREGATOR_NOT_CONFIGURED.
	aggregator, err := plaidlink.New(plaidlink.Options{
		ClientID:    appConfig.PlaidClientID,
		Secret:      appConfig.PlaidSecret,
		Environment: appConfig.PlaidEnv,
		ClientName:  appConfig.PlaidClientName,
	})
	if err != nil {
		log.Warnw("aggregator not configured, link endpoints disabled", "error", err)
		aggregator = plaidlink.Unconfigured()
	}

	// Fitted label encoders for the fraud classifier. Without the artifact
	// every evaluation answers UNENCODABLE_VALUE, but the server still serves
	// the rest of the API.
	encoders, err := fraud.LoadEncoders(appConfig.FraudEncoderPath)
	if err != nil {
		log.Warnw("fraud encoder artifact not loaded", "path", appConfig.FraudEncoderPath, "error", err)
		encoders, _ = fraud.ParseEncoders([]byte("{}"))
	}
	classifier := fraud.NewHTTPClassifier(appConfig.FraudScorerURL, &http.Client{Timeout: appConfig.AggregatorTimeout})

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	spendingService := services.NewSpendingService(db)
	transactionService := services.NewTransactionService(db, spendingService, auditService)
	ledgerService := services.NewLedgerService(db, auditService)
	alertService := services.NewAlertService(db, transactionService, encoders, classifier, auditService)
	linkService := services.NewLinkService(aggregator, userService, auditService, appConfig.AggregatorTimeout)
	ingestService := services.NewIngestService(db, aggregator, spendingService, appConfig.AggregatorTimeout)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	linkHandler := handlers.NewLinkHandler(linkService, ingestService)
	goalHandler := handlers.NewGoalHandler(userService, auditService)
	insightHandler := handlers.NewInsightHandler(userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	spendingHandler := handlers.NewSpendingHandler(spendingService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	alertHandler := handlers.NewAlertHandler(alertService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth
	router.POST("/login", authHandler.Login)

	// Bank link
	router.POST("/create_link_token", linkHandler.CreateLinkToken)
	router.POST("/exchange_public_token", linkHandler.ExchangePublicToken)

	// Webhook deliveries carry a detached signature; verify before parsing
	webhookVerifier := middleware.WebhookVerifier(
		middleware.NewPlaidKeyFetcher(appConfig.PlaidClientID, appConfig.PlaidSecret, appConfig.PlaidEnv),
	)
	router.POST("/plaid/webhook", webhookVerifier, linkHandler.Webhook)

	// Saving goal
	router.POST("/set_goal", goalHandler.SetGoal)
	router.GET("/get_goal", goalHandler.GetGoal)

	// Transactions
	router.GET("/transactions", transactionHandler.ListTransactions)
	router.POST("/add_transaction", transactionHandler.AddTransaction)
	router.DELETE("/delete_transaction", transactionHandler.DeleteTransaction)

	// Cumulative spending graphs
	router.GET("/graph_data", spendingHandler.Graph(""))
	router.GET("/graph_data_food", spendingHandler.Graph(category.Food))
	router.GET("/graph_data_travel", spendingHandler.Graph(category.Travel))
	router.GET("/graph_data_entertainment", spendingHandler.Graph(category.Entertainment))
	router.GET("/food_graph", spendingHandler.Graph(category.Food))
	router.GET("/travel_graph", spendingHandler.Graph(category.Travel))
	router.GET("/entertainment_graph", spendingHandler.Graph(category.Entertainment))

	// Spending pipeline stages
	router.POST("/food_predicted", spendingHandler.StorePredicted(category.Food))
	router.POST("/entertainment_predicted", spendingHandler.StorePredicted(category.Entertainment))
	router.POST("/travel_predicted", spendingHandler.StorePredicted(category.Travel))
	router.GET("/get_food_predicted", spendingHandler.StoredValue(category.Food, "predicted", "food_spending_predicted"))
	router.GET("/get_entertainment_predicted", spendingHandler.StoredValue(category.Entertainment, "predicted", "entertainment_spending_predicted"))
	router.GET("/get_travel_predicted", spendingHandler.StoredValue(category.Travel, "predicted", "travel_spending_predicted"))
	router.POST("/post_actual_food", spendingHandler.StoreActual(category.Food))
	router.POST("/post_actual_entertainment", spendingHandler.StoreActual(category.Entertainment))
	router.POST("/post_actual_travel", spendingHandler.StoreActual(category.Travel))
	router.GET("/get_food_spending", spendingHandler.StoredValue(category.Food, "actual", "food_spending"))
	router.GET("/get_entertainment_spending", spendingHandler.StoredValue(category.Entertainment, "actual", "entertainment_spending"))
	router.GET("/get_travel_spending", spendingHandler.StoredValue(category.Travel, "actual", "travel_spending"))
	router.GET("/get_food_spending_goal", spendingHandler.StoredValue(category.Food, "goal", "food_spending_goal"))
	router.GET("/get_entertainment_spending_goal", spendingHandler.StoredValue(category.Entertainment, "goal", "entertainment_spending_goal"))
	router.GET("/get_travel_spending_goal", spendingHandler.StoredValue(category.Travel, "goal", "travel_spending_goal"))
	router.POST("/adaptive_spending", spendingHandler.AdaptiveSpending)
	router.GET("/total_spending_predicted", spendingHandler.TotalPredicted)

	// Insights
	router.POST("/top_spenders", insightHandler.TopSpenders)
	router.POST("/day_paid", insightHandler.DayPaid)

	// Fraud alerts
	router.POST("/alert", alertHandler.Evaluate)
	router.GET("/alert_status", alertHandler.Status)
	router.POST("/alert_resolve", alertHandler.Resolve)

	// Ledger
	router.GET("/bank_balance", ledgerHandler.BankBalance)
	router.POST("/set_bank_balance", ledgerHandler.SetBankBalance)
	router.GET("/savings_balance", ledgerHandler.SavingsBalance)
	router.POST("/set_savings_balance", ledgerHandler.SetSavingsBalance)
	router.POST("/simulate_income", ledgerHandler.SimulateIncome)
	router.POST("/transfer_to_savings", ledgerHandler.TransferToSavings)

	log.Infof("Starting Pennywise backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
