package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/config"
	"github.com/eazybus/booking-backend/internal/database"
	"github.com/eazybus/booking-backend/internal/handlers"
	"github.com/eazybus/booking-backend/internal/middleware"
	"github.com/eazybus/booking-backend/internal/services"
	"github.com/eazybus/booking-backend/internal/utils"
	"github.com/eazybus/booking-backend/pkg/jwt"
	"github.com/eazybus/booking-backend/pkg/mailer"
	"github.com/eazybus/booking-backend/pkg/ticket"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting EazyBus Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Catalog clock, pinned to the operating timezone
	clock, err := utils.NewClock(cfg.Server.Timezone)
	if err != nil {
		logger.Fatalf("Failed to load timezone: %v", err)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	routeRepo := database.NewRouteRepository(db)
	serviceRepo := database.NewServiceRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	walletRepo := database.NewWalletRepository(db)
	giftCardRepo := database.NewGiftCardRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	mail := mailer.New(&cfg.Mail, logger)
	renderer := ticket.NewRenderer()

	gatewayService := services.NewCardGatewayService(&cfg.Gateway, logger)
	fundingService := services.NewFundingService(&cfg.Funding, logger)
	catalogService := services.NewCatalogService(routeRepo, serviceRepo, clock, cfg.Booking.DepartureLead, logger)
	seatLockService := services.NewSeatLockService(serviceRepo, logger)
	walletService := services.NewWalletService(walletRepo, fundingService, mail, logger)
	giftCardService := services.NewGiftCardService(giftCardRepo, walletRepo, walletService, fundingService, mail, logger)

	bookingService := services.NewBookingService(
		bookingRepo,
		sessionRepo,
		serviceRepo,
		seatLockService,
		gatewayService,
		walletService,
		walletRepo,
		mail,
		renderer,
		clock,
		logger,
	)

	reconciliationService := services.NewReconciliationService(
		bookingRepo,
		walletRepo,
		giftCardRepo,
		serviceRepo,
		catalogService,
		bookingService,
		seatLockService,
		gatewayService,
		fundingService,
		giftCardService,
		clock,
		cfg.Booking.HoldGrace,
		cfg.Booking.CompletionBuffer,
		logger,
	)

	// Initialize and start the cron service
	cronService, err := services.NewCronService(reconciliationService, cfg.Booking, cfg.Server.Timezone, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize cron service: %v", err)
	}
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	logger.Info("Cron service started - catalog rollout and sweeps scheduled")

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(catalogService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	walletHandler := handlers.NewWalletHandler(walletService, logger)
	giftCardHandler := handlers.NewGiftCardHandler(giftCardService, logger)
	adminHandler := handlers.NewAdminHandler(catalogService, reconciliationService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Catalog routes (public)
		servicesGroup := v1.Group("/services")
		{
			servicesGroup.GET("/search", searchHandler.Search)
			servicesGroup.GET("/:serviceNo/:date", searchHandler.SeatMap)
		}

		// Payment gateway callback (public; signature-verified)
		v1.POST("/payments/webhook", bookingHandler.PaymentWebhook)

		// Reservation flow (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.Auth(jwtService, logger))
		{
			bookings.POST("/select", bookingHandler.SelectSeats)
			bookings.POST("/passenger", bookingHandler.AttachPassenger)
			bookings.POST("/checkout", bookingHandler.Checkout)
			bookings.GET("", bookingHandler.List)
			bookings.GET("/:bookingID", bookingHandler.Get)
			bookings.GET("/:bookingID/ticket", bookingHandler.Ticket)
			bookings.GET("/:bookingID/invoice", bookingHandler.Invoice)
			bookings.POST("/:bookingID/cancel", bookingHandler.Cancel)
		}

		// Wallet routes (protected)
		wallet := v1.Group("/wallet")
		wallet.Use(middleware.Auth(jwtService, logger))
		{
			wallet.POST("/apply", walletHandler.Apply)
			wallet.GET("", walletHandler.Get)
			wallet.GET("/transactions", walletHandler.Transactions)
			wallet.POST("/topup", walletHandler.TopUp)
		}

		// Gift card routes (protected)
		giftCards := v1.Group("/giftcards")
		giftCards.Use(middleware.Auth(jwtService, logger))
		{
			giftCards.POST("", giftCardHandler.Purchase)
			giftCards.POST("/redeem", giftCardHandler.Redeem)
		}

		// Admin routes (protected, admin role required)
		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(jwtService, logger))
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/routes", adminHandler.CreateRoute)
			admin.GET("/routes", adminHandler.ListRoutes)
			admin.DELETE("/routes/:serviceNo", adminHandler.DeleteRoute)
			admin.POST("/catalog/rollout", adminHandler.TriggerRollout)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop cron service
	logger.Info("Stopping cron service...")
	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
		}
		if userID, exists := c.Get(middleware.ContextUserID); exists {
			fields["user_id"] = userID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
