package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wanderlite/travel-booking-backend/internal/config"
	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/handlers"
	"github.com/wanderlite/travel-booking-backend/internal/middleware"
	"github.com/wanderlite/travel-booking-backend/internal/queue"
	"github.com/wanderlite/travel-booking-backend/internal/services"
	"github.com/wanderlite/travel-booking-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Infof("Starting Wanderlite Travel Booking Backend %s (built %s)", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the rate limiter is simply disabled.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, rate limiting disabled")
			redisClient = nil
		}
	}

	// Repositories
	userRepo := database.NewUserRepository(db)
	scheduleRepo := database.NewScheduleRepository(db)
	availRepo := database.NewAvailabilityRepository(db)
	bookingRepo := database.NewBookingRepository(db, availRepo)
	kycRepo := database.NewKYCRepository(db)
	notifRepo := database.NewNotificationRepository(db)
	txnRepo := database.NewTransactionRepository(db)

	// Event publisher and consumer. Both optional behind AMQP_ENABLED.
	var publisher services.EventPublisher
	var consumerStop chan struct{}
	if cfg.AMQP.Enabled && cfg.AMQP.URL != "" {
		publisher = queue.NewPublisher(cfg.AMQP.URL, logger)
		consumerStop = make(chan struct{})
		consumer := queue.NewConsumer(cfg.AMQP.URL, notifRepo, logger)
		go consumer.Run(consumerStop)
		logger.Info("AMQP events enabled")
	}

	// Services
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	authService := services.NewAuthService(userRepo, jwtService, logger)
	lockService := services.NewLockService(scheduleRepo, availRepo, cfg.Locks, logger)
	paymentService := services.NewPaymentService(logger)
	bookingService := services.NewBookingService(scheduleRepo, availRepo, bookingRepo, paymentService, publisher, logger)
	cancellationService := services.NewCancellationService(scheduleRepo, bookingRepo, paymentService, publisher, logger)
	ticketService := services.NewTicketService(bookingService, logger)
	kycService := services.NewKYCService(kycRepo, notifRepo, logger)
	janitor := services.NewJanitorService(availRepo, scheduleRepo, bookingRepo, userRepo, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	scheduleHandler := handlers.NewScheduleHandler(scheduleRepo, lockService, logger)
	bookingHandler := handlers.NewBookingHandler(lockService, bookingService, cancellationService, ticketService, logger)
	kycHandler := handlers.NewKYCHandler(kycService, logger)
	notifHandler := handlers.NewNotificationHandler(notifRepo, logger)
	txnHandler := handlers.NewTransactionHandler(txnRepo, logger)
	adminHandler := handlers.NewAdminHandler(scheduleRepo, bookingRepo, userRepo, txnRepo, kycService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimit(redisClient, cfg.Redis.Requests, cfg.Redis.Window, logger))

	router.GET("/health", healthCheckHandler(db))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)

			me := auth.Group("", middleware.AuthMiddleware(jwtService))
			{
				me.GET("/me", authHandler.GetProfile)
				me.PATCH("/me", authHandler.UpdateProfile)
			}
		}

		schedules := v1.Group("/schedules")
		{
			schedules.GET("", scheduleHandler.Search)
			schedules.GET("/:id", scheduleHandler.Get)
			schedules.GET("/:id/units", scheduleHandler.GetUnitMap)
		}

		bookings := v1.Group("/bookings", middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("/lock", bookingHandler.LockUnits)
			bookings.DELETE("/lock", bookingHandler.ReleaseLocks)
			bookings.POST("", bookingHandler.Finalize)
			bookings.GET("", bookingHandler.List)
			bookings.GET("/:reference", bookingHandler.Get)
			bookings.POST("/:reference/cancel", bookingHandler.Cancel)
			bookings.GET("/:reference/ticket", bookingHandler.Ticket)
		}

		v1.GET("/transactions", middleware.AuthMiddleware(jwtService), txnHandler.List)

		kyc := v1.Group("/kyc", middleware.AuthMiddleware(jwtService))
		{
			kyc.POST("", kycHandler.Submit)
			kyc.GET("", kycHandler.Status)
		}

		notifications := v1.Group("/notifications", middleware.AuthMiddleware(jwtService))
		{
			notifications.GET("", notifHandler.List)
			notifications.POST("/:id/read", notifHandler.MarkRead)
			notifications.POST("/read-all", notifHandler.MarkAllRead)
		}

		admin := v1.Group("/admin", middleware.AuthMiddleware(jwtService), middleware.RequireAdmin())
		{
			admin.GET("/stats", adminHandler.GetDashboardStats)
			admin.POST("/schedules", adminHandler.CreateSchedule)
			admin.PATCH("/schedules/:id/status", adminHandler.UpdateScheduleStatus)
			admin.GET("/bookings", adminHandler.ListBookings)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id/block", adminHandler.SetUserBlocked)
			admin.GET("/users/:id/transactions", adminHandler.ListUserTransactions)
			admin.GET("/kyc/pending", adminHandler.ListPendingKYC)
			admin.POST("/kyc/:userId/review", adminHandler.ReviewKYC)
		}
	}

	if err := janitor.Start(); err != nil {
		logger.Fatalf("Failed to start janitor: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	janitor.Stop()
	if consumerStop != nil {
		close(consumerStop)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Forced shutdown: %v", err)
	}
	logger.Info("Server stopped")
}

// requestLogger logs each HTTP request with latency and outcome.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      c.Request.URL.RawQuery,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
		}
		if user, ok := middleware.GetUserFromContext(c); ok {
			fields["user_id"] = user.UserID
		}

		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request completed")
		}
	}
}

// healthCheckHandler reports process and database health.
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"version":  version,
			"database": "up",
		})
	}
}
