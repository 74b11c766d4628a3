package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"haulgo/internal/config"
	handlers "haulgo/internal/handlers/shared"
	"haulgo/internal/middleware"
	"haulgo/internal/repositories/mongodb"
	"haulgo/internal/services"
	"haulgo/internal/utils"
	"haulgo/pkg/cache"
	"haulgo/pkg/database"
	"haulgo/pkg/logger"
	"haulgo/pkg/payment"
	"haulgo/pkg/websocket"
	"haulgo/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Storage
	mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close()

	if err := database.NewMigrator(mongoDB.Database).Up(); err != nil {
		appLogger.Fatalf("Failed to run migrations: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Realtime hub
	hub := websocket.NewHub()
	go hub.Run()

	// Repositories
	bookingRepo := mongodb.NewBookingRepository(mongoDB.Database)
	paymentRepo := mongodb.NewPaymentRepository(mongoDB.Database)
	vehicleRepo := mongodb.NewVehicleRepository(mongoDB.Database)
	driverRepo := mongodb.NewDriverRepository(mongoDB.Database)
	companyRepo := mongodb.NewCompanyRepository(mongoDB.Database)
	userRepo := mongodb.NewUserRepository(mongoDB.Database)

	// Services
	cacheService := services.NewCacheService(redisCache, appLogger, "haulgo")
	notificationService := services.NewNotificationService(hub, cacheService, appLogger)
	pricingService := services.NewPricingService(cfg.App.Currency)
	bookingService := services.NewBookingService(bookingRepo, vehicleRepo, pricingService, notificationService, appLogger)
	assignmentService := services.NewAssignmentService(bookingRepo, vehicleRepo, driverRepo, companyRepo, notificationService, appLogger)
	vehicleService := services.NewVehicleService(vehicleRepo, companyRepo, appLogger)

	gateway := payment.NewPaystackGateway(cfg.Payment.Paystack.SecretKey, cfg.Payment.Paystack.Timeout)
	paymentService := services.NewPaymentService(
		paymentRepo, bookingRepo, userRepo, gateway, notificationService, appLogger,
		cfg.Payment.Currency, cfg.App.FrontendURL+"/payments/callback",
	)

	// Handlers
	bookingHandler := handlers.NewBookingHandler(bookingService, assignmentService)
	jobHandler := handlers.NewJobHandler(assignmentService, bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService, assignmentService)
	wsHandler := websocket.NewHandler(hub)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if len(cfg.Security.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			appLogger.Fatalf("Failed to set trusted proxies: %v", err)
		}
	}

	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RateLimitMiddleware(cfg.Security.RateLimitPerMinute))

	gatewayLimit := middleware.UserRateLimitMiddleware(cacheService, 30, time.Minute)

	v1 := router.Group("/api/v1")
	{
		routes.SetupBookingRoutes(v1, bookingHandler, cfg.Security.JWTSecret)
		routes.SetupJobRoutes(v1, jobHandler, cfg.Security.JWTSecret)
		routes.SetupPaymentRoutes(v1, paymentHandler, cfg.Security.JWTSecret, gatewayLimit)
		routes.SetupVehicleRoutes(v1, vehicleHandler, cfg.Security.JWTSecret)
	}

	ws := router.Group("/ws")
	ws.Use(middleware.AuthRequired(cfg.Security.JWTSecret))
	{
		ws.GET("", wsHandler.HandleWebSocket)
	}

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := cacheService.Ping(c.Request.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"app":     utils.AppName,
			"version": cfg.App.Version,
		})
	})

	srv := &http.Server{
		Addr:         cfg.App.Host + ":" + strconv.Itoa(cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorf("Forced shutdown: %v", err)
	}
}
