package main

import (
	"strconv"
	"time"

	"tutor-service/internal/handler"
	"tutor-service/internal/mailer"
	"tutor-service/internal/middleware"
	"tutor-service/pkg/config"
	"tutor-service/pkg/database"
	"tutor-service/pkg/jwtutil"
	"tutor-service/pkg/logger"
	"tutor-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting tutor service...", zap.String("environment", cfg.Server.Env))

	// Initialize JWT utilities
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utilities initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize database and run migrations
	if err := database.InitDB(cfg, log); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", cfg.DB.Host), zap.String("db_name", cfg.DB.DBName))

	// Initialize the outgoing mail backend
	mailer.Init(cfg, log)

	// Create Echo instance
	e := echo.New()
	e.Validator = handler.NewValidator()

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)

	// Request logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Process request
			err := next(c)

			// Calculate duration
			duration := time.Since(start).Seconds()
			status := c.Response().Status

			// Log request details
			log := logger.FromContext(c)
			log.Info("HTTP Request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Float64("duration_s", duration),
				zap.String("ip", c.RealIP()),
			)

			prometheus.HttpRequestsTotal.WithLabelValues(
				c.Request().Method,
				c.Request().URL.Path,
				strconv.Itoa(status),
			).Inc()

			prometheus.HttpRequestDuration.WithLabelValues(
				c.Request().Method,
				c.Request().URL.Path,
				strconv.Itoa(status),
			).Observe(duration)

			return err
		}
	})

	// Public routes that don't require authentication
	e.GET("/", handler.Health)
	e.GET("/health", handler.Health)
	e.POST("/auth/signup", handler.Signup)
	e.POST("/auth/login", handler.Login)

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes that require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	api.GET("/me", handler.GetProfile)
	api.PATCH("/me", handler.UpdateProfile)
	api.PUT("/me/password", handler.ChangePassword)

	// Professor back office
	professor := api.Group("/professor")
	professor.Use(middleware.RequireProfessor)

	professor.GET("/courses", handler.ListCourses)
	professor.POST("/courses", handler.CreateCourse)
	professor.PATCH("/courses/:id", handler.UpdateCourse)
	professor.DELETE("/courses/:id", handler.DeleteCourse)

	professor.GET("/clients", handler.ListClients)
	professor.PATCH("/clients/:id", handler.UpdateClient)

	professor.GET("/invoices", handler.ListInvoices)
	professor.POST("/invoices", handler.CreateInvoice)
	professor.POST("/invoices/:id/send", handler.SendInvoice)
	professor.GET("/invoices/:id/pdf", handler.InvoicePDF)
	professor.GET("/invoices/export", handler.ExportInvoices)

	professor.GET("/quotes", handler.ListQuotes)
	professor.POST("/quotes", handler.CreateQuote)
	professor.POST("/quotes/:id/send", handler.SendQuote)
	professor.GET("/quotes/:id/pdf", handler.QuotePDF)

	professor.GET("/stats", handler.GetStats)

	// Client portal
	client := api.Group("/client")
	client.Use(middleware.RequireClient)

	client.GET("/courses", handler.ListClientCourses)
	client.GET("/invoices", handler.ListClientInvoices)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
