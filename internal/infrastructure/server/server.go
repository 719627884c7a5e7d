package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/collabrixo/core/internal/adapters/http"
	"github.com/collabrixo/core/internal/adapters/repository"
	"github.com/collabrixo/core/internal/application/services"
	"github.com/collabrixo/core/internal/infrastructure/config"
	"github.com/collabrixo/core/internal/infrastructure/database"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/realtime"
	"github.com/collabrixo/core/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	db     *database.DB
	hub    *realtime.Hub
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Realtime hub
	hub := realtime.NewHub(appLogger)

	// Object storage
	objectStore, err := storage.New(cfg.Storage, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	authRepo := repository.NewAuthRepository(db.DB)
	workItemRepo := repository.NewWorkItemRepository(db.DB)
	meetingRepo := repository.NewMeetingRepository(db.DB)
	timelineRepo := repository.NewTimelineEventRepository(db.DB)
	resourceRepo := repository.NewResourceRepository(db.DB)
	timerRepo := repository.NewTimerRepository(db.DB)

	// Initialize services
	authService := services.NewAuthService(userRepo, authRepo, cfg.JWT, appLogger)
	workItemService := services.NewWorkItemService(workItemRepo, objectStore, hub, cfg.Storage.Bucket, appLogger)
	meetingService := services.NewMeetingService(meetingRepo, objectStore, hub, cfg.Storage.Bucket, appLogger)
	timelineService := services.NewTimelineService(timelineRepo, hub, appLogger)
	resourceService := services.NewResourceService(resourceRepo, objectStore, hub, cfg.Storage.Bucket, appLogger)
	timerService := services.NewTimerService(timerRepo, hub, appLogger)

	// Initialize handlers
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)
	workItemHandler := httpHandlers.NewWorkItemHandler(workItemService, appLogger)
	meetingHandler := httpHandlers.NewMeetingHandler(meetingService, appLogger)
	timelineHandler := httpHandlers.NewTimelineHandler(timelineService, appLogger)
	resourceHandler := httpHandlers.NewResourceHandler(resourceService, appLogger)
	timerHandler := httpHandlers.NewTimerHandler(timerService, appLogger)
	storageHandler := httpHandlers.NewStorageHandler(objectStore, appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		db:     db,
		hub:    hub,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(authHandler, workItemHandler, meetingHandler, timelineHandler, resourceHandler, timerHandler, storageHandler, authService)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			return id, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
		// Websocket connections outlive any sane request timeout.
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/v1/realtime")
		},
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(authHandler *httpHandlers.AuthHandler, workItemHandler *httpHandlers.WorkItemHandler, meetingHandler *httpHandlers.MeetingHandler, timelineHandler *httpHandlers.TimelineHandler, resourceHandler *httpHandlers.ResourceHandler, timerHandler *httpHandlers.TimerHandler, storageHandler *httpHandlers.StorageHandler, authService *services.AuthService) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Auth routes (public)
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.RefreshToken)
	authGroup.POST("/logout", authHandler.Logout, s.authMiddleware(authService))
	authGroup.GET("/session", authHandler.Session, s.authMiddleware(authService))

	// Work item routes (authenticated)
	workItemGroup := v1.Group("/workitems", s.authMiddleware(authService))
	workItemGroup.GET("", workItemHandler.ListWorkItems)
	workItemGroup.POST("", workItemHandler.CreateWorkItem)
	workItemGroup.GET("/board", workItemHandler.GetBoard)
	workItemGroup.GET("/:id", workItemHandler.GetWorkItem)
	workItemGroup.PATCH("/:id", workItemHandler.UpdateWorkItem)
	workItemGroup.DELETE("/:id", workItemHandler.DeleteWorkItem)
	workItemGroup.PUT("/:id/image", workItemHandler.ReplaceImage)
	workItemGroup.DELETE("/:id/image", workItemHandler.RemoveImage)

	// Meeting routes (authenticated)
	meetingGroup := v1.Group("/meetings", s.authMiddleware(authService))
	meetingGroup.GET("", meetingHandler.ListMeetings)
	meetingGroup.POST("", meetingHandler.CreateMeeting)
	meetingGroup.GET("/:id", meetingHandler.GetMeeting)
	meetingGroup.PATCH("/:id", meetingHandler.UpdateMeeting)
	meetingGroup.DELETE("/:id", meetingHandler.DeleteMeeting)
	meetingGroup.POST("/:id/attachments", meetingHandler.AddAttachment)
	meetingGroup.DELETE("/:id/attachments/:objectId", meetingHandler.RemoveAttachment)

	// Timeline routes (authenticated)
	timelineGroup := v1.Group("/timeline", s.authMiddleware(authService))
	timelineGroup.GET("", timelineHandler.ListEvents)
	timelineGroup.POST("", timelineHandler.CreateEvent)
	timelineGroup.GET("/:id", timelineHandler.GetEvent)
	timelineGroup.PATCH("/:id", timelineHandler.UpdateEvent)
	timelineGroup.DELETE("/:id", timelineHandler.DeleteEvent)

	// Resource routes (authenticated)
	resourceGroup := v1.Group("/resources", s.authMiddleware(authService))
	resourceGroup.GET("", resourceHandler.ListResources)
	resourceGroup.POST("", resourceHandler.CreateResource)
	resourceGroup.GET("/:id", resourceHandler.GetResource)
	resourceGroup.PATCH("/:id", resourceHandler.UpdateResource)
	resourceGroup.DELETE("/:id", resourceHandler.DeleteResource)

	// Timer routes (authenticated)
	timerGroup := v1.Group("/timer", s.authMiddleware(authService))
	timerGroup.GET("", timerHandler.GetTimer)
	timerGroup.PUT("", timerHandler.SetTimer)

	// Stored object views (public, ids are unguessable)
	v1.GET("/files/:bucket/:id/view", storageHandler.ViewObject)

	// Realtime feed
	v1.GET("/realtime", func(c echo.Context) error {
		realtime.ServeWs(s.hub, c.Response(), c.Request(), s.logger)
		return nil
	})
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	// Database health check
	if err := s.db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  "1.21",
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	// Check if server is ready to accept requests
	if err := s.db.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server and the realtime hub
func (s *Server) Start(address string) error {
	go s.hub.Run()

	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if e, ok := err.(validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": e.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}
