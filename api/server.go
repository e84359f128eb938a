package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/drivewise/vehicle-health/api/handlers"
	"github.com/drivewise/vehicle-health/api/middleware"
	"github.com/drivewise/vehicle-health/api/websocket"
	_ "github.com/drivewise/vehicle-health/docs"
	"github.com/drivewise/vehicle-health/internal/auth"
	"github.com/drivewise/vehicle-health/internal/store"
	"github.com/drivewise/vehicle-health/pkg/config"
	"github.com/drivewise/vehicle-health/pkg/database"
	"github.com/drivewise/vehicle-health/pkg/database/queries"
)

type Server struct {
	router         *gin.Engine
	httpServer     *http.Server
	config         *config.Config
	db             *database.DB
	cache          *store.LatestCache
	authService    *auth.Service
	wsHub          *websocket.Hub
	wsBridge       *websocket.EventBridge
	vehicleManager handlers.VehicleManager
}

func NewServer(cfg *config.Config, db *database.DB, cache *store.LatestCache, vehicleManager handlers.VehicleManager) *Server {
	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	authService := auth.NewService(auth.Config{
		Secret:   cfg.API.JWTSecret,
		Duration: cfg.API.JWTDuration,
		Issuer:   cfg.API.JWTIssuer,
	})
	wsHub := websocket.NewHub(&cfg.WebSocket)

	s := &Server{
		router:         router,
		config:         cfg,
		db:             db,
		cache:          cache,
		authService:    authService,
		wsHub:          wsHub,
		vehicleManager: vehicleManager,
	}

	s.setupMiddleware()
	s.setupRoutes()

	// Start WebSocket hub
	go wsHub.Run()

	// Start event bridge to forward pipeline events to WebSocket clients
	if vehicleManager != nil {
		eventsChan := vehicleManager.SubscribeAllEvents()
		s.wsBridge = websocket.NewEventBridge(wsHub, eventsChan)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(s.corsConfig()))
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestSizeLimit(1 << 20))

	rateLimiter := middleware.NewRateLimiter(s.config.API.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) corsConfig() middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(s.config.API.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = s.config.API.CORS.AllowedOrigins
	}
	if len(s.config.API.CORS.AllowedMethods) > 0 {
		cors.AllowMethods = s.config.API.CORS.AllowedMethods
	}
	if len(s.config.API.CORS.AllowedHeaders) > 0 {
		cors.AllowHeaders = s.config.API.CORS.AllowedHeaders
	}
	if len(s.config.API.CORS.ExposedHeaders) > 0 {
		cors.ExposeHeaders = s.config.API.CORS.ExposedHeaders
	}
	cors.AllowCredentials = s.config.API.CORS.AllowCredentials
	return cors
}

func (s *Server) setupRoutes() {
	// Repositories
	userRepo := queries.NewUserRepository(s.db.DB)
	vehicleRepo := queries.NewVehicleRepository(s.db.DB)
	readingRepo := queries.NewReadingRepository(s.db.DB)
	healthRepo := queries.NewHealthRecordRepository(s.db.DB)

	// Handlers
	healthHandler := handlers.NewHealthHandler(s.db, s.cache)
	authHandler := handlers.NewAuthHandler(userRepo, s.authService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleRepo, s.vehicleManager, s.cache, s.config)
	telemetryHandler := handlers.NewTelemetryHandler(vehicleRepo, readingRepo, healthRepo, s.cache, &s.config.API)

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	// Auth routes get their own tighter limit on top of the global one
	authGroup := s.router.Group("/auth")
	authGroup.Use(middleware.AuthRateLimiter())
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// API docs
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		// Vehicles
		protected.GET("/vehicles", vehicleHandler.List)
		protected.POST("/vehicles", vehicleHandler.Create)
		protected.GET("/vehicles/:id", vehicleHandler.Get)
		protected.PUT("/vehicles/:id", vehicleHandler.Update)
		protected.DELETE("/vehicles/:id", vehicleHandler.Delete)
		protected.POST("/vehicles/:id/start", vehicleHandler.Start)
		protected.POST("/vehicles/:id/stop", vehicleHandler.Stop)
		protected.GET("/vehicles/:id/status", vehicleHandler.GetStatus)

		// Telemetry
		protected.GET("/vehicles/:id/readings", telemetryHandler.GetReadings)
		protected.GET("/vehicles/:id/readings/latest", telemetryHandler.GetLatestReading)

		// Health records
		protected.GET("/vehicles/:id/health", telemetryHandler.GetHealth)
		protected.GET("/vehicles/:id/health/history", telemetryHandler.GetHealthHistory)
		protected.GET("/health-records/alerts", telemetryHandler.GetAlerts)
		protected.GET("/health-records/summary", telemetryHandler.GetFleetSummary)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.API.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  s.config.API.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the event bridge first
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
