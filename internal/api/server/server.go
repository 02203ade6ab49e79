package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"crowdqr/internal/config"
	"crowdqr/internal/dashboard"
	database "crowdqr/internal/db"
	"crowdqr/internal/hub"
	"crowdqr/internal/metadata"
	"crowdqr/internal/reports"

	"crowdqr/internal/api/handlers"
	"crowdqr/internal/api/middleware"
)

type Server struct {
	cfg    *config.Config
	db     *database.Client
	hub    *hub.Hub
	router *gin.Engine
}

func New(cfg *config.Config, db *database.Client, h *hub.Hub) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		db:     db,
		hub:    h,
		router: gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.SilentLogger())
	s.router.Use(middleware.Recovery())

	// CORS Configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

	// "Authorization" must be allowed so clients can send the JWT
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	activeWindow := time.Duration(s.cfg.Dashboard.ActiveWindowMinutes) * time.Minute
	dash := dashboard.New(s.db.DB, activeWindow)
	rep := reports.New(s.db.DB, dash)
	enricher := metadata.NewEnricher()

	authHandler := handlers.NewAuthHandler(s.db.DB, s.cfg)
	userHandler := handlers.NewUserHandler(s.db.DB)
	eventHandler := handlers.NewEventHandler(s.db.DB)
	requestHandler := handlers.NewRequestHandler(s.db.DB, dash, s.hub, enricher)
	voteHandler := handlers.NewVoteHandler(s.db.DB, dash, s.hub)
	sessionHandler := handlers.NewSessionHandler(s.db.DB)
	dashboardHandler := handlers.NewDashboardHandler(dash)
	reportsHandler := handlers.NewReportsHandler(rep)
	healthHandler := handlers.NewHealthHandler(s.db, s.cfg.Server.Environment)

	// Health probes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	api := s.router.Group("/api")
	{
		// ==========================================
		// PUBLIC ROUTES (No Token Required)
		// ==========================================
		api.GET("/ping", healthHandler.Ping)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/join", authHandler.Join)

		// The QR code lands here before the client has a token.
		api.GET("/event", eventHandler.GetEvents)
		api.GET("/event/slug/:slug", eventHandler.GetEventBySlug)

		// ==========================================
		// PROTECTED ROUTES (JWT Token Required)
		// ==========================================
		protected := api.Group("/")
		protected.Use(middleware.RequireAuth(s.cfg))
		{
			// --- USERS ---
			protected.GET("/user", userHandler.GetUsers)
			protected.GET("/user/:id", userHandler.GetUser)
			protected.GET("/user/role/:role", userHandler.GetUsersByRole)
			protected.GET("/user/username/:username", userHandler.GetUserByUsername)
			protected.POST("/user", userHandler.CreateUser)
			protected.PUT("/user/:id", userHandler.UpdateUser)
			protected.DELETE("/user/:id", middleware.RequireRole("dj"), userHandler.DeleteUser)

			// --- EVENTS ---
			protected.GET("/event/:id", eventHandler.GetEvent)
			protected.POST("/event", middleware.RequireRole("dj"), eventHandler.CreateEvent)
			protected.PUT("/event/:id", middleware.RequireRole("dj"), eventHandler.UpdateEvent)
			protected.DELETE("/event/:id", middleware.RequireRole("dj"), eventHandler.DeleteEvent)

			// --- REQUESTS ---
			protected.GET("/request", requestHandler.GetRequests)
			protected.GET("/request/:id", requestHandler.GetRequest)
			protected.GET("/request/event/:eventId", requestHandler.GetEventRequests)
			protected.POST("/request", requestHandler.CreateRequest)
			protected.PUT("/request/:id/status", requestHandler.UpdateStatus)
			protected.DELETE("/request/:id", middleware.RequireRole("dj"), requestHandler.DeleteRequest)

			// --- VOTES ---
			protected.GET("/vote/request/:requestId", voteHandler.GetRequestVotes)
			protected.POST("/vote", voteHandler.CreateVote)
			protected.DELETE("/vote/user/:userId/request/:requestId",
				middleware.SelfOrDJ("userId"), voteHandler.DeleteVote)

			// --- SESSIONS ---
			protected.PUT("/session", sessionHandler.UpsertSession)
			protected.GET("/session/event/:eventId", middleware.RequireRole("dj"), sessionHandler.GetEventSessions)

			// --- DJ DASHBOARD ---
			protected.GET("/dashboard/event/:eventId/summary",
				middleware.RequireRole("dj"), dashboardHandler.GetEventSummary)
			protected.GET("/dashboard/event/:eventId/top-requests",
				middleware.RequireRole("dj"), dashboardHandler.GetTopRequests)
			protected.GET("/dashboard/dj/:djUserId/event-stats",
				middleware.RequireRole("dj"), dashboardHandler.GetDJEventStats)

			// --- REPORTS ---
			protected.GET("/reports/event-performance/:eventId",
				middleware.RequireRole("dj"), reportsHandler.GetEventPerformance)
			protected.GET("/reports/dj-analytics",
				middleware.RequireRole("dj"), reportsHandler.GetDJAnalytics)
			protected.GET("/reports/dj-analytics/export",
				middleware.RequireRole("dj"), reportsHandler.ExportDJAnalytics)
		}
	}

	// Realtime channel. Auth runs first so the hub sees the username claim.
	s.router.GET("/ws", middleware.RequireAuth(s.cfg), s.hub.ServeWS)
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
