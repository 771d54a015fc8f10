package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pressroom/admin-gateway/internal/cache"
	"github.com/pressroom/admin-gateway/internal/config"
	"github.com/pressroom/admin-gateway/internal/handler"
	"github.com/pressroom/admin-gateway/internal/middleware"
	"github.com/pressroom/admin-gateway/internal/ratelimit"
	"github.com/pressroom/admin-gateway/internal/repository"
	"github.com/pressroom/admin-gateway/internal/service"
	"github.com/pressroom/admin-gateway/internal/storage"
)

type Server struct {
	router     *gin.Engine
	config     *config.Config
	redis      *storage.RedisClient
	postgres   *storage.Postgres
	limiter    *ratelimit.Limiter
	burstGuard *ratelimit.BurstGuard
	metrics    *middleware.Metrics
	authSvc    *service.AuthService
	adminSvc   *service.AdminService
	authH      *handler.AuthHandler
	adminH     *handler.AdminHandler
	appH       *handler.ApplicationHandler
	httpServer *http.Server
}

func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	userRepo := repository.NewUserRepository(postgres)
	articleRepo := repository.NewArticleRepository(postgres)
	authorRepo := repository.NewAuthorRepository(postgres)
	applicationRepo := repository.NewApplicationRepository(postgres)
	auditRepo := repository.NewAuditLogRepository(postgres)

	cacheManager := cache.NewManager(redis, nil)
	auditSvc := service.NewAuditService(auditRepo)
	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.ExpiryHours)
	adminSvc := service.NewAdminService(articleRepo, authorRepo, applicationRepo, auditRepo, cacheManager, auditSvc)

	s := &Server{
		router:     router,
		config:     cfg,
		redis:      redis,
		postgres:   postgres,
		limiter:    ratelimit.NewLimiter(redis, nil),
		burstGuard: ratelimit.NewBurstGuard(),
		metrics:    middleware.NewMetrics(),
		authSvc:    authSvc,
		adminSvc:   adminSvc,
		authH:      handler.NewAuthHandler(authSvc),
		adminH:     handler.NewAdminHandler(adminSvc),
		appH:       handler.NewApplicationHandler(adminSvc),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
	s.router.Use(s.metrics.Middleware())
}

// limit returns the rate-limit middleware for a tier, with the burst guard
// composed in when enabled.
func (s *Server) limit(tier ratelimit.Tier) gin.HandlerFunc {
	if s.config.RateLimit.EnforceBurst {
		return middleware.RateLimitWithBurst(s.limiter, s.burstGuard, tier)
	}

	return middleware.RateLimit(s.limiter, tier)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	auth := s.router.Group("/auth", s.limit(ratelimit.TierGeneralAuth))
	{
		auth.POST("/register", s.authH.Register)
		auth.POST("/login", s.authH.Login)
	}

	s.router.POST("/applications", s.limit(ratelimit.TierAppSubmission), s.appH.Submit)

	admin := s.router.Group("/admin",
		middleware.RequireAuth(s.authSvc),
		middleware.RequireAdmin(),
		s.limit(ratelimit.TierAdminActions),
	)
	{
		admin.GET("/stats", s.adminH.Stats)
		admin.GET("/analytics", s.adminH.Analytics)
		admin.GET("/articles", s.adminH.ListArticles)
		admin.PATCH("/articles/:id/status", s.adminH.UpdateArticleStatus)
		admin.GET("/applications", s.adminH.ListApplications)
		admin.POST("/applications/:id/review", s.adminH.ReviewApplication)
		admin.GET("/authors", s.adminH.ListAuthors)
		admin.PATCH("/authors/:id/status", s.adminH.UpdateAuthorStatus)
		admin.GET("/audit-logs", s.adminH.ListAuditLogs)
		admin.GET("/system/cache", s.adminH.CacheStats)
		admin.GET("/system/metrics", s.systemMetrics)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	redisHealthy := true
	if err := s.redis.Ping(c.Request.Context()); err != nil {
		redisHealthy = false
		log.Printf("Redis health check failed: %v", err)
	}

	dbHealthy := true
	if err := s.postgres.Ping(c.Request.Context()); err != nil {
		dbHealthy = false
		log.Printf("Database health check failed: %v", err)
	}

	status := "healthy"
	statusCode := http.StatusOK

	// Redis being down degrades rate limiting and caching but the service
	// keeps working, so only the database takes the endpoint unhealthy.
	if !dbHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else if !redisHealthy {
		status = "degraded"
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "admin-gateway",
		"version":   "1.0.0",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"redis":    redisHealthy,
			"database": dbHealthy,
		},
	})
}

func (s *Server) systemMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": time.Since(startTime).Seconds(),
		"requests":       s.metrics.Summary(),
		"cache":          s.adminSvc.CacheStats(),
	})
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if s.config.RateLimit.EnforceBurst {
		s.burstGuard.StartJanitor(context.Background())
	}

	log.Printf("Starting admin gateway on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

var startTime = time.Now()
