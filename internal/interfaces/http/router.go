package http

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bot608/duocortex-accounts-page/config"
	"github.com/bot608/duocortex-accounts-page/internal/application/services"
	"github.com/bot608/duocortex-accounts-page/internal/interfaces/http/handlers"
	"github.com/bot608/duocortex-accounts-page/internal/interfaces/http/middleware"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

// Router wraps the Gin engine with application dependencies.
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// RouterDeps contains dependencies needed by the router.
type RouterDeps struct {
	SessionService *services.SessionService
	WalletService  *services.WalletService
	Logger         logger.Logger
	LogWriter      *logger.SQLiteWriter
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg *config.Config, deps *RouterDeps) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewRequestLoggerMiddleware(deps.Logger).Handler())

	authHandler := handlers.NewAuthHandler(deps.SessionService, cfg.Auth.LoginPath, deps.Logger)
	accountHandler := handlers.NewAccountHandler(deps.SessionService, deps.WalletService)
	healthHandler := handlers.NewHealthHandler(deps.SessionService)

	sessionMiddleware := middleware.NewSessionMiddleware(deps.SessionService, cfg.Auth.LoginPath)
	loginRateLimiter := middleware.NewLoginRateLimiter(cfg.Server.LoginRateRPS, cfg.Server.LoginRateBurst)

	// Health endpoints (no CORS, no rate limiting)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/live", healthHandler.Live)

	engine.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	// Auth endpoints with stricter rate limiting
	auth := engine.Group("/auth")
	auth.Use(loginRateLimiter.Middleware())
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/social/:provider", authHandler.SocialLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
		auth.POST("/logout", authHandler.Logout)
	}

	// Session probe is open; the response says whether a session exists.
	engine.GET("/api/session", authHandler.Session)

	// Account endpoints (require an active session)
	api := engine.Group("/api")
	api.Use(sessionMiddleware.RequireSession())
	{
		api.GET("/dashboard", accountHandler.Dashboard)
		api.PUT("/profile", accountHandler.UpdateProfile)
		api.POST("/withdraw", accountHandler.Withdraw)
		api.GET("/transactions", accountHandler.Transactions)
	}

	// Debug log store, only when the durable writer is running.
	if deps.LogWriter != nil {
		logsHandler := handlers.NewLogsHandler(deps.LogWriter)
		api.GET("/logs", logsHandler.List)
	}

	return &Router{
		engine: engine,
		cfg:    cfg,
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// corsMiddleware creates a CORS middleware.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, o := range allowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Server wraps the HTTP server configuration.
type Server struct {
	router *Router
	cfg    *config.Config
}

// NewServer creates an HTTP server with the router.
func NewServer(cfg *config.Config, router *Router) *Server {
	return &Server{
		router: router,
		cfg:    cfg,
	}
}

// ListenAddr returns the server listen address.
func (s *Server) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
}

// ReadTimeout returns the server read timeout.
func (s *Server) ReadTimeout() time.Duration {
	return s.cfg.Server.ReadTimeout
}

// WriteTimeout returns the server write timeout.
func (s *Server) WriteTimeout() time.Duration {
	return s.cfg.Server.WriteTimeout
}

// IdleTimeout returns the server idle timeout.
func (s *Server) IdleTimeout() time.Duration {
	return s.cfg.Server.IdleTimeout
}

// Handler returns the HTTP handler.
func (s *Server) Handler() *gin.Engine {
	return s.router.Engine()
}
