package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/uvecheck-mcp-server/internal/domain"
	"github.com/uvecheck-mcp-server/internal/middleware"
	"github.com/uvecheck-mcp-server/internal/service"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	calculator    *service.CalculatorService
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, calculator *service.CalculatorService, logger *logrus.Logger) (*Server, error) {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if configManager.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	if rl := configManager.GetRateLimitConfig(); rl.Enabled {
		limiter, err := middleware.NewRateLimiter(rl.RequestsPerSecond, rl.Burst, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		router.Use(limiter.Middleware())
	}

	server := &Server{
		configManager: configManager,
		calculator:    calculator,
		logger:        logger,
		router:        router,
	}

	server.setupRoutes()

	return server, nil
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/guidelines", s.handleListGuidelines)
		v1.GET("/guidelines/:id", s.handleGetGuideline)
		v1.POST("/calculate", s.handleCalculate)
		v1.POST("/validate", s.handleValidate)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"version":    Version,
		"guidelines": len(domain.AllGuidelines),
	})
}

func (s *Server) handleListGuidelines(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"guidelines":            s.calculator.ListGuidelines(),
		"biological_treatments": domain.BiologicalTreatments,
	})
}

func (s *Server) handleGetGuideline(c *gin.Context) {
	info, err := s.calculator.DescribeGuideline(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleCalculate(c *gin.Context) {
	var params service.CalculateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		respondInvalidBody(c, err)
		return
	}

	result, err := s.calculator.Calculate(c.Request.Context(), &params)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleValidate(c *gin.Context) {
	var params service.CalculateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		respondInvalidBody(c, err)
		return
	}

	result, err := s.calculator.ValidateProfile(c.Request.Context(), &params)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// corsMiddleware adds CORS headers for the configured origins
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimSuffix(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, "+middleware.CorrelationIDHeader)
		c.Header("Access-Control-Expose-Headers", middleware.CorrelationIDHeader+", Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
