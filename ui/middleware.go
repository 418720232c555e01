package ui

import (
	"net/http"

	"verisure/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))
	s.router.Use(middleware.Metrics())
}

// setupRoutes registers the console API
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.GET("/session", s.handleSession)
	api.POST("/session/login", s.handleLogin)
	api.POST("/session/logout", s.handleLogout)
	api.GET("/session/prefill", s.handlePrefill)
	api.POST("/signup", s.handleSignup)
	api.GET("/countries", s.handleCountries)
	api.GET("/approval", s.handleApproval)

	locked := middleware.RequireApproved(s.auth, s.approval, s.logger)

	issuer := api.Group("/issuer")
	issuer.GET("/template", s.handleTemplate)
	issuer.GET("/state", s.handleIssuerState)
	issuer.GET("/history", s.handleHistory)
	issuer.POST("/upload", locked, s.handleUpload)
	issuer.POST("/batch", locked, s.handleRequestBatch)
	issuer.POST("/single", locked, s.handleRequestSingle)

	api.POST("/confirm", locked, s.handleConfirm)
	api.POST("/confirm/cancel", s.handleCancel)
}
