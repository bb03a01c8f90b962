// Package api wires the HTTP front door: the reserved debug routes and the
// catch-all relay.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/mitm-relay-go/internal/api/handler"
	"github.com/user/mitm-relay-go/internal/api/middleware"
	"github.com/user/mitm-relay-go/internal/api/templates"
	"github.com/user/mitm-relay-go/internal/capture"
	"github.com/user/mitm-relay-go/internal/config"
	"github.com/user/mitm-relay-go/internal/forward"
	"github.com/user/mitm-relay-go/internal/ws"
	"go.uber.org/zap"
)

// Server wraps the HTTP router and dependencies.
type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// ServerDeps holds all dependencies for the relay server.
type ServerDeps struct {
	Store     *capture.Store
	Forwarder *forward.Forwarder
	Hub       *ws.Hub
	Admin     config.AdminConfig
	RateLimit config.RateLimitConfig
	MaxBody   int64
	Logger    *zap.Logger
}

// NewServer creates a relay server with all routes configured.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware. Nothing here may touch response headers: relayed
	// responses are reproduced verbatim.
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	r.SetHTMLTemplate(templates.Must())

	// Reserved debug routes. Everything here is operator-facing: basic auth,
	// security headers and rate limiting apply.
	configureHandler := handler.NewConfigureHandler(deps.Forwarder, deps.Store, logger)
	inspectHandler := handler.NewInspectHandler(deps.Store, logger)
	requestsHandler := handler.NewRequestsHandler(deps.Store, logger)
	healthHandler := handler.NewHealthHandler(deps.Store, deps.Forwarder)

	debug := r.Group("")
	debug.Use(middleware.SecurityHeaders())
	debug.Use(middleware.RateLimit(deps.RateLimit))
	debug.Use(middleware.BasicAuth(deps.Admin))
	{
		debug.GET("/___configure", configureHandler.ShowForm)
		debug.POST("/___configure", configureHandler.SaveForm)
		debug.GET("/___view_last/:x", inspectHandler.View)
		debug.GET("/___requests", requestsHandler.List)
		debug.GET("/___requests/:x", requestsHandler.Get)
		if deps.Hub != nil {
			debug.GET("/___live", gin.WrapF(deps.Hub.ServeWS))
		}
	}

	// Health endpoint (no auth, for probes).
	r.GET("/___health", healthHandler.Health)

	// Everything else is relayed.
	relayHandler := handler.NewRelayHandler(deps.Store, deps.Forwarder, deps.Hub, deps.MaxBody, logger)
	r.NoRoute(relayHandler.Relay)

	return &Server{
		router: r,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
