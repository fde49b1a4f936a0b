// Package api serves the feeding service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/feedlog/internal/config"
	"github.com/julianstephens/feedlog/internal/feeding"
	"github.com/julianstephens/feedlog/internal/logger"
	"github.com/julianstephens/feedlog/internal/storage"
)

// NewRouter builds the gin engine with every route registered. store may be
// nil, in which case the health check does not ping it.
func NewRouter(cfg config.ServerConfig, svc *feeding.Service, store storage.Provider, hub *Hub) *gin.Engine {
	h := &handlers{
		svc:   svc,
		store: store,
		hub:   hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(cfg.CORSOrigins, r.Header.Get("Origin"))
			},
		},
	}
	svc.Subscribe(h.publish)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if mw := corsMiddleware(cfg.CORSOrigins); mw != nil {
		r.Use(mw)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.health)

		fd := api.Group("/feeding")
		fd.POST("", h.appendFeeding)
		fd.GET("/today", h.today)
		fd.POST("/reset-today", h.resetToday)
		// The existing web client resets with a GET.
		fd.GET("/reset-today", h.resetToday)
		fd.GET("/weekly", h.weekly)
		fd.GET("/weekly/export", h.weeklyExport)
		fd.GET("/timeline", h.timeline)
		fd.GET("/stream", h.stream)
		fd.PUT("/:id", h.editFeeding)
		fd.DELETE("/:id", h.deleteFeeding)
	}

	return r
}

// Server wraps http.Server with the feeding routes and graceful shutdown.
type Server struct {
	cfg  config.ServerConfig
	http *http.Server
	hub  *Hub
}

func NewServer(cfg config.ServerConfig, svc *feeding.Service, store storage.Provider) *Server {
	hub := NewHub()
	return &Server{
		cfg: cfg,
		hub: hub,
		http: &http.Server{
			Addr:              cfg.Address,
			Handler:           NewRouter(cfg, svc, store, hub),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start listens until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	logger.Info("HTTP server listening", "address", s.cfg.Address)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes stream clients and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if err := s.http.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
