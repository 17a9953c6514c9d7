// Package server exposes trimming, waveform and export over HTTP.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/berlandbor/wavtrim"
	"github.com/berlandbor/wavtrim/internal/config"
	"github.com/gin-gonic/gin"
)

// Server represents the HTTP server
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	decoder    wavtrim.Decoder
}

// NewServer creates a server for cfg that decodes uploads with decoder.
func NewServer(cfg *config.Config, decoder wavtrim.Decoder) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:  engine,
		cfg:     cfg,
		decoder: decoder,
		httpServer: &http.Server{
			Addr:           cfg.Server.Addr(),
			Handler:        engine,
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   60 * time.Second,
			IdleTimeout:    30 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
	}

	s.engine.Use(gin.Logger())
	s.engine.Use(CORS())
	s.engine.Use(RequestSizeLimit(cfg.Server.MaxUploadBytes()))

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/info", s.info)
	v1.POST("/waveform", s.waveform)
	v1.POST("/export", s.export)
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("listening on %s", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
