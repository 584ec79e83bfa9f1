package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-rooms/archive"
	"github.com/judgegodwins/chess-rooms/game"
	"github.com/judgegodwins/chess-rooms/util"
	"github.com/judgegodwins/chess-rooms/ws"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	config    *util.Config
	wsManager *ws.Manager
	registry  *game.Registry
	archive   archive.Archiver
	router    *gin.Engine
	log       *slog.Logger
}

// NewServer builds the HTTP surface. archiver may be nil when no archive is configured.
func NewServer(config *util.Config, registry *game.Registry, archiver archive.Archiver, log *slog.Logger) *Server {
	router := gin.Default()

	server := &Server{
		config:    config,
		wsManager: ws.NewManager(config, registry, archiver, log),
		registry:  registry,
		archive:   archiver,
		router:    router,
		log:       log,
	}

	router.GET("/ws", server.wsManager.ServeWS)
	router.GET("/health", server.Health)
	router.POST("/auth/username", server.TokenGenerator)
	router.GET("/auth/me", server.AuthMiddleware, server.GetTokenData)
	router.GET("/rooms/:id", server.CheckRoom)
	router.GET("/games/:id", server.GetGame)

	return server
}

// Handler is the router wrapped with the CORS policy for ALLOWED_ORIGINS.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   s.config.Origins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(s.router)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
