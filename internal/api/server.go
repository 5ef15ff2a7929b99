// Package api exposes the progress service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"execedge/internal/auth"
	"execedge/internal/engine"
)

type Server struct {
	svc  *engine.Service
	auth *auth.Provider
	log  *zap.Logger
}

func NewServer(svc *engine.Service, provider *auth.Provider, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, auth: provider, log: log}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), Recovery(s.log), AccessLog(s.log))

	r.GET("/healthz", s.health)

	api := r.Group("/api", auth.Middleware(s.auth))
	api.POST("/habits/toggle", s.toggle)
	api.GET("/habits", s.listHabits)
	api.POST("/habits/:id/subscribe", s.subscribe)
	api.DELETE("/habits/:id/subscribe", s.unsubscribe)
	api.GET("/progress", s.progress)
	api.POST("/progress/recompute", s.recompute)
	api.GET("/achievements", s.achievements)
	api.GET("/challenges", s.challenges)
	return r
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
