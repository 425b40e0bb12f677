// Package http настраивает middleware и маршруты и запускает HTTP-сервер.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	handlers "github.com/aseptimu/bijective-shortener/internal/app/handlers/http"
	"github.com/aseptimu/bijective-shortener/internal/app/middleware"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	srv    *http.Server
	logger *zap.SugaredLogger
}

// NewServer собирает gin-роутер: recovery, request id, логирование, gzip,
// затем дополнительные middleware и маршруты h.
func NewServer(addr string, logger *zap.SugaredLogger, h handlers.Handlers, extra ...gin.HandlerFunc) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	logger.Debug("Setting up middleware")
	r.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.MiddlewareLogger(logger),
		middleware.GzipMiddleware(),
	)
	r.Use(extra...)
	h.RegisterRoutes(r)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler нужен тестам, которым не требуется слушать порт.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run запускает сервер и блокируется до отмены ctx, после чего
// корректно завершает активные соединения.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Infow("Initializing server", "address", s.srv.Addr)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		s.logger.Infow("Shutting down server", "reason", context.Cause(ctx))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorw("Error shutting down server", "error", err)
		}
	}()

	s.logger.Infow("Запуск HTTP сервера", "addr", s.srv.Addr)
	err := s.srv.ListenAndServe()
	close(done)
	wg.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
