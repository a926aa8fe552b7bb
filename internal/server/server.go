// Package server exposes the subtitle engine and task history over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forPelevin/subcue/internal/logging"
	"github.com/forPelevin/subcue/internal/taskstore"
	"github.com/forPelevin/subcue/internal/usecase"
)

const (
	defaultMaxBodyBytes = 32 << 20
	shutdownTimeout     = 10 * time.Second
)

type Options struct {
	Usecase      usecase.Usecase
	Capabilities usecase.Capabilities
	// Template carries the configured stage options; requests override
	// style, cleanup, regions and frame height per call.
	Template     usecase.Input
	Store        *taskstore.Store
	Logger       *slog.Logger
	MaxBodyBytes int64
}

type Server struct {
	opts   Options
	log    *slog.Logger
	engine *gin.Engine
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{
		opts: opts,
		log:  logging.NewComponentLogger(opts.Logger, "server"),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.POST("/subtitles", bodyLimit(opts.MaxBodyBytes), s.handleSubtitles)
	api.GET("/tasks", s.handleListTasks)
	api.GET("/tasks/:id", s.handleGetTask)
	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", logging.Args(logging.String("addr", addr))...)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("stopped")
	return nil
}
