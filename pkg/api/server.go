package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wiki_router/pkg/config"
)

// NewRouter registers all routes and middleware on a new gin engine.
func NewRouter(cfg config.ServerConfig, handlers *Handlers, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := gin.New()
	r.Use(
		requestID(),
		accessLog(logger),
		recovery(logger),
		securityHeaders(cfg.CORSOrigin),
	)

	v1 := r.Group("/api/v1")
	{
		limited := v1.Group("", limitConcurrency(cfg.MaxConcurrent), timeout(cfg.RequestTimeout))
		limited.GET("/search", handlers.HandleSearch)
		limited.GET("/titles", handlers.HandleTitles)

		v1.GET("/health", handlers.HandleHealth)
		v1.GET("/stats", handlers.HandleStats)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg config.ServerConfig, handlers *Handlers, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(cfg, handlers, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// ListenAndServe starts the server and blocks until ctx is done or a
// shutdown signal arrives, then drains in-flight requests.
func ListenAndServe(ctx context.Context, srv *http.Server, cfg config.ServerConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down", "cause", context.Cause(ctx))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
