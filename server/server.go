// Package server exposes link resolution over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lukemcguire/linktitle/config"
	"github.com/lukemcguire/linktitle/linkify"
	"github.com/lukemcguire/linktitle/metrics"
)

const shutdownTimeout = 10 * time.Second

// Controller holds the dependencies shared by the HTTP handlers.
type Controller struct {
	conf     config.ServerConfig
	resolver linkify.BatchResolver
	logger   *zap.Logger
	registry *prom.Registry
}

// NewController creates a Controller. A nil registry disables /metrics.
func NewController(conf config.ServerConfig, r linkify.BatchResolver, logger *zap.Logger, reg *prom.Registry) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{conf: conf, resolver: r, logger: logger, registry: reg}
}

// NewRouter builds the chi router with middleware and routes installed.
func NewRouter(ctrl *Controller) *chi.Mux {
	r := chi.NewRouter()
	InitMiddleware(r, ctrl)
	Routing(r, ctrl)
	return r
}

// InitMiddleware installs request IDs, panic recovery, request timeouts and logging.
func InitMiddleware(r *chi.Mux, ctrl *Controller) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(ctrl.conf.RequestTimeout))
	r.Use(ctrl.LoggingMiddleware)
}

// Routing registers the routes:
//   - POST "/v1/resolve": resolve a JSON list of links.
//   - POST "/v1/convert": rewrite the bare links of a Markdown body.
//   - GET "/healthz": liveness check.
//   - GET "/metrics": Prometheus metrics, when a registry is configured.
func Routing(r *chi.Mux, ctrl *Controller) {
	r.Post("/v1/resolve", ctrl.ResolveLinks())
	r.Post("/v1/convert", ctrl.ConvertMarkdown())
	r.Get("/healthz", ctrl.Health())
	if ctrl.registry != nil {
		r.Handle("/metrics", metrics.HTTPHandler(ctrl.registry))
	}
}

// LoggingMiddleware logs every request with its status, size and duration.
func (con *Controller) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(res, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		con.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(req.Context())),
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", ww.Status()),
			zap.Int("size", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
