// Package admin builds the read-only HTTP surface for running the
// migration engine as a long-lived process: liveness/readiness,
// Prometheus metrics, and JSON inspection of the ledger. It never
// writes to the ledger — migrate/revert stay CLI-only operations.
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aatuh/surreal-migrate/chi"
	"github.com/aatuh/surreal-migrate/cors"
	"github.com/aatuh/surreal-migrate/health"
	recoverx "github.com/aatuh/surreal-migrate/httpx/recover"
	"github.com/aatuh/surreal-migrate/middleware/metrics"
	"github.com/aatuh/surreal-migrate/middleware/requestlog"
	"github.com/aatuh/surreal-migrate/middleware/timeout"
	"github.com/aatuh/surreal-migrate/ports"
	"github.com/aatuh/surreal-migrate/runner"
)

// Service wires a Runner, a ports.Conn, and a logger into an HTTP
// router exposing the routes described for the admin surface.
type Service struct {
	runner    *runner.Runner
	conn      ports.Conn
	log       ports.Logger
	health    ports.HealthManager
	registry  *prometheus.Registry
	gauges    *gaugePair
	validator ports.Validator
}

// New builds a Service. conn is used only for the readiness checker
// and is never written to directly by this package. Each Service gets
// its own Prometheus registry rather than sharing the global
// DefaultRegisterer, so that building more than one Service in a
// process (every admin package test does) never collides on
// collector names.
func New(r *runner.Runner, conn ports.Conn, log ports.Logger, v ports.Validator) *Service {
	hm := health.New()
	hm.RegisterCheckers(
		health.NewBasicChecker(),
		health.NewConnChecker(conn),
	)
	reg := prometheus.NewRegistry()
	return &Service{
		runner:    r,
		conn:      conn,
		log:       log,
		health:    hm,
		registry:  reg,
		gauges:    newGaugePair(reg),
		validator: v,
	}
}

// Router assembles the chi router with the same middleware ordering
// as the toolkit's default router: request ID, real IP, recoverer,
// CORS, metrics, access log, then the request timeout applied only to
// the handlers that reach the database.
func (s *Service) Router() ports.HTTPRouter {
	var r ports.HTTPRouter = chi.New()
	var mw ports.HTTPMiddleware = chi.NewMiddleware()

	r.Use(mw.RequestID())
	r.Use(mw.RealIP())
	r.Use(recoverx.Middleware())

	corsh := cors.New()
	r.Use(corsh.Handler(cors.DefaultOptions()))

	metricsRecorder := metrics.NewPrometheusRecorder(s.registry, nil)
	r.Use(metrics.New(metricsRecorder).HandlerFunc())
	r.Use(requestlog.New(s.log).Handler)

	to := timeout.New(10 * time.Second)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/status", to.Handler(http.HandlerFunc(s.handleStatus)).ServeHTTP)
	r.Get("/migrations", to.Handler(http.HandlerFunc(s.handleMigrations)).ServeHTTP)
	r.Post("/verify", to.Handler(http.HandlerFunc(s.handleVerify)).ServeHTTP)

	return r
}

// StartServer runs the admin HTTP server until ctx is canceled,
// performing a graceful shutdown exactly like the toolkit's own
// bootstrap.StartServer.
func StartServer(ctx context.Context, addr string, handler http.Handler, log ports.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("admin server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shctx)
	case err := <-errCh:
		return err
	}
}
