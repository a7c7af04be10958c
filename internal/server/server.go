// Package server exposes the pricing engine over HTTP.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/iv-calculator/internal/batch"
	"github.com/contactkeval/iv-calculator/internal/config"
	"github.com/contactkeval/iv-calculator/internal/logger"
	"github.com/contactkeval/iv-calculator/internal/metrics"
)

// Server is the HTTP API. Build it with New and start it with Run.
type Server struct {
	cfg     config.ServerConfig
	proc    *batch.Processor
	metrics *metrics.Metrics
	engine  *gin.Engine
}

// New wires the routes. gatherer backs GET /metrics and may be nil, in which
// case the default Prometheus registry is served.
func New(cfg config.ServerConfig, proc *batch.Processor, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, proc: proc, metrics: m, engine: r}
	r.Use(s.observe)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	s.RegisterRoutes(r.Group("/api/v1"))

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down within the configured
// timeout. It returns an error when the listener cannot start or shutdown
// does not complete.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("server: listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "listen on %s", s.cfg.Addr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("server: shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	})
	return g.Wait()
}

func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	s.metrics.ObserveRequest(route, strconv.Itoa(status))
	logger.Debugf("server: %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
}
