// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves POST /query/ over the retrieval index.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/pkg/types"
)

// Defaults applied by New when the config leaves a field zero.
const (
	DefaultAddr    = ":8000"
	DefaultMaxTopK = 100
)

// DefaultAllowedOrigins is the CORS allow-list used when none is configured.
var DefaultAllowedOrigins = []string{"http://localhost:3000"}

// Searcher finds the k best papers for a prompt.
type Searcher interface {
	Search(ctx context.Context, prompt string, k int) ([]types.ResultItem, error)
}

// Server is the query service.
type Server struct {
	echo     *echo.Echo
	searcher Searcher
	maxTopK  int
	log      zerolog.Logger
	metrics  *metrics
}

// New builds the service routes. Metrics are registered on reg and exposed
// at /metrics.
func New(s Searcher, cfg types.ServerConfig, reg *prometheus.Registry, log zerolog.Logger) *Server {
	maxTopK := cfg.MaxTopK
	if maxTopK <= 0 {
		maxTopK = DefaultMaxTopK
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	e := httputil.NewEcho(log)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
	}))

	srv := &Server{
		echo:     e,
		searcher: s,
		maxTopK:  maxTopK,
		log:      log,
		metrics:  newMetrics(reg),
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	e.POST("/query/", srv.query)
	e.POST("/query", srv.query)
	return srv
}

// Handler returns the service as an http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	return httputil.Serve(ctx, s.echo, addr, s.log)
}

func (s *Server) query(c echo.Context) error {
	start := time.Now()

	var req types.QueryRequest
	if err := c.Bind(&req); err != nil {
		s.metrics.observe(outcomeBadRequest, start)
		return err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.metrics.observe(outcomeBadRequest, start)
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	k := req.TopK
	if k <= 0 {
		k = types.DefaultTopK
	}
	if k > s.maxTopK {
		k = s.maxTopK
	}

	results, err := s.searcher.Search(c.Request().Context(), req.Prompt, k)
	if err != nil {
		s.metrics.observe(outcomeError, start)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed").SetInternal(err)
	}
	if results == nil {
		results = []types.ResultItem{}
	}

	s.metrics.observe(outcomeOK, start)
	s.metrics.results.Observe(float64(len(results)))
	return c.JSON(http.StatusOK, types.QueryResponse{Results: results})
}
