// Package server exposes dashboard aggregates over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gauthierbraillon/sentiboard/internal/metrics"
	"github.com/gauthierbraillon/sentiboard/internal/records"
	"github.com/gauthierbraillon/sentiboard/internal/sentiment"
)

const shutdownTimeout = 10 * time.Second

// Server serves the sentiment dashboard API.
type Server struct {
	echo          *echo.Echo
	fetcher       records.Fetcher
	builder       *sentiment.Builder
	log           *zap.SugaredLogger
	now           func() time.Time
	defaultFilter sentiment.TimeFilter
}

type Option func(*Server)

// WithClock sets the clock sampled once per request.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDefaultFilter sets the filter used when a request names none.
func WithDefaultFilter(f sentiment.TimeFilter) Option {
	return func(s *Server) { s.defaultFilter = f }
}

func New(fetcher records.Fetcher, builder *sentiment.Builder, opts ...Option) *Server {
	s := &Server{
		fetcher:       fetcher,
		builder:       builder,
		log:           zap.NewNop().Sugar(),
		now:           time.Now,
		defaultFilter: sentiment.Month,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/healthz"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				s.log.Infow("request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				s.log.Warnw("request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	api := e.Group("/api/companies/:company")
	api.GET("/sentiment", s.handleSentiment)
	api.GET("/sentiment/all", s.handleSentimentAll)

	s.echo = e
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.echo.Listener = ln
	s.log.Infow("starting sentiboard server", "address", ln.Addr().String())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.echo.Start(ln.Addr().String()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server exited properly")
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSentiment(c echo.Context) error {
	filter := s.defaultFilter
	if q := c.QueryParam("time_filter"); q != "" {
		parsed, err := sentiment.ParseTimeFilter(q)
		if err != nil {
			return mapError(err)
		}
		filter = parsed
	}

	company := c.Param("company")
	raw, err := s.fetcher.FetchRawSentimentRecords(c.Request().Context(), company)
	if err != nil {
		return mapError(err)
	}

	cs := s.builder.Build(company, raw, filter, s.now())
	metrics.RecordAggregation(string(filter), cs.Diagnostics.Reasons)

	return c.JSON(http.StatusOK, cs)
}

func (s *Server) handleSentimentAll(c echo.Context) error {
	ctx := c.Request().Context()
	company := c.Param("company")

	raw, err := s.fetcher.FetchRawSentimentRecords(ctx, company)
	if err != nil {
		return mapError(err)
	}

	all, err := s.builder.BuildAll(ctx, company, raw, s.now())
	if err != nil {
		return mapError(err)
	}
	for filter, cs := range all {
		metrics.RecordAggregation(string(filter), cs.Diagnostics.Reasons)
	}

	return c.JSON(http.StatusOK, all)
}

// mapError converts fetch and build errors into HTTP errors.
func mapError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, sentiment.ErrUnknownTimeFilter):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, records.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "records API rejected the credentials")
	case errors.Is(err, records.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "company not found")
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "records API timed out")
	case errors.Is(err, context.Canceled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
	default:
		return echo.NewHTTPError(http.StatusBadGateway, "records API unavailable").SetInternal(err)
	}
}
