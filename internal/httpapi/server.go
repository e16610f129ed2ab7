// Package httpapi serves the read-only inspection API over the signal
// store.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/lookout/internal/db"
	"horse.fit/lookout/internal/globaltime"
)

const (
	defaultWindowHours = 24
	maxWindowHours     = 24 * 90
	defaultRunLimit    = 20
	maxRunLimit        = 500
)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	pool   *db.Pool
	logger zerolog.Logger
	opts   Options
}

func NewServer(pool *db.Pool, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		pool:   pool,
		logger: logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/stats", s.handleStats)
	api.GET("/signals", s.handleSignals)
	api.GET("/signals/:signal_id", s.handleSignalDetail)
	api.GET("/signals/:signal_id/preview", s.handleSignalPreview)
	api.GET("/runs", s.handleRuns)
	api.GET("/competitors", s.handleCompetitors)
	api.GET("/sources", s.handleSources)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("lookout api server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("lookout api server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "lookout",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleStats(c echo.Context) error {
	hours, err := parsePositiveInt(c.QueryParam("hours"), defaultWindowHours, 1, maxWindowHours)
	if err != nil {
		return failValidation(c, map[string]string{"hours": err.Error()})
	}

	to := globaltime.UTC()
	from := to.Add(-time.Duration(hours) * time.Hour)
	stats, err := s.pool.QueryPipelineStats(c.Request().Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("query pipeline stats failed")
		return internalError(c, "Failed to load stats")
	}
	return success(c, stats)
}

func (s *Server) handleSignals(c echo.Context) error {
	hours, err := parsePositiveInt(c.QueryParam("hours"), defaultWindowHours, 1, maxWindowHours)
	if err != nil {
		return failValidation(c, map[string]string{"hours": err.Error()})
	}

	since := globaltime.UTC().Add(-time.Duration(hours) * time.Hour)
	signals, err := s.pool.RecentSignals(c.Request().Context(), since)
	if err != nil {
		s.logger.Error().Err(err).Msg("query recent signals failed")
		return internalError(c, "Failed to load signals")
	}

	return success(c, map[string]any{
		"items": signals,
		"hours": hours,
	})
}

func (s *Server) handleSignalDetail(c echo.Context) error {
	signalID, err := parseSignalID(c.Param("signal_id"))
	if err != nil {
		return failValidation(c, map[string]string{"signal_id": err.Error()})
	}

	row, err := s.pool.SignalByID(c.Request().Context(), signalID)
	if err != nil {
		if db.IsNoRows(err) {
			return failNotFound(c, "Signal not found")
		}
		s.logger.Error().Err(err).Int64("signal_id", signalID).Msg("query signal failed")
		return internalError(c, "Failed to load signal")
	}
	return success(c, row)
}

func (s *Server) handleRuns(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), defaultRunLimit, 1, maxRunLimit)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	runs, err := s.pool.ListRunLogs(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("query run log failed")
		return internalError(c, "Failed to load run log")
	}
	return success(c, map[string]any{
		"items": runs,
		"limit": limit,
	})
}

func (s *Server) handleCompetitors(c echo.Context) error {
	refs, err := s.pool.CompetitorRefs(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("query competitors failed")
		return internalError(c, "Failed to load competitors")
	}

	items := make([]db.CompetitorRef, 0, len(refs))
	for _, ref := range refs {
		items = append(items, ref)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return success(c, map[string]any{"items": items})
}

func (s *Server) handleSources(c echo.Context) error {
	sources, err := s.pool.ListSources(c.Request().Context(), c.QueryParam("type"))
	if err != nil {
		s.logger.Error().Err(err).Msg("query sources failed")
		return internalError(c, "Failed to load sources")
	}
	return success(c, map[string]any{"items": sources})
}

func parseSignalID(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("is required")
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return id, nil
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
