package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ChristianF88/launchdash/config"
	"github.com/ChristianF88/launchdash/dataset"
	"github.com/ChristianF88/launchdash/logging"
	"github.com/ChristianF88/launchdash/query"
	"github.com/ChristianF88/launchdash/reactive"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const defaultShutdownTimeout = 5 * time.Second

// Server is the HTTP dashboard. Every request carries its own selection,
// so handlers evaluate the dependency table statelessly.
type Server struct {
	address         string
	title           string
	dataset         *dataset.Dataset
	table           reactive.Table
	slider          config.SliderConfig
	shutdownTimeout time.Duration
	logger          *slog.Logger
	server          *http.Server
}

// Options configures a Server
type Options struct {
	Address string
	Title   string
	Dataset *dataset.Dataset
	// Querier defaults to a query.Cache over Dataset
	Querier         query.Querier
	Slider          config.SliderConfig
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// New creates a server for the given dataset
func New(opts Options) *Server {
	q := opts.Querier
	if q == nil {
		q = query.NewCache(opts.Dataset)
	}
	if opts.Slider.Step <= 0 && opts.Slider.Max == 0 {
		opts.Slider = config.SliderConfig{
			Min:  config.DefaultSliderMin,
			Max:  config.DefaultSliderMax,
			Step: config.DefaultSliderStep,
		}
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("server")
	}
	if opts.Title == "" {
		opts.Title = config.DefaultTitle
	}

	s := &Server{
		address:         opts.Address,
		title:           opts.Title,
		dataset:         opts.Dataset,
		table:           reactive.DashboardTable(q),
		slider:          opts.Slider,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          opts.Logger,
	}
	s.server = &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, wrapped in request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/charts", s.handleCharts)
	mux.HandleFunc("GET /api/bindings", s.handleBindings)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.logRequests(mux)
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String(), "records", s.dataset.Len())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing HTTP server: %w", err)
		}
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
