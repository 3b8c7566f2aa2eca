// Package server exposes the utilization views as a JSON API. Tables are
// fetched from the provider on every request; the server keeps no data
// between requests.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"classroom-utilization-audit/internal/source"
	"classroom-utilization-audit/internal/utilization"
)

type Server struct {
	provider      source.Provider
	logger        *zap.Logger
	registry      *prometheus.Registry
	metrics       *Metrics
	topN          int
	defaultPeriod string
	options       []utilization.Option
	now           func() time.Time
}

func New(provider source.Provider, logger *zap.Logger, topN int, defaultPeriod string, opts ...utilization.Option) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		provider:      provider,
		logger:        logger,
		registry:      registry,
		metrics:       NewMetrics(registry),
		topN:          topN,
		defaultPeriod: defaultPeriod,
		options:       opts,
		now:           time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/periods", s.handlePeriods).Methods(http.MethodGet)
	r.HandleFunc("/api/utilization", s.handleUtilization).Methods(http.MethodGet)
	r.HandleFunc("/api/utilization.xlsx", s.handleWorkbook).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms", s.handleView(viewRooms)).Methods(http.MethodGet)
	r.HandleFunc("/api/programs", s.handleView(viewPrograms)).Methods(http.MethodGet)
	r.HandleFunc("/api/day-sessions", s.handleView(viewDaySessions)).Methods(http.MethodGet)
	r.HandleFunc("/api/data/{sheet}", s.handleData).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return handlers.CompressHandler(handlers.RecoveryHandler()(r))
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.observeRequest(route, rw.status, elapsed)
		s.logger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Duration("duration", elapsed),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
