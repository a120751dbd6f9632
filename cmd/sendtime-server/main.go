// Package main implements the sendtime HTTP API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/journeykit/sendtime/pkg/holiday"
	"github.com/journeykit/sendtime/pkg/metrics"
	"github.com/journeykit/sendtime/pkg/sendtime"
)

var (
	configPath = flag.String("config", "", "Path to YAML configuration file")
	listenFlag = flag.String("listen", "", "Listen address (overrides config)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("sendtime server v1.0.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("configuration failed", "error", err)
		os.Exit(1)
	}
	if *listenFlag != "" {
		cfg.Listen = *listenFlag
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = os.Getenv("CACHE_DIR")
	}

	logger.Info("server configuration",
		"listen", cfg.Listen,
		"default_country", cfg.DefaultCountry,
		"cache_dir", cfg.CacheDir,
		"holiday_disabled", cfg.Holiday.Disabled,
		"rate_per_second", cfg.RateLimit.PerSecond)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sink := metrics.NewCalculatorMetrics(registry)

	holidayCfg := holiday.DefaultConfig()
	if cfg.Holiday.BaseURL != "" {
		holidayCfg.BaseURL = cfg.Holiday.BaseURL
	}
	if cfg.Holiday.CacheTTL > 0 {
		holidayCfg.CacheTTL = cfg.Holiday.CacheTTL.Std()
	}
	holidayCfg.Enabled = !cfg.Holiday.Disabled

	opts := []sendtime.Option{
		sendtime.WithMetrics(sink),
		sendtime.WithHolidayConfig(holidayCfg),
	}
	if cfg.DefaultCountry != "" {
		opts = append(opts, sendtime.WithDefaultCountry(cfg.DefaultCountry))
	}
	if cfg.MinFutureBuffer > 0 {
		opts = append(opts, sendtime.WithMinFutureBuffer(cfg.MinFutureBuffer.Std()))
	}
	if cfg.MaxLookaheadDays > 0 {
		opts = append(opts, sendtime.WithMaxLookaheadDays(cfg.MaxLookaheadDays))
	}
	if cfg.CacheDir != "" {
		opts = append(opts, sendtime.WithCacheDir(cfg.CacheDir))
	}

	calc, err := sendtime.New(context.Background(), logger, opts...)
	if err != nil {
		logger.Error("calculator setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := calc.Close(); err != nil {
			logger.Error("failed to close calculator", "error", err)
		}
	}()

	srv := &server{
		calc:    calc,
		cfg:     cfg,
		logger:  logger,
		limiter: newIPLimiter(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/calculate", srv.handleCalculate)
	mux.HandleFunc("POST /v1/calculate/batch", srv.handleBatch)
	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "listen", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

type server struct {
	calc    *sendtime.Calculator
	cfg     Config
	logger  *slog.Logger
	limiter *ipLimiter
}

// wrap adds a request ID, panic recovery, and baseline security headers.
func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]
				s.logger.Error("request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"stack", string(buf))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		handler.ServeHTTP(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"timezone": s.calc.ResolverStats(),
		"holiday":  s.calc.HolidayStats(),
	}); err != nil {
		s.logger.Error("failed to encode health response", "error", err)
	}
}

type calculateRequest struct {
	Contact sendtime.Contact        `json:"contact"`
	Config  sendtime.ActivityConfig `json:"config"`
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := w.Header().Get("X-Request-ID")
	ip := clientIP(r)

	if !s.limiter.allow(ip) {
		s.logger.Warn("rate limit exceeded", "request_id", requestID, "client_ip", ip)
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("invalid request body", "request_id", requestID, "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result := s.calc.Calculate(r.Context(), req.Contact, req.Config)

	status := http.StatusOK
	if !result.Success {
		switch result.ErrorCategory {
		case sendtime.ErrCategoryInvalidContact, sendtime.ErrCategoryInvalidConfig:
			status = http.StatusBadRequest
		case sendtime.ErrCategoryCanceled:
			status = http.StatusRequestTimeout
		default:
			status = http.StatusUnprocessableEntity
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode result", "request_id", requestID, "error", err)
	}
	s.logger.Info("calculation request completed",
		"request_id", requestID,
		"subscriber", req.Contact.SubscriberKey,
		"success", result.Success,
		"duration_ms", time.Since(start).Milliseconds())
}

type batchRequest struct {
	Contacts []sendtime.Contact      `json:"contacts"`
	Config   sendtime.ActivityConfig `json:"config"`
	Workers  int                     `json:"workers,omitempty"`
}

func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := w.Header().Get("X-Request-ID")
	ip := clientIP(r)

	if !s.limiter.allow(ip) {
		s.logger.Warn("rate limit exceeded", "request_id", requestID, "client_ip", ip)
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("invalid request body", "request_id", requestID, "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Contacts) == 0 {
		http.Error(w, "No contacts supplied", http.StatusBadRequest)
		return
	}
	if len(req.Contacts) > s.cfg.Batch.MaxContacts {
		http.Error(w, fmt.Sprintf("Too many contacts (max %d)", s.cfg.Batch.MaxContacts), http.StatusRequestEntityTooLarge)
		return
	}
	workers := req.Workers
	if workers <= 0 || workers > s.cfg.Batch.Workers {
		workers = s.cfg.Batch.Workers
	}

	batch := s.calc.CalculateBatch(r.Context(), req.Contacts, req.Config, workers)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(batch); err != nil {
		s.logger.Error("failed to encode batch result", "request_id", requestID, "error", err)
	}
	s.logger.Info("batch request completed",
		"request_id", requestID,
		"contacts", len(req.Contacts),
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
		"duration_ms", time.Since(start).Milliseconds())
}

// ipLimiter keeps one token bucket per client IP.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
