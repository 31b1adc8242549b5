// Package http exposes the dashboard aggregates as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"dons/internal/cache"
	"dons/internal/core"
	"dons/internal/ingest"
	"dons/internal/kpi"
	"dons/internal/source"
)

// RefreshPublisher announces dataset changes to interested consumers. Nil
// disables announcements.
type RefreshPublisher interface {
	PublishDatasetRefresh(ctx context.Context, source string, recordCount int, totalAmount float64) error
}

// Options configures the server.
type Options struct {
	Reader     source.DonationReader
	SourceName string // backend label used in refresh announcements
	Publisher  RefreshPublisher

	CleanOptions   ingest.Options
	TimelineBucket time.Duration
	TopDonorsLimit int
	HistogramEdges []float64
	CacheTTL       time.Duration
}

// dataset is one immutable load of the donation table plus its derived
// summary. Handlers grab the current pointer once and never see a half
// refreshed state.
type dataset struct {
	table    core.Table
	summary  core.Summary
	hasData  bool
	version  uint64
	loadedAt time.Time
}

type Server struct {
	http.Server

	reader    source.DonationReader
	source    string
	publisher RefreshPublisher

	cleanOpts ingest.Options
	bucket    time.Duration
	topDonors int
	edges     []float64

	current  atomic.Pointer[dataset]
	versions atomic.Uint64

	// Marshaled responses keyed by endpoint, parameters and dataset version.
	payloadCache *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and caches, returning a ready-to-run server.
// Call Refresh (or let a request to POST /api/refresh do it) to load data.
func NewServer(addr string, opts Options) *Server {
	mux := http.NewServeMux()

	if opts.TimelineBucket <= 0 {
		opts.TimelineBucket = kpi.DefaultBucket
	}
	if opts.TopDonorsLimit <= 0 {
		opts.TopDonorsLimit = kpi.DefaultTopDonors
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		reader:       opts.Reader,
		source:       opts.SourceName,
		publisher:    opts.Publisher,
		cleanOpts:    opts.CleanOptions,
		bucket:       opts.TimelineBucket,
		topDonors:    opts.TopDonorsLimit,
		edges:        opts.HistogramEdges,
		payloadCache: cache.NewLRUCache[[]byte](200, opts.CacheTTL),
		cacheManager: cache.NewManager(),
		rateLimiter:  newRateLimiter(),
	}

	s.cacheManager.Register(s.payloadCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("/api/kpis", s.withSecurityHeaders(s.handleKPIs))
	mux.HandleFunc("/api/rate", s.withSecurityHeaders(s.handleRate))
	mux.HandleFunc("/api/hourly", s.withSecurityHeaders(s.handleHourly))
	mux.HandleFunc("/api/distribution", s.withSecurityHeaders(s.handleDistribution))
	mux.HandleFunc("/api/top-donors", s.withSecurityHeaders(s.handleTopDonors))
	mux.HandleFunc("/api/timeline", s.withSecurityHeaders(s.handleTimeline))
	mux.HandleFunc("/api/campuses", s.withSecurityHeaders(s.handleCampuses))
	mux.HandleFunc("/api/dashboard", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/api/refresh", s.withSecurityHeaders(s.handleRefresh))

	return s
}

// Refresh re-reads the donation source and atomically swaps in the new
// dataset. Old cached payloads become unreachable because every cache key
// carries the dataset version.
func (s *Server) Refresh(ctx context.Context) (*core.Summary, error) {
	raws, err := s.reader.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read donation source: %w", err)
	}

	table := ingest.Clean(raws, s.cleanOpts)

	ds := &dataset{
		table:    table,
		version:  s.versions.Add(1),
		loadedAt: time.Now(),
	}
	if summary, err := ingest.Summarize(table); err == nil {
		ds.summary = summary
		ds.hasData = true
	}
	s.current.Store(ds)

	slog.InfoContext(ctx, "Dataset refreshed",
		"source", s.source,
		"record_count", len(table),
		"total_amount", table.TotalAmount(),
		"version", ds.version)

	if s.publisher != nil {
		if err := s.publisher.PublishDatasetRefresh(ctx, s.source, len(table), table.TotalAmount()); err != nil {
			slog.WarnContext(ctx, "Failed to announce dataset refresh", "error", err)
		}
	}

	if !ds.hasData {
		return nil, nil
	}
	summary := ds.summary
	return &summary, nil
}

// snapshot returns the currently loaded dataset, or nil before the first
// refresh.
func (s *Server) snapshot() *dataset {
	return s.current.Load()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutating requests (dataset refresh)
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.snapshot() == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("dataset not loaded"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
