// Package http serves the dashboard UI and the JSON API: statement
// upload, summaries, transaction listing, CSV export and the question
// endpoint.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"upilens/internal/cache"
	"upilens/internal/core"
	"upilens/internal/log"
	"upilens/internal/ports"
	"upilens/internal/rag"
	"upilens/internal/services"
	appweb "upilens/web"
)

// Answerer is the question-answering surface the server consumes.
type Answerer interface {
	Ask(ctx context.Context, question string) (rag.Answer, error)
}

// Config holds the HTTP-facing knobs.
type Config struct {
	Addr           string
	MaxUploadBytes int64
}

type Server struct {
	http.Server
	cfg       Config
	templates *template.Template
	store     ports.Store
	ingest    *services.IngestService
	answerer  Answerer
	logger    *log.Logger

	rateLimiter *rateLimiter

	// short-lived caches over the summary queries, cleared on upload
	txCache      *cache.LRUCache[[]core.Transaction]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg Config, store ports.Store, ingest *services.IngestService, answerer Answerer, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         cfg.Addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		cfg:          cfg,
		store:        store,
		ingest:       ingest,
		answerer:     answerer,
		logger:       logger.WithComponent(log.ComponentHTTP),
		rateLimiter:  newRateLimiter(),
		txCache:      cache.NewLRUCache[[]core.Transaction](8, time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.txCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("failed to mount embedded static fs", log.FieldError, err)
	}

	mux.HandleFunc("/", s.withMiddleware(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/upload", s.withMiddleware(s.handleUpload))
	mux.HandleFunc("/export/csv", s.withMiddleware(s.handleExportCSV))

	mux.HandleFunc("/api/documents", s.withMiddleware(s.handleListDocuments))
	mux.HandleFunc("/api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("/api/summary/daily", s.withMiddleware(s.handleDailySummary))
	mux.HandleFunc("/api/summary/monthly", s.withMiddleware(s.handleMonthlySummary))
	mux.HandleFunc("/api/summary/category", s.withMiddleware(s.handleCategorySummary))
	mux.HandleFunc("/api/unusual", s.withMiddleware(s.handleUnusual))
	mux.HandleFunc("/api/ask", s.withMiddleware(s.handleAsk))

	return s
}

// Shutdown stops the server and its background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds request tracing, rate limiting and security headers.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "rate limit exceeded",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded, try again later", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.ListDocuments(r.Context()); err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// listTransactions reads the full transaction set through the cache.
func (s *Server) listTransactions(ctx context.Context) ([]core.Transaction, error) {
	const key = "all"
	if txs, ok := s.txCache.Get(key); ok {
		return txs, nil
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	s.txCache.Set(key, txs)
	return txs, nil
}

func (s *Server) invalidateCaches() {
	s.txCache.Clear()
}
