package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Services are the engine services the API exposes.
type Services = services.Bundle

type Server struct {
	http.Server

	svc Services

	detector    *security.Detector
	headers     *security.HeadersMiddleware
	tracer      *trace.Middleware
	limiter     *ratelimit.Limiter
	idempotency *idempotencyStore
	caches      *cache.Manager
	logger      *applog.Logger

	shutdownOnce sync.Once
}

func NewServer(addr string, svc Services) *Server {
	detector := security.NewDetector()

	// Inherit the process handler so the mains keep control of the level
	logger := applog.New(applog.Config{
		Handler:   slog.Default().Handler(),
		Component: applog.ComponentHTTP,
	})

	s := &Server{
		svc:         svc,
		detector:    detector,
		headers:     security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		tracer:      trace.NewMiddleware(detector.ExtractClientIP, applog.NewStructuredLogger(logger)),
		limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		idempotency: newIdempotencyStore(),
		caches:      cache.NewManager(),
		logger:      logger,
	}

	s.caches.Register(s.idempotency.Cache())
	s.caches.StartCleanup(10 * time.Minute)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      s.buildHandler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/accounts", s.handleAccountCreate)
	mux.HandleFunc("GET /api/accounts", s.handleAccountList)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleAccountGet)

	mux.HandleFunc("POST /api/transactions", s.handleTransactionCreate)
	mux.HandleFunc("GET /api/transactions", s.handleTransactionQuery)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleTransactionUpdate)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleTransactionDelete)

	mux.HandleFunc("POST /api/categories", s.handleCategoryCreate)
	mux.HandleFunc("GET /api/categories", s.handleCategoryList)
	mux.HandleFunc("GET /api/categories/hierarchy", s.handleCategoryHierarchy)
	mux.HandleFunc("GET /api/categories/account/{id}", s.handleCategoriesByAccount)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleCategoryUpdate)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleCategoryDelete)

	mux.HandleFunc("POST /api/budgets", s.handleBudgetSet)
	mux.HandleFunc("GET /api/budgets/check", s.handleBudgetCheck)

	mux.HandleFunc("GET /api/visualizations/spending-trend", s.handleSpendingTrend)
	mux.HandleFunc("GET /api/visualizations/budget-alerts", s.handleBudgetAlerts)
	mux.HandleFunc("GET /api/visualizations/category-distribution", s.handleCategoryDistribution)

	var handler http.Handler = mux
	handler = s.idempotency.Middleware(handler)
	handler = s.mutatingOnly(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited))(handler)
	handler = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(s.logger)(handler)
	handler = s.suspicionLogging(handler)
	handler = s.headers.Middleware(handler)
	return handler
}

// mutatingOnly applies mw to writes and lets reads through untouched
func (s *Server) mutatingOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				limited.ServeHTTP(w, r)
			}
		})
	}
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, retry later")
}

// suspicionLogging flags odd-looking requests without blocking them
func (s *Server) suspicionLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	// A probe against the store catches a torn-down backend
	if _, err := s.svc.Accounts.List(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown drains in-flight requests and stops the background loops.
// Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
