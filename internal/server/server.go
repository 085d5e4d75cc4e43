package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/hongminglow/users-api/docs"
	"github.com/hongminglow/users-api/internal/auth"
	"github.com/hongminglow/users-api/internal/config"
	"github.com/hongminglow/users-api/internal/http/handlers"
	"github.com/hongminglow/users-api/internal/http/respond"
	"github.com/hongminglow/users-api/internal/middleware"
	"github.com/hongminglow/users-api/internal/storage"
	"github.com/hongminglow/users-api/internal/users"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, opts ...users.Option) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, store, prometheus.NewRegistry(), opts...),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewHandler builds the route table once and wraps it in middleware.
// Metrics are registered on reg and exposed at /metrics.
func NewHandler(cfg config.Config, store storage.UserStore, reg *prometheus.Registry, opts ...users.Option) http.Handler {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service := users.NewService(store, opts...)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store).Register(mux)
	handlers.NewUserHandler(service).Register(mux)
	handlers.NewAuthHandler(service, tokenManager).Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	metrics := middleware.NewMetrics(reg)
	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(metrics.Wrap(envelopeErrors(mux))))
}

// envelopeErrors answers requests the mux cannot route (unknown path or wrong
// method) with the JSON envelope instead of ServeMux's plain-text replies.
// The Allow header set by the mux on a 405 is kept.
func envelopeErrors(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}
		rec := &routingErrorRecorder{header: w.Header(), status: http.StatusNotFound}
		mux.ServeHTTP(rec, r)
		if rec.status == http.StatusMethodNotAllowed {
			respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		respond.Error(w, http.StatusNotFound, "route not found")
	})
}

// routingErrorRecorder captures the status ServeMux picks and drops its body.
type routingErrorRecorder struct {
	header http.Header
	status int
}

func (rec *routingErrorRecorder) Header() http.Header { return rec.header }

func (rec *routingErrorRecorder) WriteHeader(code int) { rec.status = code }

func (rec *routingErrorRecorder) Write(b []byte) (int, error) { return len(b), nil }

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
