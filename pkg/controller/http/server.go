package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/auditflow/pkg/usecase"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
)

// HealthCheck reports whether a backing service is reachable
type HealthCheck func(ctx context.Context) error

type Server struct {
	router         *chi.Mux
	uc             *usecase.UseCases
	authUC         AuthUseCase
	metricsHandler http.Handler
	stream         NotificationStream
	healthChecks   map[string]HealthCheck
}

type Options func(*Server)

func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithMetricsHandler serves h on /metrics
func WithMetricsHandler(h http.Handler) Options {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// WithNotificationStream enables the server-sent event stream of realtime
// notifications
func WithNotificationStream(stream NotificationStream) Options {
	return func(s *Server) {
		s.stream = stream
	}
}

// WithHealthCheck adds a named dependency check to /health
func WithHealthCheck(name string, check HealthCheck) Options {
	return func(s *Server) {
		s.healthChecks[name] = check
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		uc:           uc,
		healthChecks: make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))

		r.Route("/findings", func(r chi.Router) {
			r.Post("/", s.createFinding)
			r.Get("/", s.listFindings)
			r.Get("/{findingID}", s.getFinding)
			r.Post("/{findingID}/categorize", s.categorizeFinding)
		})

		r.Route("/capas", func(r chi.Router) {
			r.Get("/", s.listCAPAs)
			r.Get("/{capaID}", s.getCAPA)
			r.Post("/{capaID}/requirement", s.commitRequirement)
			r.Post("/{capaID}/proposed-action", s.submitProposedAction)
			r.Post("/{capaID}/appropriateness-review", s.submitAppropriatenessReview)
			r.Post("/{capaID}/follow-up", s.submitFollowUpAction)
			r.Post("/{capaID}/effectiveness", s.submitActionEffectiveness)
			r.Post("/{capaID}/notify-mr", s.notifyManagementRepresentative)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.listNotifications)
			r.Post("/{notificationID}/read", s.markNotificationRead)
			if s.stream != nil {
				r.Get("/stream", s.streamNotifications)
			}
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}

	resp := response{Status: "ok"}
	code := http.StatusOK
	if len(s.healthChecks) > 0 {
		resp.Checks = make(map[string]string, len(s.healthChecks))
	}
	for name, check := range s.healthChecks {
		if err := check(r.Context()); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(r.Context(), w, code, resp)
}
