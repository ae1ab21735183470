// Package transport exposes the HTTP API: candidate-facing intake and
// session endpoints, and the JWT-protected interviewer dashboard.
package transport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/crispdev/crisp/internal/domain/activity"
	"github.com/crispdev/crisp/internal/domain/intake"
	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/domain/interviewer"
	"github.com/crispdev/crisp/internal/domain/session"
)

// Server wires HTTP handlers to the domain services.
type Server struct {
	intake       *intake.Service
	interviews   *interview.Service
	sessions     *session.Manager
	activity     *activity.Service
	interviewers *interviewer.Service
	tokens       *JWTService
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewRouter creates the API router.
func NewRouter(
	intakeSvc *intake.Service,
	interviews *interview.Service,
	sessions *session.Manager,
	activitySvc *activity.Service,
	interviewers *interviewer.Service,
	tokens *JWTService,
	logger *slog.Logger,
) *chi.Mux {
	srv := &Server{
		intake:       intakeSvc,
		interviews:   interviews,
		sessions:     sessions,
		activity:     activitySvc,
		interviewers: interviewers,
		tokens:       tokens,
		validate:     validator.New(),
		logger:       logger,
	}

	r := chi.NewRouter()
	r.Get("/health", srv.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", srv.handleLogin)
		r.Post("/intake", srv.handleIntake)

		authed := AuthMiddleware(srv.tokens)
		r.With(authed).Get("/interviews", srv.handleListInterviews)

		r.Route("/interviews/{id}", func(r chi.Router) {
			r.Get("/", srv.handleGetInterview)
			r.Post("/answer", srv.handleAnswer)
			r.Post("/pause", srv.handlePause)
			r.Post("/resume", srv.handleResume)
			r.Post("/submit", srv.handleSubmit)
			r.With(authed).Get("/activity", srv.handleActivity)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
