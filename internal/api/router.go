package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/Attentive/internal/middleware"
	"github.com/soaringjerry/Attentive/internal/services"
)

// Options configures the HTTP surface.
type Options struct {
	Logger      *slog.Logger
	CORSOrigins []string
	Commit      string
	BuildTime   string
	// StaticDir or DevFrontendURL serve the front-end on non-API paths.
	StaticDir      string
	DevFrontendURL string
}

type Router struct {
	store    services.Store
	authn    *middleware.Authenticator
	auth     *services.AuthService
	sessions *services.SessionService
	scores   *services.ScoreService
	reports  *services.ReportService
	stats    *services.StatsService
	history  *services.HistoryService
	opts     Options
}

func NewRouter(store services.Store, authn *middleware.Authenticator, auth *services.AuthService, opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Router{
		store:    store,
		authn:    authn,
		auth:     auth,
		sessions: services.NewSessionService(store),
		scores:   services.NewScoreService(store),
		reports:  services.NewReportService(store),
		stats:    services.NewStatsService(store),
		history:  services.NewHistoryService(store),
		opts:     opts,
	}
}

// Handler assembles the middleware chain and routes.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(rt.opts.Logger))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.NoStore)
	if len(rt.opts.CORSOrigins) > 0 {
		r.Use(middleware.CORS(rt.opts.CORSOrigins))
	}
	r.Use(middleware.LocaleMiddleware)
	r.Use(rt.authn.WithAuth)

	r.Get("/health", rt.handleHealth)
	r.Get("/version", rt.handleVersion)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", rt.handleRegister)
		r.Post("/auth/login", rt.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/info", rt.handleInfo)
			r.Get("/profile", rt.handleProfile)
			r.Get("/stats", rt.handleStats)

			r.Get("/sessions", rt.handleHistory)
			r.Get("/sessions.csv", rt.handleHistoryCSV)
			r.Post("/sessions", rt.handleStartSession)
			r.Get("/sessions/active", rt.handleActiveSession)
			r.Delete("/sessions/active", rt.handleClearActiveSession)
			r.Post("/sessions/complete", rt.handleCompleteAssessment)
			r.Get("/sessions/{id}/report", rt.handleReport)
			r.Get("/sessions/{id}/responses.csv", rt.handleResponsesCSV)

			r.Post("/results", rt.handleSubmitResult)
		})
	})
	if fe := rt.frontend(); fe != nil {
		r.NotFound(fe.ServeHTTP)
	}
	return r
}

// actor builds the per-request Actor for the authenticated user. Callers
// sit behind RequireAuth.
func (rt *Router) actor(r *http.Request) services.Actor {
	uid, _ := middleware.UserIDFromContext(r.Context())
	return services.NewActor(rt.store, uid)
}
