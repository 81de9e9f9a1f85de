package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jobtracker/jobtracker-backend/api/controllers"
	"github.com/jobtracker/jobtracker-backend/api/middleware"
	"github.com/jobtracker/jobtracker-backend/internal/admin"
	"github.com/jobtracker/jobtracker-backend/internal/applications"
	"github.com/jobtracker/jobtracker-backend/internal/assistant"
	"github.com/jobtracker/jobtracker-backend/internal/auth"
	"github.com/jobtracker/jobtracker-backend/internal/users"
	"github.com/jobtracker/jobtracker-backend/pkg/auth/session"
	"github.com/jobtracker/jobtracker-backend/pkg/config"
	"github.com/jobtracker/jobtracker-backend/pkg/db"
	"github.com/jobtracker/jobtracker-backend/pkg/logger"
	"github.com/jobtracker/jobtracker-backend/pkg/metrics"
	pkgredis "github.com/jobtracker/jobtracker-backend/pkg/redis"
)

// Store is the redis surface used by rate limiting and idempotency. A nil
// Store disables both.
type Store interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// Params lists everything the HTTP surface is built from.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    pkgredis.Pinger
	Store    Store
	Sessions session.AccessSessionChecker

	Auth         auth.Service
	Profiles     users.Service
	Applications applications.Service
	Analyzer     controllers.Analyzer
	Assistant    assistant.Service
	Admin        admin.Service

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var (
		store       pkgredis.IdempotencyStore
		rateLimiter Store
	)
	if p.Store != nil {
		store, rateLimiter = p.Store, p.Store
	}
	idempotent := middleware.Idempotency(store, logg)
	authenticated := middleware.Auth(cfg.JWT, p.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})
	r.Handle("/metrics", metrics.Handler(p.Gatherer))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateLimiter, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, rateLimiter, logg), idempotent).Post("/register", controllers.AuthRegister(p.Auth, logg))
		r.With(middleware.RefreshAuth(cfg.JWT, logg)).Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.With(authenticated).Post("/logout", controllers.AuthLogout(p.Auth, logg))
		r.With(authenticated).Get("/me", controllers.AuthMe(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticated)

		r.Route("/applications", func(r chi.Router) {
			r.Get("/", controllers.ApplicationsList(p.Applications, logg))
			r.With(idempotent).Post("/", controllers.ApplicationsCreate(p.Applications, logg))
			r.Get("/stream", controllers.ApplicationsStream(p.Applications, logg))
			r.Get("/{applicationId}", controllers.ApplicationsGet(p.Applications, logg))
			r.Patch("/{applicationId}", controllers.ApplicationsUpdate(p.Applications, logg))
			r.Delete("/{applicationId}", controllers.ApplicationsDelete(p.Applications, logg))
		})
		r.Get("/dashboard", controllers.Dashboard(p.Applications, logg))

		r.Route("/ai", func(r chi.Router) {
			r.Post("/resume-analysis", controllers.AIResumeAnalysis(p.Analyzer, logg))
			r.Post("/job-analysis", controllers.AIJobAnalysis(p.Analyzer, logg))
			r.Post("/career-insights", controllers.AICareerInsights(p.Analyzer, p.Profiles, p.Applications, logg))
			r.Post("/interview-questions", controllers.AIInterviewQuestions(p.Analyzer, logg))
		})
		r.Post("/assistant/messages", controllers.AssistantMessage(p.Assistant, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", controllers.AdminListUsers(p.Admin, logg))
			r.Get("/stats", controllers.AdminStatistics(p.Admin, logg))
			r.Patch("/users/{userId}/role", controllers.AdminUpdateRole(p.Admin, logg))
			r.Patch("/users/{userId}/active", controllers.AdminSetActive(p.Admin, logg))
		})
	})

	return r
}
