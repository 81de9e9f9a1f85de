package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/jobtracker/jobtracker-backend/api/routes"
	"github.com/jobtracker/jobtracker-backend/internal/access"
	"github.com/jobtracker/jobtracker-backend/internal/admin"
	"github.com/jobtracker/jobtracker-backend/internal/ai"
	"github.com/jobtracker/jobtracker-backend/internal/applications"
	"github.com/jobtracker/jobtracker-backend/internal/assistant"
	"github.com/jobtracker/jobtracker-backend/internal/auth"
	"github.com/jobtracker/jobtracker-backend/internal/users"
	"github.com/jobtracker/jobtracker-backend/pkg/auth/session"
	"github.com/jobtracker/jobtracker-backend/pkg/config"
	"github.com/jobtracker/jobtracker-backend/pkg/db"
	"github.com/jobtracker/jobtracker-backend/pkg/logger"
	"github.com/jobtracker/jobtracker-backend/pkg/metrics"
	"github.com/jobtracker/jobtracker-backend/pkg/migrate"
	"github.com/jobtracker/jobtracker-backend/pkg/outbox"
	"github.com/jobtracker/jobtracker-backend/pkg/redis"
)

const (
	serviceName     = "api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	usersRepo := users.NewRepository(dbClient.DB())
	profileService, err := users.NewService(users.ServiceParams{
		Repo:           usersRepo,
		AdminAllowlist: cfg.Admin.EmailAllowlist(),
	})
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Identities:     auth.NewIdentityRepository(dbClient.DB()),
		Profiles:       profileService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	applicationsRepo := applications.NewRepository(dbClient.DB())
	feed, err := applications.NewFeed(applications.FeedParams{
		Loader:  applications.Loader(applicationsRepo),
		Bus:     redisClient,
		Channel: redisClient.FeedChannel("applications"),
		Logger:  logg,
		Metrics: metrics.NewFeedMetrics(registry),
	})
	if err != nil {
		return err
	}
	applicationsService, err := applications.NewService(applications.ServiceParams{
		Repo: applicationsRepo,
		Feed: feed,
	})
	if err != nil {
		return err
	}

	completer, err := ai.NewCompleter(ctx, cfg.AI)
	if err != nil {
		return err
	}
	formatter, err := ai.NewFormatter(ai.FormatterParams{
		Completer: completer,
		Model:     cfg.AI.Model,
		Timeout:   cfg.AI.RequestTimeout,
		Logger:    logg,
		Metrics:   metrics.NewAIMetrics(registry),
	})
	if err != nil {
		return err
	}

	assistantService, err := assistant.NewService(assistant.ServiceParams{
		Profiles:     profileService,
		Applications: applicationsService,
		Chat:         formatter,
		Logger:       logg,
	})
	if err != nil {
		return err
	}

	checker, err := access.NewChecker(usersRepo, logg)
	if err != nil {
		return err
	}
	adminService, err := admin.NewService(admin.ServiceParams{
		DB:                    dbClient,
		Users:                 usersRepo,
		Access:                checker,
		Outbox:                outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		AllowSelfDeactivation: cfg.Admin.AllowSelfDeactivation,
		Logger:                logg,
	})
	if err != nil {
		return err
	}

	router := routes.NewRouter(routes.Params{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Store:        redisClient,
		Sessions:     sessionManager,
		Auth:         authService,
		Profiles:     profileService,
		Applications: applicationsService,
		Analyzer:     formatter,
		Assistant:    assistantService,
		Admin:        adminService,
		HTTPMetrics:  metrics.NewHTTPMetrics(registry),
		Gatherer:     registry,
	})

	// Request contexts derive from baseCtx so open event streams end on shutdown.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancelBase)

	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	feedErr := make(chan error, 1)
	go func() { feedErr <- feed.Run(ctx) }()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case runErr := <-feedErr:
		if runErr != nil {
			err = fmt.Errorf("applications feed: %w", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		err = multierr.Append(err, shutdownErr)
	}
	logg.Info(ctx, "api server stopped")
	return err
}
