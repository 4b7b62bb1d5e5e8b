package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"contact-service/internal/auth"
	"contact-service/internal/config"
	"contact-service/internal/contact"
	"contact-service/internal/db"
	"contact-service/internal/health"
	"contact-service/internal/kafka"
	"contact-service/internal/mailer"
	"contact-service/internal/messaging"
	"contact-service/internal/middleware"
	"contact-service/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	publisher contact.Publisher
	telemetry *telemetry.Telemetry
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing application", "env", cfg.Env, "version", Version)

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := tel.Metrics.Database.RegisterDB(database.DB, tel.Meter); err != nil {
		logger.Warn("failed to register database metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, contact.Models()...); err != nil {
		db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	m, err := newMailer(cfg.Mail, logger)
	if err != nil {
		db.Close(database)
		return nil, err
	}

	publisher := newPublisher(cfg.Events, logger)

	healthHandler := health.NewHandler(logger)
	healthHandler.AddCheck("database", database.PingContext)
	if p, ok := publisher.(*messaging.Producer); ok {
		healthHandler.AddCheck("events", func(context.Context) error { return p.HealthCheck() })
	}

	repo := contact.NewRepository(database, tel.Metrics)
	service := contact.NewService(repo, m, publisher, contact.Envelope{
		From: cfg.Mail.From,
		To:   cfg.Mail.To,
	}, logger, tel.Metrics)
	contactHandler := contact.NewHandler(service, logger, tel.Metrics)

	a := &App{
		config:    cfg,
		logger:    logger,
		db:        database,
		publisher: publisher,
		telemetry: tel,
	}
	a.router = NewRouter(RouterConfig{
		Contact:     contactHandler,
		Health:      healthHandler,
		CORSOrigins: cfg.Server.CORSOrigins,
		JWTSecret:   cfg.Auth.JWTSecret,
		Logger:      logger,
	})

	logger.Info("application initialized successfully")
	return a, nil
}

type RouterConfig struct {
	Contact     *contact.Handler
	Health      *health.Handler
	CORSOrigins []string
	// JWTSecret enables the admin API; empty leaves it unmounted.
	JWTSecret string
	Logger    *slog.Logger
}

func NewRouter(rc RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(rc.Logger))
	r.Use(middleware.AccessLog(rc.Logger))
	r.Use(middleware.CORS(rc.CORSOrigins))

	rc.Health.RegisterRoutes(r)
	rc.Contact.RegisterRoutes(r)

	if rc.JWTSecret == "" {
		rc.Logger.Info("admin API disabled, no JWT secret configured")
		return r
	}

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(auth.AdminMiddleware([]byte(rc.JWTSecret), rc.Logger))
		rc.Contact.RegisterAdminRoutes(r)
	})

	return r
}

func newMailer(cfg config.MailConfig, logger *slog.Logger) (mailer.Mailer, error) {
	switch cfg.Driver {
	case "log":
		logger.Warn("mail driver is log, contact emails will not be delivered")
		return mailer.NewLogMailer(logger), nil
	default:
		return mailer.NewResendMailer(cfg.APIKey, cfg.BaseURL, logger)
	}
}

// newPublisher returns nil when no bus is configured or it cannot be reached;
// submissions still succeed without events.
func newPublisher(cfg config.EventsConfig, logger *slog.Logger) contact.Publisher {
	switch cfg.Driver {
	case "nats":
		p, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS producer", "error", err)
			return nil
		}
		logger.Info("NATS producer initialized", "subject", cfg.NATS.Subject)
		return p
	case "kafka":
		p, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Warn("failed to initialize Kafka producer", "error", err)
			return nil
		}
		logger.Info("Kafka producer initialized", "topic", cfg.Kafka.Topic)
		return p
	default:
		return nil
	}
}

func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	errs = append(errs, a.telemetry.Shutdown(ctx))
	db.Close(a.db)

	return errors.Join(errs...)
}
