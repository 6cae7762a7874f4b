// @title        Foco Alerta Reports API
// @version      1.0
// @description  Citizen reports of suspected mosquito breeding sites.
// @BasePath     /
//
// @securityDefinitions.apikey  SessionCookie
// @in                          cookie
// @name                        session
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/focoalerta/reports-api/internal/api"
	"github.com/focoalerta/reports-api/internal/api/handler"
	"github.com/focoalerta/reports-api/internal/core/ports"
	"github.com/focoalerta/reports-api/internal/core/service"
	"github.com/focoalerta/reports-api/internal/infrastructure/config"
	"github.com/focoalerta/reports-api/internal/infrastructure/db/memory"
	mongostore "github.com/focoalerta/reports-api/internal/infrastructure/db/mongo"
	"github.com/focoalerta/reports-api/internal/infrastructure/db/postgres"
	redisstore "github.com/focoalerta/reports-api/internal/infrastructure/db/redis"
	"github.com/focoalerta/reports-api/internal/infrastructure/geocoding"
	"github.com/focoalerta/reports-api/internal/infrastructure/queue"
	"github.com/focoalerta/reports-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// stores groups the repositories selected by STORE_DRIVER and SESSION_DRIVER.
type stores struct {
	users    ports.UserRepository
	reports  ports.ReportRepository
	audits   ports.AuditRepository
	sessions ports.SessionStore
	idem     ports.IdempotencyStore
	checks   []handler.DependencyCheck
	closers  []func(context.Context) error
}

func (s *stores) close(ctx context.Context, log zerolog.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "focoalerta-reports-api",
	})

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close(context.Background(), log)

	log.Info().
		Str("store", cfg.StoreDriver).
		Str("sessions", cfg.SessionDriver).
		Msg("stores ready")

	// --- Audit pipeline ---
	auditService := service.NewAuditService(st.audits, logger.Component("audit"))
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditService, logger.Component("dispatcher"))
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	// --- Services ---
	geocoder := geocoding.NewNominatim(geocoding.Config{
		BaseURL:   cfg.Geocoder.URL,
		Country:   cfg.Geocoder.Country,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   cfg.Geocoder.Timeout,
	})
	authService := service.NewAuthService(st.users, st.sessions, cfg.Session.Secret, cfg.Session.TTL, logger.Component("auth"))
	reportService := service.NewReportService(st.reports, st.audits, geocoder, logger.Component("reports"),
		service.WithIdempotency(st.idem),
		service.WithAuditPublisher(dispatcher),
	)
	gate := service.NewGate(st.sessions, st.users, cfg.Session.Secret)

	e, err := api.NewRouter(api.Dependencies{
		Auth:          authService,
		Gate:          gate,
		Reports:       reportService,
		Checks:        st.checks,
		Cookie:        handler.CookieConfig{Secure: cfg.Session.CookieSecure, TTL: cfg.Session.TTL},
		AuthRateLimit: cfg.AuthRateLimit,
		Logger:        logger.Component("http"),
	})
	if err != nil {
		stopWorkers()
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			stopWorkers()
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	// Requests are drained; flush pending audit entries before closing stores.
	stopWorkers()
	dispatcher.Wait()

	log.Info().Msg("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	st := &stores{}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.Config{DSN: cfg.Postgres.URL})
		if err != nil {
			return nil, err
		}
		st.users = postgres.NewUserRepository(db)
		st.reports = postgres.NewReportRepository(db)
		st.audits = postgres.NewAuditRepository(db)
		st.checks = append(st.checks, handler.PostgresCheck(db))
		st.closers = append(st.closers, func(context.Context) error { return postgres.Close(db) })

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		st.users = mongostore.NewUserRepository(db)
		st.reports = mongostore.NewReportRepository(db)
		st.audits = mongostore.NewAuditRepository(db)
		st.checks = append(st.checks, handler.MongoCheck(db))
		st.closers = append(st.closers, client.Disconnect)

	default:
		mem := memory.NewStore()
		st.users = mem.Users()
		st.reports = mem.Reports()
		st.audits = mem.Audits()
	}

	switch cfg.SessionDriver {
	case config.DriverRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			st.close(ctx, zerolog.Nop())
			return nil, err
		}
		st.sessions = redisstore.NewSessionStore(client)
		st.idem = redisstore.NewIdempotencyStore(client)
		st.checks = append(st.checks, handler.RedisCheck(client))
		st.closers = append(st.closers, func(context.Context) error { return client.Close() })

	default:
		st.sessions = memory.NewSessionStore()
		st.idem = memory.NewIdempotencyStore()
	}

	return st, nil
}
